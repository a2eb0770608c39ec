package repositories

import (
	"context"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

type userRepository struct {
	store DocumentStore
}

// NewUserRepository creates a UserRepository backed by store
func NewUserRepository(store DocumentStore) UserRepository {
	return &userRepository{store: store}
}

// FindByEmail returns the first profile registered under email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var users []models.UserProfile
	if err := r.store.Find(ctx, CollectionUsers, []Predicate{Eq("correo", email)}, &users); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}
