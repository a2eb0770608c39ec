package repositories

import (
	"context"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

type registrantRepository struct {
	store DocumentStore
}

// NewRegistrantRepository creates a RegistrantRepository backed by store
func NewRegistrantRepository(store DocumentStore) RegistrantRepository {
	return &registrantRepository{store: store}
}

// Create inserts a registrant into the collection of kind
func (r *registrantRepository) Create(ctx context.Context, kind models.RegistrantKind, registrant *models.Registrant) (string, error) {
	id, err := r.store.Insert(ctx, RegistrantCollection(kind), registrant)
	if err != nil {
		return "", fmt.Errorf("insert registrant: %w", err)
	}
	return id, nil
}

// FindByID finds a registrant by id
func (r *registrantRepository) FindByID(ctx context.Context, kind models.RegistrantKind, id string) (*models.Registrant, error) {
	var registrant models.Registrant
	if err := r.store.Get(ctx, RegistrantCollection(kind), id, &registrant); err != nil {
		return nil, err
	}
	return &registrant, nil
}

// Find returns the registrants of kind matching filter, in store order
func (r *registrantRepository) Find(ctx context.Context, kind models.RegistrantKind, filter RegistrantFilter) ([]models.Registrant, error) {
	var preds []Predicate
	if filter.CURP != "" {
		preds = append(preds, Eq("curp", filter.CURP))
	}
	if filter.MemberNumber != "" {
		preds = append(preds, Eq("numero_mfl", filter.MemberNumber))
	}
	if filter.OwnerID != "" {
		preds = append(preds, Eq("uid", filter.OwnerID))
	}
	if filter.Activation != "" {
		preds = append(preds, Eq("activo", filter.Activation))
	}

	var registrants []models.Registrant
	if err := r.store.Find(ctx, RegistrantCollection(kind), preds, &registrants); err != nil {
		return nil, fmt.Errorf("find registrants: %w", err)
	}
	return registrants, nil
}

// Update sets fields on the registrant with id
func (r *registrantRepository) Update(ctx context.Context, kind models.RegistrantKind, id string, fields Fields) error {
	return r.store.Update(ctx, RegistrantCollection(kind), id, fields)
}
