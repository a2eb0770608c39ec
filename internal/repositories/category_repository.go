package repositories

import (
	"context"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

type categoryRepository struct {
	store DocumentStore
}

// NewCategoryRepository creates a CategoryRepository backed by store
func NewCategoryRepository(store DocumentStore) CategoryRepository {
	return &categoryRepository{store: store}
}

// FindBySex returns every range configured for sex, in store order
func (r *categoryRepository) FindBySex(ctx context.Context, sex models.Sex) ([]models.CategoryRange, error) {
	return r.find(ctx, Eq("sexo", string(sex)))
}

// FindBySexAndSeason returns the ranges configured for sex in the named season
func (r *categoryRepository) FindBySexAndSeason(ctx context.Context, sex models.Sex, seasonName string) ([]models.CategoryRange, error) {
	return r.find(ctx, Eq("sexo", string(sex)), Eq("temporada", seasonName))
}

// Create inserts a category range
func (r *categoryRepository) Create(ctx context.Context, category *models.CategoryRange) (string, error) {
	return r.store.Insert(ctx, CollectionCategories, category)
}

func (r *categoryRepository) find(ctx context.Context, preds ...Predicate) ([]models.CategoryRange, error) {
	var ranges []models.CategoryRange
	if err := r.store.Find(ctx, CollectionCategories, preds, &ranges); err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return ranges, nil
}
