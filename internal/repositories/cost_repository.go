package repositories

import (
	"context"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

type costRepository struct {
	store DocumentStore
}

// NewCostRepository creates a CostRepository backed by store
func NewCostRepository(store DocumentStore) CostRepository {
	return &costRepository{store: store}
}

// Find returns the cost definitions of kind matching filter
func (r *costRepository) Find(ctx context.Context, kind models.RegistrantKind, filter CostFilter) ([]models.CostDefinition, error) {
	var preds []Predicate
	if filter.SeasonName != "" {
		preds = append(preds, Eq("temporada", filter.SeasonName))
	}
	if filter.SeasonID != "" {
		preds = append(preds, Eq("temporadaId", filter.SeasonID))
	}
	preds = append(preds, Eq("categoria", filter.Category))

	var costs []models.CostDefinition
	if err := r.store.Find(ctx, CostCollection(kind), preds, &costs); err != nil {
		return nil, fmt.Errorf("find costs: %w", err)
	}
	return costs, nil
}

// Create inserts a cost definition
func (r *costRepository) Create(ctx context.Context, kind models.RegistrantKind, cost *models.CostDefinition) (string, error) {
	return r.store.Insert(ctx, CostCollection(kind), cost)
}
