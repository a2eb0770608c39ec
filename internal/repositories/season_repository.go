package repositories

import (
	"context"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

type seasonRepository struct {
	store DocumentStore
}

// NewSeasonRepository creates a SeasonRepository backed by store
func NewSeasonRepository(store DocumentStore) SeasonRepository {
	return &seasonRepository{store: store}
}

// FindByID finds a season by id
func (r *seasonRepository) FindByID(ctx context.Context, id string) (*models.Season, error) {
	var season models.Season
	if err := r.store.Get(ctx, CollectionSeasons, id, &season); err != nil {
		return nil, err
	}
	return &season, nil
}

// FindByStates finds seasons whose state is any of states
func (r *seasonRepository) FindByStates(ctx context.Context, states ...string) ([]models.Season, error) {
	if len(states) == 0 {
		return nil, nil
	}
	pred := Eq("estado_temporada", states[0])
	if len(states) > 1 {
		pred = In("estado_temporada", states...)
	}
	var seasons []models.Season
	if err := r.store.Find(ctx, CollectionSeasons, []Predicate{pred}, &seasons); err != nil {
		return nil, fmt.Errorf("find seasons: %w", err)
	}
	return seasons, nil
}

// Create inserts a season
func (r *seasonRepository) Create(ctx context.Context, season *models.Season) (string, error) {
	return r.store.Insert(ctx, CollectionSeasons, season)
}
