package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
)

type DocumentStoreSuite struct {
	suite.Suite
	store *DocumentStore
	ctx   context.Context
}

func TestDocumentStoreSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) SetupTest() {
	s.store = NewDocumentStore()
	s.ctx = context.Background()
}

func (s *DocumentStoreSuite) TestInsertAssignsIDAndGetDecodes() {
	id, err := s.store.Insert(s.ctx, repositories.CollectionSeasons, models.Season{Name: "2025", State: models.SeasonActive})
	s.Require().NoError(err)
	s.Len(id, 24)

	var season models.Season
	s.Require().NoError(s.store.Get(s.ctx, repositories.CollectionSeasons, id, &season))
	s.Equal("2025", season.Name)
	s.Equal(id, season.ID.Hex())
}

func (s *DocumentStoreSuite) TestGetMissing() {
	var season models.Season
	err := s.store.Get(s.ctx, repositories.CollectionSeasons, "nope", &season)
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *DocumentStoreSuite) TestFindKeepsInsertionOrderAndFilters() {
	for _, c := range []models.CategoryRange{
		{Sex: models.SexMale, SeasonName: "2025", Name: "Baby"},
		{Sex: models.SexFemale, SeasonName: "2025", Name: "Flag"},
		{Sex: models.SexMale, SeasonName: "2025", Name: "Infantil"},
		{Sex: models.SexMale, SeasonName: "2024", Name: "Juvenil"},
	} {
		_, err := s.store.Insert(s.ctx, repositories.CollectionCategories, c)
		s.Require().NoError(err)
	}

	var ranges []models.CategoryRange
	err := s.store.Find(s.ctx, repositories.CollectionCategories, []repositories.Predicate{
		repositories.Eq("sexo", models.SexMale),
		repositories.Eq("temporada", "2025"),
	}, &ranges)
	s.Require().NoError(err)
	s.Require().Len(ranges, 2)
	s.Equal("Baby", ranges[0].Name)
	s.Equal("Infantil", ranges[1].Name)
}

func (s *DocumentStoreSuite) TestFindWithInPredicateAndPointerSlice() {
	for _, state := range []string{models.SeasonActive, models.SeasonInactive, "Archivada"} {
		_, err := s.store.Insert(s.ctx, repositories.CollectionSeasons, models.Season{Name: state, State: state})
		s.Require().NoError(err)
	}

	var seasons []*models.Season
	err := s.store.Find(s.ctx, repositories.CollectionSeasons, []repositories.Predicate{
		repositories.In("estado_temporada", models.SeasonActive, models.SeasonInactive),
	}, &seasons)
	s.Require().NoError(err)
	s.Len(seasons, 2)
}

func (s *DocumentStoreSuite) TestNumbersCompareAcrossWidths() {
	_, err := s.store.Insert(s.ctx, "numbers", map[string]any{"n": int32(7)})
	s.Require().NoError(err)

	var out []map[string]any
	s.Require().NoError(s.store.Find(s.ctx, "numbers", []repositories.Predicate{repositories.Eq("n", 7)}, &out))
	s.Len(out, 1)
}

func (s *DocumentStoreSuite) TestUpdateSetsAndAddsFields() {
	id, err := s.store.Insert(s.ctx, repositories.CollectionPlayers, models.Registrant{FirstName: "Luis", Activation: models.ActivationActive})
	s.Require().NoError(err)

	err = s.store.Update(s.ctx, repositories.CollectionPlayers, id, repositories.Fields{
		"activo":              models.ActivationInactive,
		"fecha_fin_temporada": "2025-06-01T00:00:00Z",
	})
	s.Require().NoError(err)

	var r models.Registrant
	s.Require().NoError(s.store.Get(s.ctx, repositories.CollectionPlayers, id, &r))
	s.Equal(models.ActivationInactive, r.Activation)
	s.Equal("2025-06-01T00:00:00Z", r.SeasonEndedAt)
	s.Equal("Luis", r.FirstName)
}

func (s *DocumentStoreSuite) TestUpdateMissing() {
	err := s.store.Update(s.ctx, repositories.CollectionPlayers, "missing", repositories.Fields{"activo": "x"})
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *DocumentStoreSuite) TestReadsAreCopies() {
	id, err := s.store.Insert(s.ctx, repositories.CollectionSeasons, models.Season{Name: "2025"})
	s.Require().NoError(err)

	var first models.Season
	s.Require().NoError(s.store.Get(s.ctx, repositories.CollectionSeasons, id, &first))
	first.Name = "changed"

	var second models.Season
	s.Require().NoError(s.store.Get(s.ctx, repositories.CollectionSeasons, id, &second))
	s.Equal("2025", second.Name)
}

func TestFindRejectsNonSliceTarget(t *testing.T) {
	store := NewDocumentStore()
	var season models.Season
	err := store.Find(context.Background(), repositories.CollectionSeasons, nil, &season)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pointer to a slice")
}
