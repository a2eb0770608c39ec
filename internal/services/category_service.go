package services

import (
	"context"
	"log/slog"

	"github.com/clubtoros/toros-backend/internal/metrics"
	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/wizard"
)

// CategoryService assigns age-bracket categories from the stored ranges.
type CategoryService struct {
	seasonRepo   repositories.SeasonRepository
	categoryRepo repositories.CategoryRepository
	metrics      *metrics.Metrics
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(seasonRepo repositories.SeasonRepository, categoryRepo repositories.CategoryRepository, m *metrics.Metrics) *CategoryService {
	return &CategoryService{
		seasonRepo:   seasonRepo,
		categoryRepo: categoryRepo,
		metrics:      m,
	}
}

var _ wizard.CategoryResolver = (*CategoryService)(nil)

// Resolve returns the first stored range, in store order, whose dates contain
// the birth date. With a season id the candidates are limited to that
// season's name; without one every range of the sex is a candidate and the
// matched range's season is returned too. Failures resolve to
// models.CategoryNotFound.
func (s *CategoryService) Resolve(ctx context.Context, q wizard.CategoryQuery) wizard.Resolution {
	if q.EnrollmentType == models.EnrollmentCheerleader {
		return wizard.Resolution{}
	}
	notFound := wizard.Resolution{Category: models.CategoryNotFound}

	var (
		ranges []models.CategoryRange
		err    error
	)
	if q.SeasonID != "" {
		season, findErr := s.seasonRepo.FindByID(ctx, q.SeasonID)
		if findErr != nil || season.Name == "" {
			slog.Warn("Category resolution: season name unavailable", "seasonId", q.SeasonID, "error", findErr)
			s.record("not_found")
			return notFound
		}
		ranges, err = s.categoryRepo.FindBySexAndSeason(ctx, q.Sex, season.Name)
	} else {
		ranges, err = s.categoryRepo.FindBySex(ctx, q.Sex)
	}
	if err != nil {
		slog.Error("Category resolution: failed to load ranges", "error", err, "sex", q.Sex, "seasonId", q.SeasonID)
		s.record("not_found")
		return notFound
	}

	var match *models.CategoryRange
	for i := range ranges {
		if !ranges[i].Contains(q.BirthDate) {
			continue
		}
		if match == nil {
			match = &ranges[i]
			continue
		}
		// Overlapping ranges are reported, the first match still wins.
		slog.Warn("Category resolution: overlapping ranges",
			"birthDate", models.FormatDate(q.BirthDate),
			"chosen", match.Name, "alsoMatches", ranges[i].Name, "season", match.SeasonName)
		s.record("overlap")
	}
	if match == nil {
		s.record("not_found")
		return notFound
	}

	s.record("found")
	res := wizard.Resolution{Category: match.Name}
	if q.SeasonID == "" {
		res.SeasonID = match.SeasonID
	}
	return res
}

func (s *CategoryService) record(result string) {
	if s.metrics != nil {
		s.metrics.IncrementCategoryResolution(result)
	}
}
