package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/repositories/memory"
)

type ImporterSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.DocumentStore
	categories repositories.CategoryRepository
	costs      repositories.CostRepository
	importer   *Importer
	seasonID   string
}

func TestImporterSuite(t *testing.T) {
	suite.Run(t, new(ImporterSuite))
}

func (s *ImporterSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewDocumentStore()
	seasons := repositories.NewSeasonRepository(s.store)
	s.categories = repositories.NewCategoryRepository(s.store)
	s.costs = repositories.NewCostRepository(s.store)
	s.importer = NewImporter(seasons, s.categories, s.costs)

	var err error
	s.seasonID, err = seasons.Create(s.ctx, &models.Season{Name: "Temporada 2025", State: models.SeasonActive})
	s.Require().NoError(err)
}

const categoriesCSV = `Sexo,Temporada,Nombre_Categoria,Fecha_Inicio,Fecha_Fin
hombre,Temporada 2025,Baby,2019-01-01,2020-12-31
hombre,Temporada 2025,Infantil,2017-01-01,2018-12-31
Mujer,Temporada 2025,Flag,2015-01-01,2018-12-31
hombre,Temporada 2025,Mini,2018-06-01,2019-06-30
otro,Temporada 2025,X,2015-01-01,2016-12-31
hombre,Temporada 2025,Juvenil,2014-13-01,2015-12-31
hombre,Temporada 2025,Juvenil,2016-01-01,2015-12-31
`

func (s *ImporterSuite) TestImportCategories() {
	result, err := s.importer.ImportCategories(s.ctx, strings.NewReader(categoriesCSV))
	s.Require().NoError(err)

	s.Equal(7, result.TotalRows)
	s.Equal(4, result.Created)
	s.Require().Len(result.Errors, 3)
	s.Contains(result.Errors[0], "Row 6")
	s.Contains(result.Errors[0], "invalid sex")
	s.Contains(result.Errors[1], "invalid start date")
	s.Contains(result.Errors[2], "end date is before start date")

	s.Require().Len(result.Overlaps, 2)
	s.Contains(result.Overlaps[0], "Mini overlaps Baby")
	s.Contains(result.Overlaps[1], "Mini overlaps Infantil")

	ranges, err := s.categories.FindBySexAndSeason(s.ctx, models.SexMale, "Temporada 2025")
	s.Require().NoError(err)
	s.Require().Len(ranges, 3)
	s.Equal(s.seasonID, ranges[0].SeasonID)
	s.Equal("2019-01-01", ranges[0].StartDate.String())

	women, err := s.categories.FindBySex(s.ctx, models.SexFemale)
	s.Require().NoError(err)
	s.Len(women, 1)
}

func (s *ImporterSuite) TestDryRunStoresNothing() {
	s.importer.DryRun = true
	result, err := s.importer.ImportCategories(s.ctx, strings.NewReader(categoriesCSV))
	s.Require().NoError(err)
	s.Zero(result.Created)
	s.Len(result.Overlaps, 2)
	s.Zero(s.store.Count(repositories.CollectionCategories))
}

func (s *ImporterSuite) TestImportCategoriesRequiresColumns() {
	_, err := s.importer.ImportCategories(s.ctx, strings.NewReader("sexo,temporada\nhombre,2025\n"))
	s.ErrorContains(err, "column not found")
}

func (s *ImporterSuite) TestImportPlayerCosts() {
	csv := "temporada,categoria,inscripcion,primera_jornada,pesaje\n" +
		"Temporada 2025,Infantil,500,300,200 MXN\n" +
		"Temporada 2025,,500,300,200\n" +
		"Temporada 2024,Juvenil,600,350,250\n"
	result, err := s.importer.ImportCosts(s.ctx, models.KindPlayer, strings.NewReader(csv))
	s.Require().NoError(err)
	s.Equal(3, result.TotalRows)
	s.Equal(2, result.Created)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "category is empty")

	costs, err := s.costs.Find(s.ctx, models.KindPlayer, repositories.CostFilter{SeasonID: s.seasonID, Category: "Infantil"})
	s.Require().NoError(err)
	s.Require().Len(costs, 1)
	s.Equal(models.Amount(500), costs[0].Enrollment)
	s.Equal(models.Amount(200), costs[0].WeighIn)

	unknownSeason, err := s.costs.Find(s.ctx, models.KindPlayer, repositories.CostFilter{SeasonName: "Temporada 2024", Category: "Juvenil"})
	s.Require().NoError(err)
	s.Require().Len(unknownSeason, 1)
	s.Empty(unknownSeason[0].SeasonID)
}

func (s *ImporterSuite) TestImportCheerleaderCosts() {
	csv := "temporada,inscripcion,coaching\nTemporada 2025,200,150\n"
	result, err := s.importer.ImportCosts(s.ctx, models.KindCheerleader, strings.NewReader(csv))
	s.Require().NoError(err)
	s.Equal(1, result.Created)

	costs, err := s.costs.Find(s.ctx, models.KindCheerleader, repositories.CostFilter{SeasonName: "Temporada 2025"})
	s.Require().NoError(err)
	s.Require().Len(costs, 1)
	s.Equal("", costs[0].Category)
	s.Equal(models.Amount(150), costs[0].Coaching)
}
