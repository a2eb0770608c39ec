package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/repositories/memory"
)

type RepositoriesSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.DocumentStore
}

func TestRepositoriesSuite(t *testing.T) {
	suite.Run(t, new(RepositoriesSuite))
}

func (s *RepositoriesSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewDocumentStore()
}

func (s *RepositoriesSuite) TestUserFindByEmail() {
	repo := repositories.NewUserRepository(s.store)
	_, err := s.store.Insert(s.ctx, repositories.CollectionUsers, models.UserProfile{Email: "ana@example.com", UID: "owner-1"})
	s.Require().NoError(err)

	user, err := repo.FindByEmail(s.ctx, "ana@example.com")
	s.Require().NoError(err)
	s.Equal("owner-1", user.OwnerID())

	_, err = repo.FindByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *RepositoriesSuite) TestCostFindUsesKindCollection() {
	repo := repositories.NewCostRepository(s.store)
	_, err := repo.Create(s.ctx, models.KindPlayer, &models.CostDefinition{SeasonName: "2025", SeasonID: "s1", Category: "Infantil", Enrollment: 500})
	s.Require().NoError(err)
	_, err = repo.Create(s.ctx, models.KindCheerleader, &models.CostDefinition{SeasonName: "2025", SeasonID: "s1", Category: "", Enrollment: 200})
	s.Require().NoError(err)

	byName, err := repo.Find(s.ctx, models.KindPlayer, repositories.CostFilter{SeasonName: "2025", Category: "Infantil"})
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal(models.Amount(500), byName[0].Enrollment)

	byID, err := repo.Find(s.ctx, models.KindPlayer, repositories.CostFilter{SeasonID: "s1", Category: "Infantil"})
	s.Require().NoError(err)
	s.Len(byID, 1)

	none, err := repo.Find(s.ctx, models.KindPlayer, repositories.CostFilter{SeasonID: "s2", Category: "Infantil"})
	s.Require().NoError(err)
	s.Empty(none)

	cheer, err := repo.Find(s.ctx, models.KindCheerleader, repositories.CostFilter{SeasonName: "2025"})
	s.Require().NoError(err)
	s.Len(cheer, 1)
}

func (s *RepositoriesSuite) TestRegistrantFindAndUpdate() {
	repo := repositories.NewRegistrantRepository(s.store)
	id, err := repo.Create(s.ctx, models.KindPlayer, &models.Registrant{
		FirstName:    "Luis",
		CURP:         "ABCD010101HDFRRN09",
		OwnerID:      "owner-1",
		Activation:   models.ActivationInactive,
		MemberNumber: "123456",
	})
	s.Require().NoError(err)

	found, err := repo.Find(s.ctx, models.KindPlayer, repositories.RegistrantFilter{CURP: "ABCD010101HDFRRN09", Activation: models.ActivationInactive})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(id, found[0].ID.Hex())

	s.Require().NoError(repo.Update(s.ctx, models.KindPlayer, id, repositories.Fields{"activo": models.ActivationActive}))
	updated, err := repo.FindByID(s.ctx, models.KindPlayer, id)
	s.Require().NoError(err)
	s.Equal(models.ActivationActive, updated.Activation)

	inCheer, err := repo.Find(s.ctx, models.KindCheerleader, repositories.RegistrantFilter{OwnerID: "owner-1"})
	s.Require().NoError(err)
	s.Empty(inCheer)
}

func (s *RepositoriesSuite) TestSeasonFindByStates() {
	repo := repositories.NewSeasonRepository(s.store)
	for _, season := range []models.Season{
		{Name: "Temporada 2024", State: models.SeasonInactive},
		{Name: "Temporada 2025", State: models.SeasonActive},
		{Name: "Temporada 2019", State: "Cerrada"},
	} {
		_, err := repo.Create(s.ctx, &season)
		s.Require().NoError(err)
	}

	active, err := repo.FindByStates(s.ctx, models.SeasonActive)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Temporada 2025", active[0].Name)

	both, err := repo.FindByStates(s.ctx, models.SeasonActive, models.SeasonInactive)
	s.Require().NoError(err)
	s.Len(both, 2)
}

func (s *RepositoriesSuite) TestPaymentFindByRegistrant() {
	repo := repositories.NewPaymentRepository(s.store)
	_, err := repo.Create(s.ctx, models.KindCheerleader, &models.PaymentSchedule{CheerleaderID: "c1", Total: 350})
	s.Require().NoError(err)

	schedules, err := repo.FindByRegistrant(s.ctx, models.KindCheerleader, "c1")
	s.Require().NoError(err)
	s.Require().Len(schedules, 1)
	s.Equal(int64(350), schedules[0].Total)
}

func (s *RepositoriesSuite) TestKindOfCollection() {
	kind, err := repositories.KindOfCollection(repositories.CollectionCheerleaders)
	s.Require().NoError(err)
	s.Equal(models.KindCheerleader, kind)

	_, err = repositories.KindOfCollection(repositories.CollectionSeasons)
	s.Error(err)
}
