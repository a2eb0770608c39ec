package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/pkg/apperrors"
)

type resolverMock struct {
	mock.Mock
}

func (m *resolverMock) Resolve(ctx context.Context, q CategoryQuery) Resolution {
	args := m.Called(ctx, q)
	return args.Get(0).(Resolution)
}

type WizardSuite struct {
	suite.Suite
	ctx      context.Context
	resolver *resolverMock
	wizard   *Wizard
}

func TestWizardSuite(t *testing.T) {
	suite.Run(t, new(WizardSuite))
}

func (s *WizardSuite) SetupTest() {
	s.ctx = context.Background()
	s.resolver = new(resolverMock)
	clock := func() time.Time { return now }
	s.wizard = New(s.resolver, NewState(now), clock)
}

func (s *WizardSuite) birth() *models.Date {
	return &models.Date{Time: time.Date(2014, 5, 3, 0, 0, 0, 0, time.UTC)}
}

// fallback answers resolutions triggered with the placeholder birth date.
func (s *WizardSuite) fallback() {
	s.resolver.On("Resolve", mock.Anything, mock.Anything).Return(Resolution{Category: models.CategoryNotFound}).Maybe()
}

func (s *WizardSuite) TestBirthDateChangeResolvesCategoryAndSeason() {
	s.resolver.On("Resolve", mock.Anything, CategoryQuery{
		BirthDate:      s.birth().Time,
		Sex:            models.SexMale,
		EnrollmentType: models.EnrollmentNew,
	}).Return(Resolution{Category: "Infantil", SeasonID: "season-1"}).Once()
	s.fallback()

	s.wizard.Update(s.ctx, DraftPatch{Sex: ptr(models.SexMale), EnrollmentType: ptr(models.EnrollmentNew)})
	state := s.wizard.Update(s.ctx, DraftPatch{BirthDate: s.birth()})

	s.Equal("Infantil", state.Draft.Category)
	s.Equal("season-1", state.Draft.SeasonID)
	s.resolver.AssertExpectations(s.T())
}

func (s *WizardSuite) TestUnrelatedFieldDoesNotResolve() {
	s.resolver.On("Resolve", mock.Anything, mock.Anything).Return(Resolution{Category: "Infantil"}).Once()
	s.wizard.Update(s.ctx, DraftPatch{Sex: ptr(models.SexMale), EnrollmentType: ptr(models.EnrollmentNew), BirthDate: s.birth()})

	state := s.wizard.Update(s.ctx, DraftPatch{FirstName: ptr("Luis"), Address: ptr("Calle 1")})

	s.Equal("Infantil", state.Draft.Category)
	s.resolver.AssertNumberOfCalls(s.T(), "Resolve", 1)
}

func (s *WizardSuite) TestCheerleaderCategoryIsAlwaysEmpty() {
	state := s.wizard.Update(s.ctx, DraftPatch{
		Sex:            ptr(models.SexFemale),
		EnrollmentType: ptr(models.EnrollmentCheerleader),
		BirthDate:      s.birth(),
	})

	s.Equal("", state.Draft.Category)
	s.resolver.AssertNotCalled(s.T(), "Resolve", mock.Anything, mock.Anything)
}

func (s *WizardSuite) TestNotFoundBlocksPersonalStep() {
	s.resolver.On("Resolve", mock.Anything, mock.Anything).Return(Resolution{Category: models.CategoryNotFound})

	s.wizard.Update(s.ctx, DraftPatch{Sex: ptr(models.SexMale)})
	_, ok := s.wizard.Next(s.ctx)
	s.Require().True(ok)
	s.wizard.Update(s.ctx, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew)})
	_, ok = s.wizard.Next(s.ctx)
	s.Require().True(ok)

	state := s.wizard.Update(s.ctx, DraftPatch{
		FirstName:       ptr("Luis"),
		PaternalSurname: ptr("García"),
		BirthDate:       s.birth(),
	})
	s.Equal(models.CategoryNotFound, state.Draft.Category)

	state, ok = s.wizard.Next(s.ctx)
	s.False(ok)
	s.Equal(StepPersonalData, state.Step())
	s.Equal(MsgCategoryNotFound, state.Errors["categoria"])
}

func (s *WizardSuite) TestNextReportsErrorsAndStays() {
	s.fallback()
	state, ok := s.wizard.Next(s.ctx)
	s.False(ok)
	s.Equal(0, state.StepIndex)
	s.Equal(MsgSexRequired, state.Errors["sexo"])

	state = s.wizard.Update(s.ctx, DraftPatch{Sex: ptr(models.SexFemale)})
	s.Empty(state.Errors)
}

func (s *WizardSuite) TestRenewalWithoutSeasonKeepsPriorCategory() {
	s.wizard.Update(s.ctx, DraftPatch{Sex: ptr(models.SexMale), EnrollmentType: ptr(models.EnrollmentRenewal)})

	state, err := s.wizard.SelectPrior(s.ctx, models.PriorRegistrant{
		ID:         "p1",
		Collection: "jugadores",
		Record: models.Registrant{
			FirstName: "Luis",
			Sex:       models.SexMale,
			BirthDate: models.NewDate(s.birth().Time),
			Category:  "Infantil",
		},
	})
	s.Require().NoError(err)
	s.Equal("Infantil", state.Draft.Category)
	s.resolver.AssertNotCalled(s.T(), "Resolve", mock.Anything, mock.Anything)

	s.resolver.On("Resolve", mock.Anything, CategoryQuery{
		BirthDate:      s.birth().Time,
		Sex:            models.SexMale,
		SeasonID:       "season-2",
		EnrollmentType: models.EnrollmentRenewal,
	}).Return(Resolution{Category: "Juvenil"}).Once()

	state = s.wizard.Update(s.ctx, DraftPatch{SeasonID: ptr("season-2")})
	s.Equal("Juvenil", state.Draft.Category)
	s.Equal("season-2", state.Draft.SeasonID)
}

func (s *WizardSuite) TestSelectPriorRequiresRenewal() {
	s.wizard.Update(s.ctx, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew)})

	_, err := s.wizard.SelectPrior(s.ctx, models.PriorRegistrant{ID: "p1"})
	s.True(apperrors.HasCode(err, apperrors.CodeValidation))
	s.Nil(s.wizard.State().Prior)
}

func (s *WizardSuite) TestFocusFromEntryRouteResets() {
	s.fallback()
	s.wizard.Update(s.ctx, DraftPatch{Sex: ptr(models.SexMale), FirstName: ptr("Luis")})
	s.wizard.Next(s.ctx)

	state := s.wizard.Focus("Perfil")
	s.Equal(1, state.StepIndex)
	s.Equal("Luis", state.Draft.FirstName)

	state = s.wizard.Focus(EntryRoute)
	s.Equal(0, state.StepIndex)
	s.Equal("", state.Draft.FirstName)
	s.Equal(models.DefaultMemberNumber, state.Draft.MemberNumber)
}

func (s *WizardSuite) TestPreviousFromFirstStepStays() {
	s.Equal(0, s.wizard.Previous().StepIndex)
}
