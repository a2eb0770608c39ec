package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubtoros/toros-backend/internal/models"
)

var now = time.Date(2025, time.August, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestReduceDoesNotMutateInput(t *testing.T) {
	start := NewState(now)
	start.Errors = map[string]string{"nombre": MsgFirstNameRequired, "apellido_p": MsgSurnameRequired}

	next := Reduce(start, DraftPatch{FirstName: ptr("Luis")})

	assert.Equal(t, "", start.Draft.FirstName)
	assert.Len(t, start.Errors, 2)
	assert.Equal(t, "Luis", next.Draft.FirstName)
	assert.Equal(t, map[string]string{"apellido_p": MsgSurnameRequired}, next.Errors)
}

func TestReduceClampsIndexWhenStepListShrinks(t *testing.T) {
	s := NewState(now)
	s = Reduce(s, DraftPatch{EnrollmentType: ptr(models.EnrollmentTransfer)})
	s.StepIndex = len(s.Steps()) - 1
	require.Equal(t, StepDocumentation, s.Step())

	s = Reduce(s, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew)})
	assert.Equal(t, len(s.Steps())-1, s.StepIndex)
	assert.Equal(t, StepDocumentation, s.Step())
}

func TestReduceClearsPriorWhenLeavingRenewal(t *testing.T) {
	s := Reduce(NewState(now), DraftPatch{EnrollmentType: ptr(models.EnrollmentRenewal)})
	s = WithPrior(s, models.PriorRegistrant{ID: "p1", Collection: "jugadores"})
	require.NotNil(t, s.Prior)

	s = Reduce(s, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew)})
	assert.Nil(t, s.Prior)
}

func TestReduceWithdrawsCheerleaderForMale(t *testing.T) {
	s := Reduce(NewState(now), DraftPatch{Sex: ptr(models.SexFemale), EnrollmentType: ptr(models.EnrollmentCheerleader)})
	assert.Equal(t, models.EnrollmentCheerleader, s.Draft.EnrollmentType)

	s = Reduce(s, DraftPatch{Sex: ptr(models.SexMale)})
	assert.Equal(t, models.EnrollmentType(""), s.Draft.EnrollmentType)
}

func TestReduceAttachmentsAreCopied(t *testing.T) {
	s := Reduce(NewState(now), DraftPatch{Document: &DocumentChange{
		Slot:       models.SlotBirthCertificate,
		Attachment: models.Attachment{LocalRef: "ref-1", Name: "acta.pdf"},
	}})
	other := Reduce(s, DraftPatch{Document: &DocumentChange{
		Slot:       models.SlotBirthCertificate,
		Attachment: models.Attachment{LocalRef: "ref-2", Name: "acta2.pdf"},
	}})

	assert.Equal(t, "ref-1", s.Draft.Documents.BirthCertificate.LocalRef)
	assert.Equal(t, "ref-2", other.Draft.Documents.BirthCertificate.LocalRef)
}

func TestWithPriorPrefillsDraft(t *testing.T) {
	cell := "5512345678"
	prior := models.PriorRegistrant{
		ID:         "p1",
		Collection: "jugadores",
		Record: models.Registrant{
			FirstName:       "Luis",
			PaternalSurname: "García",
			MaternalSurname: "López",
			Sex:             models.SexMale,
			BirthDate:       models.NewDate(time.Date(2014, 5, 3, 0, 0, 0, 0, time.UTC)),
			CURP:            "GALL140503HDFRPS09",
			Weight:          "40",
			Category:        "Infantil",
			GuardianCell:    &cell,
			MemberNumber:    "123456",
		},
	}
	s := Reduce(NewState(now), DraftPatch{EnrollmentType: ptr(models.EnrollmentRenewal)})
	s.StepIndex = 1
	s = WithPrior(s, prior)

	assert.Equal(t, "Luis", s.Draft.FirstName)
	assert.Equal(t, "2014-05-03", s.Draft.BirthDate.String())
	assert.Equal(t, "Infantil", s.Draft.Category)
	assert.Equal(t, cell, s.Draft.GuardianCell)
	assert.Equal(t, "123456", s.Draft.MemberNumber)
	assert.Equal(t, StepsFor(models.EnrollmentRenewal, true), s.Steps())
	assert.Equal(t, StepEnrollmentType, s.Step())
}

func TestAdvanceAndBackAreBounded(t *testing.T) {
	s := NewState(now)
	assert.Equal(t, 0, Back(s).StepIndex)

	s.StepIndex = len(s.Steps()) - 1
	assert.Equal(t, s.StepIndex, Advance(s).StepIndex)
}

func TestValidateSteps(t *testing.T) {
	base := NewState(now)

	t.Run("sex", func(t *testing.T) {
		assert.Equal(t, map[string]string{"sexo": MsgSexRequired}, Validate(base, now))
		s := Reduce(base, DraftPatch{Sex: ptr(models.SexMale)})
		assert.Nil(t, Validate(s, now))
	})

	t.Run("enrollment type", func(t *testing.T) {
		s := Reduce(base, DraftPatch{Sex: ptr(models.SexMale)})
		s.StepIndex = 1
		assert.Equal(t, MsgEnrollmentRequired, Validate(s, now)["tipo_inscripcion"])

		s = Reduce(s, DraftPatch{EnrollmentType: ptr(models.EnrollmentRenewal)})
		assert.Equal(t, MsgPriorRequired, Validate(s, now)["jugador"])

		s = Reduce(s, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew)})
		assert.Nil(t, Validate(s, now))
	})

	t.Run("personal data", func(t *testing.T) {
		s := Reduce(base, DraftPatch{Sex: ptr(models.SexMale), EnrollmentType: ptr(models.EnrollmentNew)})
		s.StepIndex = 2
		require.Equal(t, StepPersonalData, s.Step())

		errs := Validate(s, now)
		assert.Equal(t, MsgFirstNameRequired, errs["nombre"])
		assert.Equal(t, MsgSurnameRequired, errs["apellido_p"])
		assert.Equal(t, MsgBirthDateToday, errs["fecha_nacimiento"])
		assert.Equal(t, MsgCategoryNotFound, errs["categoria"])

		s = Reduce(s, DraftPatch{
			FirstName:       ptr("Luis"),
			PaternalSurname: ptr("García"),
			BirthDate:       &models.Date{Time: time.Date(2014, 5, 3, 0, 0, 0, 0, time.UTC)},
			Category:        ptr(models.CategoryNotFound),
		})
		assert.Equal(t, map[string]string{"categoria": MsgCategoryNotFound}, Validate(s, now))

		s = Reduce(s, DraftPatch{Category: ptr("Infantil")})
		assert.Nil(t, Validate(s, now))
	})

	t.Run("cheerleader needs no category", func(t *testing.T) {
		s := Reduce(base, DraftPatch{
			Sex:             ptr(models.SexFemale),
			EnrollmentType:  ptr(models.EnrollmentCheerleader),
			FirstName:       ptr("Ana"),
			PaternalSurname: ptr("Ruiz"),
			BirthDate:       &models.Date{Time: time.Date(2012, 1, 9, 0, 0, 0, 0, time.UTC)},
		})
		s.StepIndex = 2
		assert.Nil(t, Validate(s, now))
	})

	t.Run("contact data requires both fields", func(t *testing.T) {
		s := Reduce(base, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew), Address: ptr("Calle 1")})
		s.StepIndex = 3
		require.Equal(t, StepContactData, s.Step())
		assert.Equal(t, map[string]string{"telefono": MsgPhoneRequired}, Validate(s, now))
	})

	t.Run("renewal season", func(t *testing.T) {
		s := Reduce(base, DraftPatch{EnrollmentType: ptr(models.EnrollmentRenewal)})
		s = WithPrior(s, models.PriorRegistrant{ID: "p1"})
		s.StepIndex = 2
		require.Equal(t, StepRenewalSeason, s.Step())
		assert.Equal(t, MsgSeasonRequired, Validate(s, now)["temporadaId"])
	})

	t.Run("photo", func(t *testing.T) {
		s := Reduce(base, DraftPatch{EnrollmentType: ptr(models.EnrollmentNew)})
		s.StepIndex = 5
		require.Equal(t, StepPhoto, s.Step())
		assert.Equal(t, MsgPhotoRequired, Validate(s, now)[models.SlotPhoto])

		s = Reduce(s, DraftPatch{Photo: &models.Attachment{LocalRef: "ref"}})
		assert.Nil(t, Validate(s, now))
	})
}
