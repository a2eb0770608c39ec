package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clubtoros/toros-backend/internal/models"
)

func TestStepsForNewRegistration(t *testing.T) {
	assert.Equal(t, []StepID{
		StepSex, StepEnrollmentType, StepPersonalData, StepContactData,
		StepSchoolMedical, StepPhoto, StepDocumentation,
	}, StepsFor(models.EnrollmentNew, false))
}

func TestStepsForTransferAddsOneStepBeforePhoto(t *testing.T) {
	base := StepsFor(models.EnrollmentNew, false)
	transfer := StepsFor(models.EnrollmentTransfer, false)

	assert.Len(t, transfer, len(base)+1)
	schoolIdx := indexOf(transfer, StepSchoolMedical)
	assert.Equal(t, StepTransfer, transfer[schoolIdx+1])
	assert.Equal(t, StepPhoto, transfer[schoolIdx+2])

	without := append([]StepID{}, transfer[:schoolIdx+1]...)
	without = append(without, transfer[schoolIdx+2:]...)
	assert.Equal(t, base, without)
}

func TestStepsForRenewal(t *testing.T) {
	t.Run("without a selected prior the default sequence applies", func(t *testing.T) {
		assert.Equal(t, StepsFor(models.EnrollmentNew, false), StepsFor(models.EnrollmentRenewal, false))
	})
	t.Run("with a selected prior", func(t *testing.T) {
		assert.Equal(t, []StepID{
			StepSex, StepEnrollmentType, StepRenewalSeason,
			StepSchoolMedical, StepPhoto, StepDocumentation,
		}, StepsFor(models.EnrollmentRenewal, true))
	})
	t.Run("a prior flag is ignored for other types", func(t *testing.T) {
		assert.Equal(t, StepsFor(models.EnrollmentNew, false), StepsFor(models.EnrollmentNew, true))
	})
}

func TestEnrollmentOptions(t *testing.T) {
	assert.NotContains(t, EnrollmentOptions(models.SexMale), models.EnrollmentCheerleader)
	assert.Contains(t, EnrollmentOptions(models.SexFemale), models.EnrollmentCheerleader)
	assert.Len(t, EnrollmentOptions(""), 3)
}

func indexOf(steps []StepID, id StepID) int {
	for i, s := range steps {
		if s == id {
			return i
		}
	}
	return -1
}
