// Package wizard holds the registration wizard: the step sequence, the
// per-step validation rules and the immutable state transitions.
package wizard

import "github.com/clubtoros/toros-backend/internal/models"

// StepID names a wizard screen.
type StepID string

const (
	StepSex            StepID = "GeneroForm"
	StepEnrollmentType StepID = "TipoInscripcionForm"
	StepRenewalSeason  StepID = "TemporadaReinscripcionForm"
	StepPersonalData   StepID = "DatosPersonalesForm"
	StepContactData    StepID = "DatosContactoForm"
	StepSchoolMedical  StepID = "DatosEscolaresMedicosForm"
	StepTransfer       StepID = "TransferenciaForm"
	StepPhoto          StepID = "FotoForm"
	StepDocumentation  StepID = "DocumentacionForm"
)

// StepsFor returns the step sequence for an enrollment type. The renewal
// sequence only applies once a prior registrant has been selected.
func StepsFor(enrollment models.EnrollmentType, hasSelectedPrior bool) []StepID {
	if enrollment == models.EnrollmentRenewal && hasSelectedPrior {
		return []StepID{
			StepSex,
			StepEnrollmentType,
			StepRenewalSeason,
			StepSchoolMedical,
			StepPhoto,
			StepDocumentation,
		}
	}

	steps := []StepID{
		StepSex,
		StepEnrollmentType,
		StepPersonalData,
		StepContactData,
		StepSchoolMedical,
	}
	if enrollment == models.EnrollmentTransfer {
		steps = append(steps, StepTransfer)
	}
	return append(steps, StepPhoto, StepDocumentation)
}

// EnrollmentOptions lists the enrollment types offered for sex.
func EnrollmentOptions(sex models.Sex) []models.EnrollmentType {
	options := []models.EnrollmentType{
		models.EnrollmentNew,
		models.EnrollmentRenewal,
		models.EnrollmentTransfer,
	}
	if sex == models.SexFemale {
		options = append(options, models.EnrollmentCheerleader)
	}
	return options
}

func offered(sex models.Sex, enrollment models.EnrollmentType) bool {
	for _, o := range EnrollmentOptions(sex) {
		if o == enrollment {
			return true
		}
	}
	return false
}
