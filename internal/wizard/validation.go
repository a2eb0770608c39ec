package wizard

import (
	"strings"
	"time"

	"github.com/clubtoros/toros-backend/internal/models"
)

// Field error messages shown to the guardian.
const (
	MsgSexRequired        = "Selecciona un género"
	MsgEnrollmentRequired = "Selecciona un tipo de inscripción"
	MsgCheerleaderFemale  = "La inscripción como porrista solo está disponible para mujeres"
	MsgPriorRequired      = "Debes seleccionar un jugador primero"
	MsgFirstNameRequired  = "Nombre es requerido"
	MsgSurnameRequired    = "Apellido paterno es requerido"
	MsgBirthDateToday     = "La fecha de nacimiento no puede ser hoy"
	MsgCategoryNotFound   = "No se pudo asignar una categoría válida. Verifica la fecha de nacimiento."
	MsgAddressRequired    = "La dirección es requerida"
	MsgPhoneRequired      = "El teléfono es requerido"
	MsgSeasonRequired     = "Selecciona una temporada"
	MsgPhotoRequired      = "Sube una foto del jugador"
	MsgPriorNotRenewal    = "Selecciona reinscripción antes de elegir un jugador"
	MsgIncompleteStep     = "Por favor completa todos los campos requeridos"
)

// Validate checks the fields required by the current step and returns the
// failing fields with their messages. An empty result lets the wizard advance.
func Validate(s State, today time.Time) map[string]string {
	d := s.Draft
	errs := map[string]string{}

	switch s.Step() {
	case StepSex:
		if !d.Sex.Valid() {
			errs["sexo"] = MsgSexRequired
		}
	case StepEnrollmentType:
		switch {
		case !d.EnrollmentType.Valid():
			errs["tipo_inscripcion"] = MsgEnrollmentRequired
		case !offered(d.Sex, d.EnrollmentType):
			errs["tipo_inscripcion"] = MsgCheerleaderFemale
		case d.EnrollmentType == models.EnrollmentRenewal && s.Prior == nil:
			errs["jugador"] = MsgPriorRequired
		}
	case StepPersonalData:
		if blank(d.FirstName) {
			errs["nombre"] = MsgFirstNameRequired
		}
		if blank(d.PaternalSurname) {
			errs["apellido_p"] = MsgSurnameRequired
		}
		if d.BirthDate.IsZero() || models.DateOnly(d.BirthDate.Time).Equal(models.DateOnly(today)) {
			errs["fecha_nacimiento"] = MsgBirthDateToday
		}
		if d.EnrollmentType != models.EnrollmentCheerleader && (d.Category == "" || d.Category == models.CategoryNotFound) {
			errs["categoria"] = MsgCategoryNotFound
		}
	case StepContactData:
		if blank(d.Address) {
			errs["direccion"] = MsgAddressRequired
		}
		if blank(d.Phone) {
			errs["telefono"] = MsgPhoneRequired
		}
	case StepRenewalSeason:
		if blank(d.SeasonID) {
			errs["temporadaId"] = MsgSeasonRequired
		}
	case StepPhoto:
		if !d.Photo.Present() {
			errs[models.SlotPhoto] = MsgPhotoRequired
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
