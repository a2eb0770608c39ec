package wizard

import (
	"time"

	"github.com/clubtoros/toros-backend/internal/models"
)

// State is the whole wizard at one point in time. It is treated as an
// immutable value: every transition returns a new State and leaves its input
// untouched.
type State struct {
	Draft     models.RegistrationDraft `json:"draft"`
	StepIndex int                      `json:"step_index"`
	Prior     *models.PriorRegistrant  `json:"prior,omitempty"`
	Errors    map[string]string        `json:"errors,omitempty"`
}

// NewState returns the state a fresh session starts in.
func NewState(now time.Time) State {
	return State{Draft: models.NewDraft(now)}
}

// Steps derives the step sequence from the current draft and prior selection.
func (s State) Steps() []StepID {
	return StepsFor(s.Draft.EnrollmentType, s.Prior != nil)
}

// Step returns the step the wizard is on.
func (s State) Step() StepID {
	steps := s.Steps()
	return steps[clampIndex(s.StepIndex, len(steps))]
}

// IsLastStep reports whether the wizard is on the documentation step.
func (s State) IsLastStep() bool {
	return clampIndex(s.StepIndex, len(s.Steps())) == len(s.Steps())-1
}

// DocumentChange replaces the attachment in one document slot.
type DocumentChange struct {
	Slot       models.DocumentSlot
	Attachment models.Attachment
}

// DraftPatch lists field edits. Nil fields are left alone. Attachments and
// the category are set by the server only and never decoded from requests.
type DraftPatch struct {
	FirstName       *string                 `json:"nombre,omitempty"`
	PaternalSurname *string                 `json:"apellido_p,omitempty"`
	MaternalSurname *string                 `json:"apellido_m,omitempty"`
	Sex             *models.Sex             `json:"sexo,omitempty"`
	BirthDate       *models.Date            `json:"fecha_nacimiento,omitempty"`
	BirthPlace      *string                 `json:"lugar_nacimiento,omitempty"`
	CURP            *string                 `json:"curp,omitempty"`
	Address         *string                 `json:"direccion,omitempty"`
	Phone           *string                 `json:"telefono,omitempty"`
	GuardianCell    *string                 `json:"celular_tutor,omitempty"`
	GuardianEmail   *string                 `json:"correo_tutor,omitempty"`
	SchoolGrade     *string                 `json:"grado_escolar,omitempty"`
	SchoolName      *string                 `json:"nombre_escuela,omitempty"`
	Allergies       *string                 `json:"alergias,omitempty"`
	Conditions      *string                 `json:"padecimientos,omitempty"`
	Weight          *string                 `json:"peso,omitempty"`
	EnrollmentType  *models.EnrollmentType  `json:"tipo_inscripcion,omitempty"`
	SeasonID        *string                 `json:"temporadaId,omitempty"`
	Transfer        *models.TransferDetails `json:"transferencia,omitempty"`
	Signature       *string                 `json:"firma,omitempty"`
	MemberNumber    *string                 `json:"numero_mfl,omitempty"`

	Category *string            `json:"-"`
	Photo    *models.Attachment `json:"-"`
	Document *DocumentChange    `json:"-"`
}

// Reduce applies patch to s. The step list is re-derived from the patched
// draft and the step index clamped to it.
func Reduce(s State, patch DraftPatch) State {
	next := s
	d := s.Draft
	var touched []string

	str := func(dst *string, v *string, key string) {
		if v != nil {
			*dst = *v
			touched = append(touched, key)
		}
	}
	str(&d.FirstName, patch.FirstName, "nombre")
	str(&d.PaternalSurname, patch.PaternalSurname, "apellido_p")
	str(&d.MaternalSurname, patch.MaternalSurname, "apellido_m")
	str(&d.BirthPlace, patch.BirthPlace, "lugar_nacimiento")
	str(&d.CURP, patch.CURP, "curp")
	str(&d.Address, patch.Address, "direccion")
	str(&d.Phone, patch.Phone, "telefono")
	str(&d.GuardianCell, patch.GuardianCell, "celular_tutor")
	str(&d.GuardianEmail, patch.GuardianEmail, "correo_tutor")
	str(&d.SchoolGrade, patch.SchoolGrade, "grado_escolar")
	str(&d.SchoolName, patch.SchoolName, "nombre_escuela")
	str(&d.Allergies, patch.Allergies, "alergias")
	str(&d.Conditions, patch.Conditions, "padecimientos")
	str(&d.Weight, patch.Weight, "peso")
	str(&d.SeasonID, patch.SeasonID, "temporadaId")
	str(&d.Category, patch.Category, "categoria")
	str(&d.Documents.Signature, patch.Signature, "firma")
	str(&d.MemberNumber, patch.MemberNumber, "numero_mfl")

	if patch.Sex != nil {
		d.Sex = *patch.Sex
		touched = append(touched, "sexo")
	}
	if patch.BirthDate != nil {
		d.BirthDate = models.NewDate(patch.BirthDate.Time)
		touched = append(touched, "fecha_nacimiento")
	}
	if patch.EnrollmentType != nil {
		d.EnrollmentType = *patch.EnrollmentType
		touched = append(touched, "tipo_inscripcion")
	}
	if patch.Transfer != nil {
		d.Transfer = *patch.Transfer
		touched = append(touched, "transferencia")
	}
	if patch.Photo != nil {
		d.Photo = *patch.Photo
		touched = append(touched, models.SlotPhoto)
	}
	if patch.Document != nil {
		d.Documents = d.Documents.With(patch.Document.Slot, patch.Document.Attachment)
		touched = append(touched, string(patch.Document.Slot))
	}

	// A sex change can withdraw the cheerleader option.
	if d.EnrollmentType != "" && d.Sex != "" && !offered(d.Sex, d.EnrollmentType) {
		d.EnrollmentType = ""
	}
	if d.EnrollmentType != models.EnrollmentRenewal {
		next.Prior = nil
	}
	if d.EnrollmentType == models.EnrollmentCheerleader {
		d.Category = ""
	}

	next.Draft = d
	next.Errors = withoutKeys(s.Errors, touched)
	next.StepIndex = clampIndex(s.StepIndex, len(next.Steps()))
	return next
}

// WithPrior selects prior for a renewal and pre-fills the draft from it.
func WithPrior(s State, prior models.PriorRegistrant) State {
	next := s
	p := prior
	next.Prior = &p

	r := prior.Record
	d := s.Draft
	d.FirstName = r.FirstName
	d.PaternalSurname = r.PaternalSurname
	d.MaternalSurname = r.MaternalSurname
	if r.Sex.Valid() {
		d.Sex = r.Sex
	}
	if !r.BirthDate.IsZero() {
		d.BirthDate = r.BirthDate
	}
	d.BirthPlace = r.BirthPlace
	d.CURP = r.CURP
	d.SchoolGrade = r.SchoolGrade
	d.SchoolName = r.SchoolName
	d.Allergies = r.Allergies
	d.Conditions = r.Conditions
	d.Weight = r.Weight
	d.Category = r.Category
	d.Address = r.Address
	d.Phone = r.Phone
	d.GuardianCell = deref(r.GuardianCell)
	d.GuardianEmail = deref(r.GuardianEmail)
	if r.MemberNumber != "" {
		d.MemberNumber = r.MemberNumber
	}

	next.Draft = d
	next.Errors = nil
	next.StepIndex = clampIndex(s.StepIndex, len(next.Steps()))
	return next
}

// Advance moves one step forward, staying on the last step.
func Advance(s State) State {
	next := s
	next.Errors = nil
	next.StepIndex = clampIndex(s.StepIndex+1, len(s.Steps()))
	return next
}

// Back moves one step backwards, staying on the first step.
func Back(s State) State {
	next := s
	next.Errors = nil
	next.StepIndex = clampIndex(s.StepIndex-1, len(s.Steps()))
	return next
}

// categoryInputsChanged reports whether the fields category resolution
// depends on differ between two drafts.
func categoryInputsChanged(before, after models.RegistrationDraft) bool {
	return !before.BirthDate.Equal(after.BirthDate.Time) ||
		before.Sex != after.Sex ||
		before.EnrollmentType != after.EnrollmentType ||
		before.SeasonID != after.SeasonID
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func withoutKeys(errs map[string]string, keys []string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
