package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sex of a registrant, as stored.
type Sex string

const (
	SexMale   Sex = "hombre"
	SexFemale Sex = "mujer"
)

// Valid reports whether s is one of the two accepted values.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// EnrollmentType is how a registrant joins the club for a season.
type EnrollmentType string

const (
	EnrollmentNew         EnrollmentType = "novato"
	EnrollmentRenewal     EnrollmentType = "reinscripcion"
	EnrollmentTransfer    EnrollmentType = "transferencia"
	EnrollmentCheerleader EnrollmentType = "porrista"
)

// Valid reports whether t is a known enrollment type.
func (t EnrollmentType) Valid() bool {
	switch t {
	case EnrollmentNew, EnrollmentRenewal, EnrollmentTransfer, EnrollmentCheerleader:
		return true
	}
	return false
}

// Kind returns which registrant collection the enrollment type writes to.
func (t EnrollmentType) Kind() RegistrantKind {
	if t == EnrollmentCheerleader {
		return KindCheerleader
	}
	return KindPlayer
}

// RegistrantKind separates football players from cheerleaders.
type RegistrantKind string

const (
	KindPlayer      RegistrantKind = "player"
	KindCheerleader RegistrantKind = "cheerleader"
)

const (
	// CategoryNotFound marks a draft whose birth date matched no category range.
	CategoryNotFound = "NO ENCONTRADA"

	ActivationActive   = "activo"
	ActivationInactive = "no activo"

	StatusComplete    = "Completo"
	StatusIncomplete  = "Incompleto"
	StatusDeactivated = "No activo"

	DefaultMemberNumber = "000000"
)

// Attachment is a file picked by the guardian. LocalRef points at the staged
// copy; RemoteURL is only set once the upload stage has transferred it.
type Attachment struct {
	LocalRef  string `json:"local_ref,omitempty"`
	Name      string `json:"name,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Size      int64  `json:"size,omitempty"`
	RemoteURL string `json:"remote_url,omitempty"`
}

// Present reports whether a file has been picked for the slot.
func (a Attachment) Present() bool {
	return a.LocalRef != ""
}

// DocumentSlot names one of the optional supporting documents.
type DocumentSlot string

const (
	SlotTutorID          DocumentSlot = "ine_tutor"
	SlotPlayerID         DocumentSlot = "curp_jugador"
	SlotBirthCertificate DocumentSlot = "acta_nacimiento"
	SlotProofOfAddress   DocumentSlot = "comprobante_domicilio"
)

// SlotPhoto is the attachment slot of the player photo.
const SlotPhoto = "foto_jugador"

// DocumentSlots lists the document slots in upload order.
var DocumentSlots = []DocumentSlot{SlotTutorID, SlotPlayerID, SlotBirthCertificate, SlotProofOfAddress}

// ValidDocumentSlot reports whether slot is one of DocumentSlots.
func ValidDocumentSlot(slot string) bool {
	for _, s := range DocumentSlots {
		if string(s) == slot {
			return true
		}
	}
	return false
}

// Documents groups the document attachments of a draft. Signature is captured
// separately and never counts towards completeness.
type Documents struct {
	TutorID          Attachment `json:"ine_tutor"`
	PlayerID         Attachment `json:"curp_jugador"`
	BirthCertificate Attachment `json:"acta_nacimiento"`
	ProofOfAddress   Attachment `json:"comprobante_domicilio"`
	Signature        string     `json:"firma,omitempty"`
}

// Get returns the attachment held in slot.
func (d Documents) Get(slot DocumentSlot) Attachment {
	switch slot {
	case SlotTutorID:
		return d.TutorID
	case SlotPlayerID:
		return d.PlayerID
	case SlotBirthCertificate:
		return d.BirthCertificate
	case SlotProofOfAddress:
		return d.ProofOfAddress
	}
	return Attachment{}
}

// With returns a copy of d with slot replaced by a.
func (d Documents) With(slot DocumentSlot, a Attachment) Documents {
	switch slot {
	case SlotTutorID:
		d.TutorID = a
	case SlotPlayerID:
		d.PlayerID = a
	case SlotBirthCertificate:
		d.BirthCertificate = a
	case SlotProofOfAddress:
		d.ProofOfAddress = a
	}
	return d
}

// TransferDetails is only persisted for transfer enrollments.
type TransferDetails struct {
	PriorClub     string `json:"club_anterior" bson:"club_anterior"`
	SeasonsPlayed string `json:"temporadas_jugadas" bson:"temporadas_jugadas"`
	Reason        string `json:"motivo_transferencia" bson:"motivo_transferencia"`
}

// RegistrationDraft is the wizard's working copy of a registration. It is a
// plain value: assigning it copies every field, attachments included.
type RegistrationDraft struct {
	FirstName       string          `json:"nombre"`
	PaternalSurname string          `json:"apellido_p"`
	MaternalSurname string          `json:"apellido_m"`
	Sex             Sex             `json:"sexo"`
	BirthDate       Date            `json:"fecha_nacimiento"`
	BirthPlace      string          `json:"lugar_nacimiento"`
	CURP            string          `json:"curp"`
	Address         string          `json:"direccion"`
	Phone           string          `json:"telefono"`
	GuardianCell    string          `json:"celular_tutor"`
	GuardianEmail   string          `json:"correo_tutor"`
	SchoolGrade     string          `json:"grado_escolar"`
	SchoolName      string          `json:"nombre_escuela"`
	Allergies       string          `json:"alergias"`
	Conditions      string          `json:"padecimientos"`
	Weight          string          `json:"peso"`
	EnrollmentType  EnrollmentType  `json:"tipo_inscripcion"`
	Category        string          `json:"categoria"`
	SeasonID        string          `json:"temporadaId"`
	Photo           Attachment      `json:"foto_jugador"`
	Documents       Documents       `json:"documentos"`
	Transfer        TransferDetails `json:"transferencia"`
	Activation      string          `json:"activo"`
	MemberNumber    string          `json:"numero_mfl"`
}

// NewDraft returns the draft every wizard session starts from. The birth date
// defaults to today, which the personal data step refuses.
func NewDraft(now time.Time) RegistrationDraft {
	return RegistrationDraft{
		BirthDate:    NewDate(now),
		Activation:   ActivationInactive,
		MemberNumber: DefaultMemberNumber,
	}
}

// FullName joins the given name and both surnames.
func (d RegistrationDraft) FullName() string {
	return d.FirstName + " " + d.PaternalSurname + " " + d.MaternalSurname
}

// RegistrantDocuments holds the remote URLs of uploaded documents.
type RegistrantDocuments struct {
	TutorID          *string `bson:"ine_tutor,omitempty" json:"ine_tutor,omitempty"`
	PlayerID         *string `bson:"curp_jugador,omitempty" json:"curp_jugador,omitempty"`
	BirthCertificate *string `bson:"acta_nacimiento,omitempty" json:"acta_nacimiento,omitempty"`
	ProofOfAddress   *string `bson:"comprobante_domicilio,omitempty" json:"comprobante_domicilio,omitempty"`
	Signature        *string `bson:"firma" json:"firma"`
}

// Set stores url under slot.
func (d *RegistrantDocuments) Set(slot DocumentSlot, url string) {
	switch slot {
	case SlotTutorID:
		d.TutorID = &url
	case SlotPlayerID:
		d.PlayerID = &url
	case SlotBirthCertificate:
		d.BirthCertificate = &url
	case SlotProofOfAddress:
		d.ProofOfAddress = &url
	}
}

// Registrant is a stored player or cheerleader record.
type Registrant struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName       string              `bson:"nombre" json:"nombre"`
	PaternalSurname string              `bson:"apellido_p" json:"apellido_p"`
	MaternalSurname string              `bson:"apellido_m" json:"apellido_m"`
	Sex             Sex                 `bson:"sexo" json:"sexo"`
	Category        string              `bson:"categoria" json:"categoria"`
	Address         string              `bson:"direccion" json:"direccion"`
	Phone           string              `bson:"telefono" json:"telefono"`
	GuardianCell    *string             `bson:"celular_tutor" json:"celular_tutor"`
	GuardianEmail   *string             `bson:"correo_tutor" json:"correo_tutor"`
	BirthDate       Date                `bson:"fecha_nacimiento" json:"fecha_nacimiento"`
	BirthPlace      string              `bson:"lugar_nacimiento" json:"lugar_nacimiento"`
	CURP            string              `bson:"curp" json:"curp"`
	SchoolGrade     string              `bson:"grado_escolar" json:"grado_escolar"`
	SchoolName      string              `bson:"nombre_escuela" json:"nombre_escuela"`
	Allergies       string              `bson:"alergias" json:"alergias"`
	Conditions      string              `bson:"padecimientos" json:"padecimientos"`
	Weight          string              `bson:"peso" json:"peso"`
	EnrollmentType  EnrollmentType      `bson:"tipo_inscripcion" json:"tipo_inscripcion"`
	PhotoURL        *string             `bson:"foto" json:"foto"`
	Documents       RegistrantDocuments `bson:"documentos" json:"documentos"`
	Activation      string              `bson:"activo" json:"activo"`
	MemberNumber    string              `bson:"numero_mfl" json:"numero_mfl"`
	RegisteredAt    time.Time           `bson:"fecha_registro" json:"fecha_registro"`
	OwnerID         string              `bson:"uid" json:"uid"`
	Status          string              `bson:"estatus" json:"estatus"`
	SeasonID        *string             `bson:"temporadaId" json:"temporadaId"`
	Transfer        *TransferDetails    `bson:"transferencia,omitempty" json:"transferencia,omitempty"`
	SeasonEndedAt   string              `bson:"fecha_fin_temporada,omitempty" json:"fecha_fin_temporada,omitempty"`
}

// PriorRegistrant references a stored record chosen for renewal.
type PriorRegistrant struct {
	ID         string     `json:"id"`
	Collection string     `json:"collection"`
	Record     Registrant `json:"record"`
}

// NormalizeCURP upper-cases and trims a CURP search term.
func NormalizeCURP(curp string) string {
	return strings.ToUpper(strings.TrimSpace(curp))
}
