package services

import (
	"strings"

	"github.com/clubtoros/toros-backend/internal/models"
)

// MissingFields lists the record fields that are empty. Every field counts
// except the signature; the category is exempt for cheerleaders and the
// transfer details only count for transfers.
func MissingFields(r *models.Registrant) []string {
	var missing []string
	check := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	checkPtr := func(key string, value *string) {
		if value == nil {
			missing = append(missing, key)
			return
		}
		check(key, *value)
	}

	check("nombre", r.FirstName)
	check("apellido_p", r.PaternalSurname)
	check("apellido_m", r.MaternalSurname)
	check("sexo", string(r.Sex))
	if r.EnrollmentType != models.EnrollmentCheerleader {
		check("categoria", r.Category)
	}
	check("direccion", r.Address)
	check("telefono", r.Phone)
	checkPtr("celular_tutor", r.GuardianCell)
	checkPtr("correo_tutor", r.GuardianEmail)
	check("fecha_nacimiento", r.BirthDate.String())
	check("lugar_nacimiento", r.BirthPlace)
	check("curp", r.CURP)
	check("grado_escolar", r.SchoolGrade)
	check("nombre_escuela", r.SchoolName)
	check("alergias", r.Allergies)
	check("padecimientos", r.Conditions)
	check("peso", r.Weight)
	check("tipo_inscripcion", string(r.EnrollmentType))
	checkPtr("foto", r.PhotoURL)
	check("numero_mfl", r.MemberNumber)
	checkPtr("temporadaId", r.SeasonID)

	checkPtr("documentos.ine_tutor", r.Documents.TutorID)
	checkPtr("documentos.curp_jugador", r.Documents.PlayerID)
	checkPtr("documentos.acta_nacimiento", r.Documents.BirthCertificate)
	checkPtr("documentos.comprobante_domicilio", r.Documents.ProofOfAddress)

	if r.EnrollmentType == models.EnrollmentTransfer {
		t := r.Transfer
		if t == nil {
			t = &models.TransferDetails{}
		}
		check("transferencia.club_anterior", t.PriorClub)
		check("transferencia.temporadas_jugadas", t.SeasonsPlayed)
		check("transferencia.motivo_transferencia", t.Reason)
	}
	return missing
}

// Completeness returns StatusComplete when no field is missing.
func Completeness(r *models.Registrant) string {
	if len(MissingFields(r)) == 0 {
		return models.StatusComplete
	}
	return models.StatusIncomplete
}
