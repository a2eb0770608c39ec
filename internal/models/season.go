package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Season states stored in estado_temporada.
const (
	SeasonActive   = "Activa"
	SeasonInactive = "Inactiva"
)

// Season represents a club season in the temporadas collection.
type Season struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name  string             `bson:"temporada" json:"temporada"`
	State string             `bson:"estado_temporada" json:"estado_temporada"`
}

// CategoryRange represents an age bracket: registrants of Sex born between
// StartDate and EndDate (both inclusive) belong to Name for the season.
type CategoryRange struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sex        Sex                `bson:"sexo" json:"sexo"`
	SeasonName string             `bson:"temporada" json:"temporada"`
	SeasonID   string             `bson:"temporadaId,omitempty" json:"temporadaId,omitempty"`
	Name       string             `bson:"nombre_categoria" json:"nombre_categoria"`
	StartDate  Date               `bson:"fecha_inicio" json:"fecha_inicio"`
	EndDate    Date               `bson:"fecha_fin" json:"fecha_fin"`
}

// Contains reports whether birthDate falls inside the range.
func (c CategoryRange) Contains(birthDate time.Time) bool {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return false
	}
	return Contains(c.StartDate.Time, c.EndDate.Time, birthDate)
}

// Overlaps reports whether two ranges share at least one day.
func (c CategoryRange) Overlaps(other CategoryRange) bool {
	return !c.EndDate.Before(other.StartDate.Time) && !other.EndDate.Before(c.StartDate.Time)
}
