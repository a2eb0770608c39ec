package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CostDefinition represents the fees of one category in one season, stored in
// costos-jugador or costos-porrista.
type CostDefinition struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SeasonName    string             `bson:"temporada" json:"temporada"`
	SeasonID      string             `bson:"temporadaId" json:"temporadaId"`
	Category      string             `bson:"categoria" json:"categoria"`
	Enrollment    Amount             `bson:"inscripcion" json:"inscripcion"`
	FirstMatchday Amount             `bson:"primera_jornada" json:"primera_jornada"`
	WeighIn       Amount             `bson:"pesaje" json:"pesaje"`
	Coaching      Amount             `bson:"coaching" json:"coaching"`
}
