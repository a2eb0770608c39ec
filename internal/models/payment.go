package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Obligation labels and states.
const (
	ObligationEnrollment    = "Inscripción"
	ObligationFirstMatchday = "Primera jornada"
	ObligationWeighIn       = "Pesaje"
	ObligationCoaching      = "Coaching"

	PaymentPending = "pendiente"
	NoInstallments = "NO"
)

// Installment represents a partial payment made against an obligation.
type Installment struct {
	Amount int64  `bson:"monto" json:"monto"`
	Date   string `bson:"fecha" json:"fecha"`
	Method string `bson:"metodo_pago,omitempty" json:"metodo_pago,omitempty"`
}

// PaymentObligation represents one fee owed by a registrant. The scholarship,
// discount, subtotal and extension fields only appear on a player's
// enrollment fee.
type PaymentObligation struct {
	Type          string        `bson:"tipo" json:"tipo"`
	Scholarship   *string       `bson:"beca,omitempty" json:"beca,omitempty"`
	Discount      *string       `bson:"descuento,omitempty" json:"descuento,omitempty"`
	Status        string        `bson:"estatus" json:"estatus"`
	PaidAt        *string       `bson:"fecha_pago" json:"fecha_pago"`
	Subtotal      *int64        `bson:"submonto,omitempty" json:"submonto,omitempty"`
	Amount        int64         `bson:"monto" json:"monto"`
	Extension     *bool         `bson:"prorroga,omitempty" json:"prorroga,omitempty"`
	DueDate       *string       `bson:"fecha_limite" json:"fecha_limite"`
	PaymentMethod *string       `bson:"metodo_pago" json:"metodo_pago"`
	Partial       string        `bson:"abono" json:"abono"`
	Installments  []Installment `bson:"abonos" json:"abonos"`
	TotalPaid     int64         `bson:"total_abonado" json:"total_abonado"`
}

// PaymentSchedule represents the obligations created for a new registrant in
// pagos_jugadores or pagos_porristas.
type PaymentSchedule struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID      string              `bson:"jugadorId,omitempty" json:"jugadorId,omitempty"`
	CheerleaderID string              `bson:"porristaId,omitempty" json:"porristaId,omitempty"`
	Name          string              `bson:"nombre" json:"nombre"`
	Category      *string             `bson:"categoria,omitempty" json:"categoria,omitempty"`
	Payments      []PaymentObligation `bson:"pagos" json:"pagos"`
	TotalPaid     int64               `bson:"monto_total_pagado" json:"monto_total_pagado"`
	TotalPending  int64               `bson:"monto_total_pendiente" json:"monto_total_pendiente"`
	Total         int64               `bson:"monto_total" json:"monto_total"`
	RegisteredOn  string              `bson:"fecha_registro" json:"fecha_registro"`
	SeasonID      string              `bson:"temporadaId" json:"temporadaId"`
}
