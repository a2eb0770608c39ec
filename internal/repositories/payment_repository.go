package repositories

import (
	"context"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

type paymentRepository struct {
	store DocumentStore
}

// NewPaymentRepository creates a PaymentRepository backed by store
func NewPaymentRepository(store DocumentStore) PaymentRepository {
	return &paymentRepository{store: store}
}

// Create inserts a payment schedule
func (r *paymentRepository) Create(ctx context.Context, kind models.RegistrantKind, schedule *models.PaymentSchedule) (string, error) {
	id, err := r.store.Insert(ctx, PaymentCollection(kind), schedule)
	if err != nil {
		return "", fmt.Errorf("insert payment schedule: %w", err)
	}
	return id, nil
}

// FindByRegistrant returns the schedules attached to a registrant
func (r *paymentRepository) FindByRegistrant(ctx context.Context, kind models.RegistrantKind, registrantID string) ([]models.PaymentSchedule, error) {
	field := "jugadorId"
	if kind == models.KindCheerleader {
		field = "porristaId"
	}
	var schedules []models.PaymentSchedule
	if err := r.store.Find(ctx, PaymentCollection(kind), []Predicate{Eq(field, registrantID)}, &schedules); err != nil {
		return nil, fmt.Errorf("find payment schedules: %w", err)
	}
	return schedules, nil
}
