package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubtoros/toros-backend/internal/metrics"
	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
)

// MsgPaymentSetupFailed is shown when the registrant was stored but its
// payment schedule could not be created.
const MsgPaymentSetupFailed = "Se completó el registro pero hubo un problema con los pagos. Contacta al administrador."

const dueInDays = 7

// costLookup carries what the cost strategies may filter on.
type costLookup struct {
	seasonName string
	seasonID   string
	category   string
}

// costStrategy builds one cost query. ok is false when the strategy does not
// apply to the lookup.
type costStrategy struct {
	name   string
	filter func(l costLookup) (f repositories.CostFilter, ok bool)
}

// costStrategies are tried in order; the first non-empty result wins.
var costStrategies = []costStrategy{
	{
		name: "season_name",
		filter: func(l costLookup) (repositories.CostFilter, bool) {
			return repositories.CostFilter{SeasonName: l.seasonName, Category: l.category}, l.seasonName != ""
		},
	},
	{
		name: "season_id",
		filter: func(l costLookup) (repositories.CostFilter, bool) {
			return repositories.CostFilter{SeasonID: l.seasonID, Category: l.category}, l.seasonID != ""
		},
	},
	{
		name: "category",
		filter: func(l costLookup) (repositories.CostFilter, bool) {
			return repositories.CostFilter{Category: l.category}, l.category != ""
		},
	},
}

// PaymentScheduleInput is what a schedule is generated from.
type PaymentScheduleInput struct {
	RegistrantID string
	Draft        models.RegistrationDraft
	SeasonID     string
}

// PaymentScheduleService creates the obligations of a new registrant.
type PaymentScheduleService struct {
	seasonRepo  repositories.SeasonRepository
	costRepo    repositories.CostRepository
	paymentRepo repositories.PaymentRepository
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewPaymentScheduleService creates a new PaymentScheduleService
func NewPaymentScheduleService(
	seasonRepo repositories.SeasonRepository,
	costRepo repositories.CostRepository,
	paymentRepo repositories.PaymentRepository,
	m *metrics.Metrics,
	now func() time.Time,
) *PaymentScheduleService {
	if now == nil {
		now = time.Now
	}
	return &PaymentScheduleService{
		seasonRepo:  seasonRepo,
		costRepo:    costRepo,
		paymentRepo: paymentRepo,
		metrics:     m,
		now:         now,
	}
}

// Generate builds and stores the payment schedule of a new registrant. It
// returns a nil schedule and no error when no cost definition applies.
func (s *PaymentScheduleService) Generate(ctx context.Context, in PaymentScheduleInput) (*models.PaymentSchedule, string, error) {
	lookup := costLookup{
		seasonName: s.seasonName(ctx, in.SeasonID),
		seasonID:   in.SeasonID,
		category:   in.Draft.Category,
	}
	kind := costBucket(in.Draft.EnrollmentType).Kind()

	cost, err := s.findCost(ctx, kind, lookup)
	if err != nil {
		s.record("failed")
		return nil, "", err
	}
	if cost == nil {
		slog.Warn("No cost definition found, payment schedule skipped",
			"registrantId", in.RegistrantID, "kind", kind,
			"seasonId", lookup.seasonID, "season", lookup.seasonName, "category", lookup.category)
		s.record("skipped")
		return nil, "", nil
	}

	schedule := s.build(in, kind, cost)
	id, err := s.paymentRepo.Create(ctx, kind, schedule)
	if err != nil {
		s.record("failed")
		return nil, "", fmt.Errorf("store payment schedule: %w", err)
	}
	s.record("created")
	slog.Info("Payment schedule created", "scheduleId", id, "registrantId", in.RegistrantID, "total", schedule.Total)
	return schedule, id, nil
}

// costBucket maps renewals onto new-member pricing.
func costBucket(t models.EnrollmentType) models.EnrollmentType {
	if t == models.EnrollmentRenewal {
		return models.EnrollmentNew
	}
	return t
}

func (s *PaymentScheduleService) seasonName(ctx context.Context, seasonID string) string {
	if seasonID == "" {
		return ""
	}
	season, err := s.seasonRepo.FindByID(ctx, seasonID)
	if err != nil {
		slog.Warn("Payment schedule: season name unavailable", "seasonId", seasonID, "error", err)
		return ""
	}
	return season.Name
}

func (s *PaymentScheduleService) findCost(ctx context.Context, kind models.RegistrantKind, l costLookup) (*models.CostDefinition, error) {
	for _, strategy := range costStrategies {
		filter, ok := strategy.filter(l)
		if !ok {
			continue
		}
		costs, err := s.costRepo.Find(ctx, kind, filter)
		if err != nil {
			return nil, fmt.Errorf("find costs by %s: %w", strategy.name, err)
		}
		if len(costs) > 0 {
			return &costs[0], nil
		}
	}
	return nil, nil
}

func (s *PaymentScheduleService) build(in PaymentScheduleInput, kind models.RegistrantKind, cost *models.CostDefinition) *models.PaymentSchedule {
	now := s.now()
	due := models.FormatDate(now.AddDate(0, 0, dueInDays))

	schedule := &models.PaymentSchedule{
		Name:         in.Draft.FullName(),
		RegisteredOn: models.FormatDate(now),
		SeasonID:     in.SeasonID,
	}
	if schedule.SeasonID == "" {
		schedule.SeasonID = cost.SeasonID
	}

	if kind == models.KindCheerleader {
		schedule.CheerleaderID = in.RegistrantID
		schedule.Payments = []models.PaymentObligation{
			obligation(models.ObligationEnrollment, cost.Enrollment, &due),
			obligation(models.ObligationCoaching, cost.Coaching, nil),
		}
	} else {
		category := in.Draft.Category
		schedule.PlayerID = in.RegistrantID
		schedule.Category = &category

		enrollment := obligation(models.ObligationEnrollment, cost.Enrollment, &due)
		zero := "0"
		subtotal := cost.Enrollment.Int64()
		extension := false
		enrollment.Scholarship = &zero
		enrollment.Discount = &zero
		enrollment.Subtotal = &subtotal
		enrollment.Extension = &extension

		// The weigh-in carries the due date in metodo_pago and has no fecha_limite.
		weighIn := obligation(models.ObligationWeighIn, cost.WeighIn, nil)
		weighInDate := due
		weighIn.PaymentMethod = &weighInDate

		schedule.Payments = []models.PaymentObligation{
			enrollment,
			obligation(models.ObligationFirstMatchday, cost.FirstMatchday, &due),
			weighIn,
		}
	}

	for _, p := range schedule.Payments {
		schedule.Total += p.Amount
	}
	schedule.TotalPending = schedule.Total
	return schedule
}

func obligation(label string, amount models.Amount, due *string) models.PaymentObligation {
	var dueDate *string
	if due != nil {
		d := *due
		dueDate = &d
	}
	return models.PaymentObligation{
		Type:         label,
		Status:       models.PaymentPending,
		Amount:       amount.Int64(),
		DueDate:      dueDate,
		Partial:      models.NoInstallments,
		Installments: []models.Installment{},
	}
}

func (s *PaymentScheduleService) record(result string) {
	if s.metrics != nil {
		s.metrics.IncrementPaymentSchedule(result)
	}
}
