package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/models"
)

// ErrNotFound is returned by Get and Update when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Collection names.
const (
	CollectionUsers               = "usuarios"
	CollectionPlayers             = "jugadores"
	CollectionCheerleaders        = "porristas"
	CollectionSeasons             = "temporadas"
	CollectionCategories          = "categorias"
	CollectionPlayerCosts         = "costos-jugador"
	CollectionCheerleaderCosts    = "costos-porrista"
	CollectionPlayerPayments      = "pagos_jugadores"
	CollectionCheerleaderPayments = "pagos_porristas"
)

// Op is a predicate operator.
type Op int

const (
	OpEq Op = iota
	OpIn
)

// Predicate filters a query on a single top-level field.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Eq matches records whose field equals value.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// In matches records whose field equals any element of values.
func In[T any](field string, values ...T) Predicate {
	return Predicate{Field: field, Op: OpIn, Value: values}
}

// Fields is a partial record used by Update.
type Fields map[string]any

// DocumentStore is the document database the services talk to. Records are
// addressed by a generated string id. Find decodes into a pointer to a slice
// and returns records in store order.
type DocumentStore interface {
	Find(ctx context.Context, collection string, predicates []Predicate, out any) error
	Insert(ctx context.Context, collection string, doc any) (string, error)
	Get(ctx context.Context, collection, id string, out any) error
	Update(ctx context.Context, collection, id string, fields Fields) error
}

// RegistrantCollection returns the collection holding registrants of kind.
func RegistrantCollection(kind models.RegistrantKind) string {
	if kind == models.KindCheerleader {
		return CollectionCheerleaders
	}
	return CollectionPlayers
}

// CostCollection returns the collection holding cost definitions of kind.
func CostCollection(kind models.RegistrantKind) string {
	if kind == models.KindCheerleader {
		return CollectionCheerleaderCosts
	}
	return CollectionPlayerCosts
}

// PaymentCollection returns the collection holding payment schedules of kind.
func PaymentCollection(kind models.RegistrantKind) string {
	if kind == models.KindCheerleader {
		return CollectionCheerleaderPayments
	}
	return CollectionPlayerPayments
}

// KindOfCollection maps a registrant collection back to its kind.
func KindOfCollection(collection string) (models.RegistrantKind, error) {
	switch collection {
	case CollectionPlayers:
		return models.KindPlayer, nil
	case CollectionCheerleaders:
		return models.KindCheerleader, nil
	}
	return "", fmt.Errorf("%q is not a registrant collection", collection)
}

// UserRepository defines the interface for guardian profile lookups
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
}

// SeasonRepository defines the interface for season data operations
type SeasonRepository interface {
	FindByID(ctx context.Context, id string) (*models.Season, error)
	FindByStates(ctx context.Context, states ...string) ([]models.Season, error)
	Create(ctx context.Context, season *models.Season) (string, error)
}

// CategoryRepository defines the interface for category range operations
type CategoryRepository interface {
	FindBySex(ctx context.Context, sex models.Sex) ([]models.CategoryRange, error)
	FindBySexAndSeason(ctx context.Context, sex models.Sex, seasonName string) ([]models.CategoryRange, error)
	Create(ctx context.Context, category *models.CategoryRange) (string, error)
}

// CostFilter selects cost definitions. Empty season fields are not filtered
// on; Category always is.
type CostFilter struct {
	SeasonName string
	SeasonID   string
	Category   string
}

// CostRepository defines the interface for cost definition operations
type CostRepository interface {
	Find(ctx context.Context, kind models.RegistrantKind, filter CostFilter) ([]models.CostDefinition, error)
	Create(ctx context.Context, kind models.RegistrantKind, cost *models.CostDefinition) (string, error)
}

// RegistrantFilter selects registrants. Empty fields are not filtered on.
type RegistrantFilter struct {
	CURP         string
	MemberNumber string
	OwnerID      string
	Activation   string
}

// RegistrantRepository defines the interface for player and cheerleader records
type RegistrantRepository interface {
	Create(ctx context.Context, kind models.RegistrantKind, registrant *models.Registrant) (string, error)
	FindByID(ctx context.Context, kind models.RegistrantKind, id string) (*models.Registrant, error)
	Find(ctx context.Context, kind models.RegistrantKind, filter RegistrantFilter) ([]models.Registrant, error)
	Update(ctx context.Context, kind models.RegistrantKind, id string, fields Fields) error
}

// PaymentRepository defines the interface for payment schedule operations
type PaymentRepository interface {
	Create(ctx context.Context, kind models.RegistrantKind, schedule *models.PaymentSchedule) (string, error)
	FindByRegistrant(ctx context.Context, kind models.RegistrantKind, registrantID string) ([]models.PaymentSchedule, error)
}
