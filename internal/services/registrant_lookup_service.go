package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/pkg/apperrors"
)

// Lookup messages.
const (
	MsgInvalidSearchTerm  = "Ingresa un CURP (18 caracteres) o MFL (6 dígitos) válido"
	MsgPriorNotFound      = "No se encontró un jugador/porrista con esos datos o ya está activo"
	MsgSeasonsUnavailable = "No se pudieron cargar las temporadas"
)

var (
	memberNumberPattern = regexp.MustCompile(`^\d{6}$`)
	firstNumberPattern  = regexp.MustCompile(`\d+`)
)

// RegistrantLookupService finds prior registrants for renewals.
type RegistrantLookupService struct {
	userRepo       repositories.UserRepository
	seasonRepo     repositories.SeasonRepository
	registrantRepo repositories.RegistrantRepository
}

// NewRegistrantLookupService creates a new RegistrantLookupService
func NewRegistrantLookupService(
	userRepo repositories.UserRepository,
	seasonRepo repositories.SeasonRepository,
	registrantRepo repositories.RegistrantRepository,
) *RegistrantLookupService {
	return &RegistrantLookupService{
		userRepo:       userRepo,
		seasonRepo:     seasonRepo,
		registrantRepo: registrantRepo,
	}
}

// SearchFilter turns a search term into a registrant filter. Terms of 18
// characters are CURPs, six digits a member number.
func SearchFilter(term string) (repositories.RegistrantFilter, error) {
	term = strings.TrimSpace(term)
	filter := repositories.RegistrantFilter{Activation: models.ActivationInactive}
	switch {
	case len([]rune(term)) == 18:
		filter.CURP = models.NormalizeCURP(term)
	case memberNumberPattern.MatchString(term):
		filter.MemberNumber = term
	default:
		return filter, apperrors.Validation(MsgInvalidSearchTerm, map[string]string{"term": MsgInvalidSearchTerm})
	}
	return filter, nil
}

// Search finds an inactive registrant by CURP or member number. Cheerleaders
// are only searched for women; a player match wins over a cheerleader one.
func (s *RegistrantLookupService) Search(ctx context.Context, term string, sex models.Sex) (*models.PriorRegistrant, error) {
	filter, err := SearchFilter(term)
	if err != nil {
		return nil, err
	}

	var players, cheerleaders []models.Registrant
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.registrantRepo.Find(gctx, models.KindPlayer, filter)
		players = found
		return err
	})
	if sex == models.SexFemale {
		g.Go(func() error {
			found, err := s.registrantRepo.Find(gctx, models.KindCheerleader, filter)
			cheerleaders = found
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "search registrants")
	}

	switch {
	case len(players) > 0:
		return prior(players[0], repositories.CollectionPlayers), nil
	case len(cheerleaders) > 0:
		return prior(cheerleaders[0], repositories.CollectionCheerleaders), nil
	}
	return nil, apperrors.New(apperrors.CodeNotFound, MsgPriorNotFound)
}

// ListForOwner lists the caller's registrants of the collection matching sex.
// Inactive records are preferred; active ones are listed when none are.
func (s *RegistrantLookupService) ListForOwner(ctx context.Context, user *models.SessionUser, sex models.Sex) ([]models.PriorRegistrant, error) {
	if user == nil || user.ID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, MsgSessionUnverified)
	}
	owner, err := resolveOwner(ctx, s.userRepo, user)
	if err != nil {
		slog.Warn("Owner lookup failed, using session id", "error", err, "email", user.Email)
	}

	kind := models.KindPlayer
	if sex == models.SexFemale {
		kind = models.KindCheerleader
	}
	collection := repositories.RegistrantCollection(kind)

	for _, activation := range []string{models.ActivationInactive, models.ActivationActive} {
		found, err := s.registrantRepo.Find(ctx, kind, repositories.RegistrantFilter{OwnerID: owner, Activation: activation})
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "list registrants")
		}
		if len(found) == 0 {
			continue
		}
		out := make([]models.PriorRegistrant, 0, len(found))
		for _, r := range found {
			out = append(out, *prior(r, collection))
		}
		return out, nil
	}
	return []models.PriorRegistrant{}, nil
}

// ListRenewalSeasons returns active and inactive seasons, newest first by the
// first number in their name.
func (s *RegistrantLookupService) ListRenewalSeasons(ctx context.Context) ([]models.Season, error) {
	seasons, err := s.seasonRepo.FindByStates(ctx, models.SeasonActive, models.SeasonInactive)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, MsgSeasonsUnavailable)
	}
	slices.SortStableFunc(seasons, func(a, b models.Season) int {
		return seasonNumber(b.Name) - seasonNumber(a.Name)
	})
	return seasons, nil
}

func seasonNumber(name string) int {
	n, err := strconv.Atoi(firstNumberPattern.FindString(name))
	if err != nil {
		return 0
	}
	return n
}

func prior(r models.Registrant, collection string) *models.PriorRegistrant {
	return &models.PriorRegistrant{ID: r.ID.Hex(), Collection: collection, Record: r}
}

// LoadPrior fetches a stored registrant by collection and id.
func (s *RegistrantLookupService) LoadPrior(ctx context.Context, collection, id string) (*models.PriorRegistrant, error) {
	kind, err := repositories.KindOfCollection(collection)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]string{"collection": err.Error()})
	}
	r, err := s.registrantRepo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, MsgPriorNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, fmt.Sprintf("load registrant %s", id))
	}
	return prior(*r, collection), nil
}
