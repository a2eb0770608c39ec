package wizard

import (
	"context"
	"time"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/pkg/apperrors"
)

// EntryRoute is the route whose departure resets the wizard on focus.
const EntryRoute = "MainTabs"

// CategoryQuery is the input of a category resolution.
type CategoryQuery struct {
	BirthDate      time.Time
	Sex            models.Sex
	SeasonID       string
	EnrollmentType models.EnrollmentType
}

// Resolution is the resolved category and, when resolved without a season,
// the season the matching range belongs to.
type Resolution struct {
	Category string
	SeasonID string
}

// CategoryResolver assigns age-bracket categories. It never fails: anything
// that cannot be resolved comes back as models.CategoryNotFound.
type CategoryResolver interface {
	Resolve(ctx context.Context, q CategoryQuery) Resolution
}

// Wizard drives one registration attempt. It holds the current State and
// replaces it on every transition.
type Wizard struct {
	resolver CategoryResolver
	now      func() time.Time
	state    State
}

// New creates a wizard resuming from state.
func New(resolver CategoryResolver, state State, now func() time.Time) *Wizard {
	if now == nil {
		now = time.Now
	}
	return &Wizard{resolver: resolver, now: now, state: state}
}

// State returns the current state.
func (w *Wizard) State() State {
	return w.state
}

// Update applies patch and re-resolves the category when birth date, sex,
// enrollment type or season changed.
func (w *Wizard) Update(ctx context.Context, patch DraftPatch) State {
	before := w.state
	next := Reduce(before, patch)
	if categoryInputsChanged(before.Draft, next.Draft) {
		next = w.recategorize(ctx, next)
	}
	w.state = next
	return next
}

// Next validates the current step and advances when it passes. On failure
// the field errors are kept on the state and the step does not change.
func (w *Wizard) Next(_ context.Context) (State, bool) {
	if errs := Validate(w.state, w.now()); errs != nil {
		next := w.state
		next.Errors = errs
		w.state = next
		return next, false
	}
	w.state = Advance(w.state)
	return w.state, true
}

// Previous goes back one step.
func (w *Wizard) Previous() State {
	w.state = Back(w.state)
	return w.state
}

// SelectPrior picks the registrant being renewed and pre-fills the draft.
func (w *Wizard) SelectPrior(ctx context.Context, prior models.PriorRegistrant) (State, error) {
	if w.state.Draft.EnrollmentType != models.EnrollmentRenewal {
		return w.state, apperrors.Validation(MsgPriorNotRenewal, map[string]string{"tipo_inscripcion": MsgPriorNotRenewal})
	}
	next := WithPrior(w.state, prior)
	if next.Draft.SeasonID != "" {
		next = w.recategorize(ctx, next)
	}
	w.state = next
	return next, nil
}

// Reset discards the draft and returns to the first step.
func (w *Wizard) Reset() State {
	w.state = NewState(w.now())
	return w.state
}

// Focus handles the wizard screen regaining focus. Coming back from the main
// tabs starts over.
func (w *Wizard) Focus(previousRoute string) State {
	if previousRoute == EntryRoute {
		return w.Reset()
	}
	return w.state
}

func (w *Wizard) recategorize(ctx context.Context, s State) State {
	d := s.Draft
	if d.EnrollmentType == models.EnrollmentCheerleader {
		d.Category = ""
		s.Draft = d
		return s
	}
	if !d.Sex.Valid() || d.BirthDate.IsZero() {
		return s
	}

	renewal := d.EnrollmentType == models.EnrollmentRenewal
	if renewal && d.SeasonID == "" {
		// The prior's category stands until a season is picked.
		return s
	}

	q := CategoryQuery{BirthDate: d.BirthDate.Time, Sex: d.Sex, EnrollmentType: d.EnrollmentType}
	if renewal {
		q.SeasonID = d.SeasonID
	}
	res := w.resolver.Resolve(ctx, q)
	d.Category = res.Category
	if !renewal {
		d.SeasonID = res.SeasonID
	}
	s.Draft = d
	return s
}
