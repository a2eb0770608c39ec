package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/storage"
	"github.com/clubtoros/toros-backend/internal/wizard"
	"github.com/clubtoros/toros-backend/pkg/apperrors"
)

// Session messages.
const (
	MsgSessionNotFound   = "No se encontró la sesión de registro"
	MsgSubmitInProgress  = "Ya hay un registro en proceso para esta sesión"
	MsgUnknownAttachment = "Tipo de archivo desconocido"
	MsgFileTooLarge      = "El archivo es demasiado grande"
)

// AttachmentSpool stages files between the attachment step and submission.
type AttachmentSpool interface {
	Stage(r io.Reader) (string, int64, error)
	Touch(ref string) error
	Remove(ref string) error
}

// PriorLoader fetches the registrant picked for a renewal.
type PriorLoader interface {
	LoadPrior(ctx context.Context, collection, id string) (*models.PriorRegistrant, error)
}

// Submitter runs the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*SubmissionResult, error)
}

// WizardSessionService keeps one wizard per guardian attempt and applies
// transitions to it.
type WizardSessionService struct {
	store     wizard.SessionStore
	resolver  wizard.CategoryResolver
	spool     AttachmentSpool
	priors    PriorLoader
	submitter Submitter
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
	locks    map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// NewWizardSessionService creates a new WizardSessionService
func NewWizardSessionService(
	store wizard.SessionStore,
	resolver wizard.CategoryResolver,
	spool AttachmentSpool,
	priors PriorLoader,
	submitter Submitter,
	now func() time.Time,
) *WizardSessionService {
	if now == nil {
		now = time.Now
	}
	return &WizardSessionService{
		store:     store,
		resolver:  resolver,
		spool:     spool,
		priors:    priors,
		submitter: submitter,
		now:       now,
		inflight:  make(map[string]struct{}),
		locks:     make(map[string]*sessionLock),
	}
}

// Create starts a new session for user.
func (s *WizardSessionService) Create(ctx context.Context, user *models.SessionUser) (*wizard.Session, error) {
	if user == nil || user.ID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, MsgSessionUnverified)
	}
	now := s.now()
	session := &wizard.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		State:     wizard.NewState(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "save wizard session")
	}
	slog.Info("Wizard session created", "sessionId", session.ID, "userId", user.ID)
	return session, nil
}

// Get returns the session if it belongs to user.
func (s *WizardSessionService) Get(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, error) {
	if user == nil || user.ID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, MsgSessionUnverified)
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, MsgSessionNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "load wizard session")
	}
	if session.UserID != user.ID {
		return nil, apperrors.New(apperrors.CodeNotFound, MsgSessionNotFound)
	}
	return session, nil
}

// UpdateDraft applies patch to the draft.
func (s *WizardSessionService) UpdateDraft(ctx context.Context, user *models.SessionUser, id string, patch wizard.DraftPatch) (*wizard.Session, error) {
	return s.transition(ctx, user, id, func(w *wizard.Wizard) error {
		w.Update(ctx, patch)
		return nil
	})
}

// Next validates the current step and advances. A failed validation is not
// an error: the field messages are returned on the session state.
func (s *WizardSessionService) Next(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, bool, error) {
	var advanced bool
	session, err := s.transition(ctx, user, id, func(w *wizard.Wizard) error {
		_, advanced = w.Next(ctx)
		return nil
	})
	return session, advanced, err
}

// Previous goes back one step.
func (s *WizardSessionService) Previous(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, error) {
	return s.transition(ctx, user, id, func(w *wizard.Wizard) error {
		w.Previous()
		return nil
	})
}

// Reset discards the draft.
func (s *WizardSessionService) Reset(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, error) {
	var discarded models.RegistrationDraft
	session, err := s.transition(ctx, user, id, func(w *wizard.Wizard) error {
		discarded = w.State().Draft
		w.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.discardStaged(discarded)
	return session, nil
}

// Focus reports the wizard screen regaining focus from previousRoute.
func (s *WizardSessionService) Focus(ctx context.Context, user *models.SessionUser, id, previousRoute string) (*wizard.Session, error) {
	if previousRoute == wizard.EntryRoute {
		return s.Reset(ctx, user, id)
	}
	return s.Get(ctx, user, id)
}

// SelectPrior picks the stored registrant a renewal continues.
func (s *WizardSessionService) SelectPrior(ctx context.Context, user *models.SessionUser, id, collection, priorID string) (*wizard.Session, error) {
	prior, err := s.priors.LoadPrior(ctx, collection, priorID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, user, id, func(w *wizard.Wizard) error {
		_, err := w.SelectPrior(ctx, *prior)
		return err
	})
}

// StageAttachment stores a picked file and attaches it to slot, which is the
// photo slot or one of the document slots. A file previously staged for the
// slot is discarded.
func (s *WizardSessionService) StageAttachment(ctx context.Context, user *models.SessionUser, id, slot, name, mimeType string, r io.Reader) (*wizard.Session, error) {
	isPhoto := slot == models.SlotPhoto
	if !isPhoto && !models.ValidDocumentSlot(slot) {
		return nil, apperrors.Validation(MsgUnknownAttachment, map[string]string{"slot": MsgUnknownAttachment})
	}
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	if s.submitting(id) {
		return nil, apperrors.New(apperrors.CodeConflict, MsgSubmitInProgress)
	}

	ref, size, err := s.spool.Stage(r)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperrors.Validation(MsgFileTooLarge, map[string]string{slot: MsgFileTooLarge})
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "stage attachment")
	}
	attachment := models.Attachment{LocalRef: ref, Name: name, MimeType: mimeType, Size: size}

	var previous models.Attachment
	updated, err := s.transition(ctx, user, id, func(w *wizard.Wizard) error {
		draft := w.State().Draft
		patch := wizard.DraftPatch{}
		if isPhoto {
			previous = draft.Photo
			patch.Photo = &attachment
		} else {
			docSlot := models.DocumentSlot(slot)
			previous = draft.Documents.Get(docSlot)
			patch.Document = &wizard.DocumentChange{Slot: docSlot, Attachment: attachment}
		}
		w.Update(ctx, patch)
		return nil
	})
	if err != nil {
		_ = s.spool.Remove(ref)
		return nil, err
	}
	if previous.Present() {
		s.removeStaged(previous.LocalRef)
	}
	return updated, nil
}

// Submit runs the pipeline for the session's draft. Only one submission per
// session may run at a time and the session rejects changes while it runs.
// A successful submission resets the wizard.
func (s *WizardSessionService) Submit(ctx context.Context, user *models.SessionUser, id string, consents Consents) (*SubmissionResult, error) {
	if !s.acquire(id) {
		return nil, apperrors.New(apperrors.CodeConflict, MsgSubmitInProgress)
	}
	defer s.release(id)

	// Waits for a transition that started before the submission.
	unlock := s.lock(id)
	session, err := s.Get(ctx, user, id)
	unlock()
	if err != nil {
		return nil, err
	}
	state := session.State
	if !state.IsLastStep() {
		return nil, apperrors.Validation(wizard.MsgIncompleteStep, map[string]string{"step": string(state.Step())})
	}

	result, err := s.submitter.Submit(ctx, Submission{
		SessionID: id,
		User:      user,
		Draft:     state.Draft,
		Prior:     state.Prior,
		Consents:  consents,
	})
	if err != nil {
		return nil, err
	}

	s.discardStaged(state.Draft)
	session.State = wizard.NewState(s.now())
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		slog.Warn("Failed to reset wizard session after submission", "error", err, "sessionId", id)
	}
	return result, nil
}

func (s *WizardSessionService) transition(ctx context.Context, user *models.SessionUser, id string, fn func(*wizard.Wizard) error) (*wizard.Session, error) {
	unlock := s.lock(id)
	defer unlock()
	if s.submitting(id) {
		return nil, apperrors.New(apperrors.CodeConflict, MsgSubmitInProgress)
	}

	session, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	w := wizard.New(s.resolver, session.State, s.now)
	if err := fn(w); err != nil {
		return nil, err
	}
	session.State = w.State()
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "save wizard session")
	}
	s.touchStaged(session.State.Draft)
	return session, nil
}

// lock serializes transitions of one session within this process.
func (s *WizardSessionService) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
	}
}

func (s *WizardSessionService) submitting(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[id]
	return busy
}

func (s *WizardSessionService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *WizardSessionService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *WizardSessionService) discardStaged(d models.RegistrationDraft) {
	for _, ref := range stagedRefs(d) {
		s.removeStaged(ref)
	}
}

// touchStaged keeps the draft's staged files as fresh as the session so the
// cleanup sweep only removes files of abandoned sessions.
func (s *WizardSessionService) touchStaged(d models.RegistrationDraft) {
	for _, ref := range stagedRefs(d) {
		if err := s.spool.Touch(ref); err != nil {
			slog.Warn("Failed to refresh staged file", "error", err, "ref", ref)
		}
	}
}

func stagedRefs(d models.RegistrationDraft) []string {
	var refs []string
	if d.Photo.Present() {
		refs = append(refs, d.Photo.LocalRef)
	}
	for _, slot := range models.DocumentSlots {
		if a := d.Documents.Get(slot); a.Present() {
			refs = append(refs, a.LocalRef)
		}
	}
	return refs
}

func (s *WizardSessionService) removeStaged(ref string) {
	if err := s.spool.Remove(ref); err != nil {
		slog.Warn("Failed to remove staged file", "error", err, "ref", ref)
	}
}
