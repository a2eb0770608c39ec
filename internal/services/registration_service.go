package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clubtoros/toros-backend/internal/metrics"
	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/storage"
	"github.com/clubtoros/toros-backend/pkg/apperrors"
)

// User-facing submission messages.
const (
	MsgSessionUnverified  = "No se pudo verificar tu sesión. Vuelve a iniciar sesión."
	MsgConsentsRequired   = "Debes aceptar el reglamento y declarar que la información es verídica"
	MsgSubmissionFailed   = "Ocurrió un error al completar el registro"
	MsgPredecessorWarning = "Se creó el nuevo registro pero hubo un problema al actualizar el registro anterior. Contacta al administrador."
)

// Submission stages, in execution order.
const (
	StageConsents        = "consents"
	StageIdentity        = "identity"
	StagePhotoUpload     = "photo_upload"
	StageDocumentUploads = "document_uploads"
	StageSeason          = "season"
	StageCompleteness    = "completeness"
	StagePersist         = "persist"
	StageDeactivation    = "predecessor_deactivation"
	StagePaymentSchedule = "payment_schedule"
)

// Outcome is the terminal state of a submission that stored a record.
type Outcome string

const (
	OutcomeRegistered               Outcome = "registered"
	OutcomeRegisteredPaymentPending Outcome = "registered_payment_pending"
)

// StageStatus is how a stage ended.
type StageStatus string

const (
	StageOK      StageStatus = "ok"
	StageSkipped StageStatus = "skipped"
	StageWarning StageStatus = "warning"
	StageFailed  StageStatus = "failed"
)

// StageReport describes one executed stage.
type StageReport struct {
	Stage  string      `json:"stage"`
	Status StageStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// Consents are the two confirmations required before submitting.
type Consents struct {
	Regulation   bool `json:"acepta_reglamento"`
	Truthfulness bool `json:"declara_veracidad"`
}

// Submission is the input of the pipeline.
type Submission struct {
	SessionID string
	User      *models.SessionUser
	Draft     models.RegistrationDraft
	Prior     *models.PriorRegistrant
	Consents  Consents
}

// SubmissionResult reports a submission that stored the registrant.
type SubmissionResult struct {
	Outcome           Outcome       `json:"outcome"`
	RegistrantID      string        `json:"registrant_id"`
	Collection        string        `json:"collection"`
	PaymentScheduleID string        `json:"payment_schedule_id,omitempty"`
	Status            string        `json:"estatus"`
	MissingFields     []string      `json:"missing_fields,omitempty"`
	Warnings          []string      `json:"warnings,omitempty"`
	Stages            []StageReport `json:"stages"`
}

// StagedFiles reads attachments staged before submission.
type StagedFiles interface {
	Read(ref string) ([]byte, error)
}

// PaymentScheduler creates the payment schedule of a stored registrant.
type PaymentScheduler interface {
	Generate(ctx context.Context, in PaymentScheduleInput) (*models.PaymentSchedule, string, error)
}

// UploadFolders are the destinations of photos and documents.
type UploadFolders struct {
	Photos    string
	Documents string
}

// RegistrationService runs the submission pipeline. Stages 0 to 6 abort the
// submission; uploads done before an abort are deleted again. Stages 7 and 8
// run after the record exists and only add warnings.
type RegistrationService struct {
	userRepo       repositories.UserRepository
	seasonRepo     repositories.SeasonRepository
	registrantRepo repositories.RegistrantRepository
	uploader       storage.Uploader
	files          StagedFiles
	payments       PaymentScheduler
	progress       *ProgressTracker
	metrics        *metrics.Metrics
	folders        UploadFolders
	tracer         trace.Tracer
	now            func() time.Time
}

// RegistrationDeps groups the collaborators of RegistrationService.
type RegistrationDeps struct {
	Users       repositories.UserRepository
	Seasons     repositories.SeasonRepository
	Registrants repositories.RegistrantRepository
	Uploader    storage.Uploader
	Files       StagedFiles
	Payments    PaymentScheduler
	Progress    *ProgressTracker
	Metrics     *metrics.Metrics
	Folders     UploadFolders
	Now         func() time.Time
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(deps RegistrationDeps) *RegistrationService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Progress == nil {
		deps.Progress = NewProgressTracker()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	return &RegistrationService{
		userRepo:       deps.Users,
		seasonRepo:     deps.Seasons,
		registrantRepo: deps.Registrants,
		uploader:       deps.Uploader,
		files:          deps.Files,
		payments:       deps.Payments,
		progress:       deps.Progress,
		metrics:        deps.Metrics,
		folders:        deps.Folders,
		tracer:         otel.Tracer("toros/registration"),
		now:            deps.Now,
	}
}

// Progress returns the tracker uploads report to.
func (s *RegistrationService) Progress() *ProgressTracker {
	return s.progress
}

// submission is the running state of one pipeline execution.
type submission struct {
	Submission
	result   SubmissionResult
	owner    string
	photoURL *string
	docs     models.RegistrantDocuments
	uploaded []string
	seasonID string
	record   *models.Registrant
}

// Submit runs the pipeline for a completed draft.
func (s *RegistrationService) Submit(ctx context.Context, sub Submission) (*SubmissionResult, error) {
	started := s.now()
	ctx, span := s.tracer.Start(ctx, "registration.submit", trace.WithAttributes(
		attribute.String("session.id", sub.SessionID),
		attribute.String("enrollment.type", string(sub.Draft.EnrollmentType)),
	))
	defer span.End()

	run := &submission{Submission: sub}
	s.progress.Begin(sub.SessionID)
	defer s.progress.Finish(sub.SessionID)

	critical := []struct {
		name string
		fn   func(context.Context, *submission) error
	}{
		{StageConsents, s.checkConsents},
		{StageIdentity, s.resolveIdentity},
		{StagePhotoUpload, s.uploadPhoto},
		{StageDocumentUploads, s.uploadDocuments},
		{StageSeason, s.resolveSeason},
		{StageCompleteness, s.evaluateCompleteness},
		{StagePersist, s.persist},
	}
	for _, stage := range critical {
		if err := s.runStage(ctx, run, stage.name, stage.fn); err != nil {
			s.compensate(ctx, run)
			span.SetStatus(codes.Error, stage.name)
			slog.Error("Registration submission aborted", "error", err, "stage", stage.name, "sessionId", sub.SessionID)
			return nil, abortError(err)
		}
	}

	run.result.Outcome = OutcomeRegistered
	s.deactivatePredecessor(ctx, run)
	s.createPaymentSchedule(ctx, run)

	s.metrics.IncrementSubmission(string(run.result.Outcome))
	s.metrics.ObserveSubmissionLatency(s.now().Sub(started).Seconds())
	span.SetAttributes(attribute.String("registration.outcome", string(run.result.Outcome)))
	slog.Info("Registration submitted",
		"registrantId", run.result.RegistrantID, "collection", run.result.Collection,
		"outcome", run.result.Outcome, "estatus", run.result.Status, "warnings", len(run.result.Warnings))

	result := run.result
	return &result, nil
}

func (s *RegistrationService) runStage(ctx context.Context, run *submission, name string, fn func(context.Context, *submission) error) error {
	ctx, span := s.tracer.Start(ctx, "registration."+name)
	defer span.End()

	if err := fn(ctx, run); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.IncrementStageFailure(name)
		run.report(name, StageFailed, err.Error())
		return err
	}
	return nil
}

func (r *submission) report(stage string, status StageStatus, detail string) {
	r.result.Stages = append(r.result.Stages, StageReport{Stage: stage, Status: status, Detail: detail})
}

func (r *submission) warn(stage, message string) {
	r.report(stage, StageWarning, message)
	r.result.Warnings = append(r.result.Warnings, message)
}

func abortError(err error) error {
	if apperrors.HasCode(err, apperrors.CodeValidation) || apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, MsgSubmissionFailed)
}

func (s *RegistrationService) checkConsents(_ context.Context, run *submission) error {
	fields := map[string]string{}
	if !run.Consents.Regulation {
		fields["acepta_reglamento"] = MsgConsentsRequired
	}
	if !run.Consents.Truthfulness {
		fields["declara_veracidad"] = MsgConsentsRequired
	}
	if len(fields) > 0 {
		return apperrors.Validation(MsgConsentsRequired, fields)
	}
	run.report(StageConsents, StageOK, "")
	return nil
}

// resolveIdentity finds the owner id stored on registrant records. The
// profile's uid wins over the session id, which is only a fallback.
func (s *RegistrationService) resolveIdentity(ctx context.Context, run *submission) error {
	if run.User == nil || run.User.ID == "" {
		return apperrors.New(apperrors.CodeUnauthorized, MsgSessionUnverified)
	}
	owner, err := resolveOwner(ctx, s.userRepo, run.User)
	if err != nil {
		slog.Warn("Owner lookup failed, using session id", "error", err, "email", run.User.Email)
	}
	run.owner = owner
	run.report(StageIdentity, StageOK, "")
	return nil
}

func resolveOwner(ctx context.Context, users repositories.UserRepository, user *models.SessionUser) (string, error) {
	if user.Email == "" {
		return user.ID, nil
	}
	profile, err := users.FindByEmail(ctx, user.Email)
	if err != nil {
		return user.ID, err
	}
	if owner := profile.OwnerID(); owner != "" {
		return owner, nil
	}
	return user.ID, nil
}

func (s *RegistrationService) uploadPhoto(ctx context.Context, run *submission) error {
	photo := run.Draft.Photo
	if !photo.Present() {
		run.report(StagePhotoUpload, StageSkipped, "")
		return nil
	}
	url, err := s.upload(ctx, run, uploadJob{
		slot:     models.SlotPhoto,
		label:    "Foto del jugador",
		folder:   s.folders.Photos,
		file:     photo,
		name:     "foto_jugador.jpg",
		mimeType: "image/jpeg",
	})
	if err != nil {
		return err
	}
	run.photoURL = &url
	run.report(StagePhotoUpload, StageOK, "")
	return nil
}

func (s *RegistrationService) uploadDocuments(ctx context.Context, run *submission) error {
	uploaded := 0
	for _, slot := range models.DocumentSlots {
		file := run.Draft.Documents.Get(slot)
		if !file.Present() {
			continue
		}
		url, err := s.upload(ctx, run, uploadJob{
			slot:     string(slot),
			label:    "Documento " + string(slot),
			folder:   s.folders.Documents,
			file:     file,
			name:     string(slot) + ".pdf",
			mimeType: "application/pdf",
		})
		if err != nil {
			return err
		}
		run.docs.Set(slot, url)
		uploaded++
	}
	if uploaded == 0 {
		run.report(StageDocumentUploads, StageSkipped, "")
		return nil
	}
	run.report(StageDocumentUploads, StageOK, fmt.Sprintf("%d uploaded", uploaded))
	return nil
}

// uploadJob is one attachment transfer. name and mimeType are used when the
// attachment carries none.
type uploadJob struct {
	slot     string
	label    string
	folder   string
	file     models.Attachment
	name     string
	mimeType string
}

func (s *RegistrationService) upload(ctx context.Context, run *submission, job uploadJob) (string, error) {
	data, err := s.files.Read(job.file.LocalRef)
	if err != nil {
		return "", fmt.Errorf("read staged %s: %w", job.slot, err)
	}
	name := job.file.Name
	if name == "" {
		name = job.name
	}
	mimeType := job.file.MimeType
	if mimeType == "" {
		mimeType = job.mimeType
	}

	s.progress.Report(run.SessionID, job.slot, job.label, 0)
	url, err := s.uploader.Upload(ctx, data, storage.ObjectPath(job.folder, name, s.now()), mimeType, func(fraction float64) {
		s.progress.Report(run.SessionID, job.slot, job.label, fraction)
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", job.slot, err)
	}
	run.uploaded = append(run.uploaded, url)
	s.metrics.AddUploadedBytes(job.folder, len(data))
	return url, nil
}

// resolveSeason uses the selected season for renewals and the first active
// season otherwise. No active season leaves the id empty.
func (s *RegistrationService) resolveSeason(ctx context.Context, run *submission) error {
	if run.Draft.EnrollmentType == models.EnrollmentRenewal && run.Draft.SeasonID != "" {
		run.seasonID = run.Draft.SeasonID
		run.report(StageSeason, StageOK, run.seasonID)
		return nil
	}
	seasons, err := s.seasonRepo.FindByStates(ctx, models.SeasonActive)
	if err != nil {
		return fmt.Errorf("find active season: %w", err)
	}
	if len(seasons) == 0 {
		run.report(StageSeason, StageSkipped, "no active season")
		return nil
	}
	run.seasonID = seasons[0].ID.Hex()
	run.report(StageSeason, StageOK, run.seasonID)
	return nil
}

func (s *RegistrationService) evaluateCompleteness(_ context.Context, run *submission) error {
	run.record = buildRecord(run, s.now())
	run.result.MissingFields = MissingFields(run.record)
	run.record.Status = Completeness(run.record)
	run.result.Status = run.record.Status
	run.report(StageCompleteness, StageOK, run.record.Status)
	return nil
}

func buildRecord(run *submission, now time.Time) *models.Registrant {
	d := run.Draft
	category := d.Category
	if d.EnrollmentType == models.EnrollmentCheerleader {
		category = ""
	}

	var seasonID *string
	switch {
	case run.seasonID != "":
		id := run.seasonID
		seasonID = &id
	case d.SeasonID != "":
		id := d.SeasonID
		seasonID = &id
	}

	docs := run.docs
	docs.Signature = nil

	rec := &models.Registrant{
		FirstName:       d.FirstName,
		PaternalSurname: d.PaternalSurname,
		MaternalSurname: d.MaternalSurname,
		Sex:             d.Sex,
		Category:        category,
		Address:         d.Address,
		Phone:           d.Phone,
		GuardianCell:    nilIfEmpty(d.GuardianCell),
		GuardianEmail:   nilIfEmpty(d.GuardianEmail),
		BirthDate:       d.BirthDate,
		BirthPlace:      d.BirthPlace,
		CURP:            d.CURP,
		SchoolGrade:     d.SchoolGrade,
		SchoolName:      d.SchoolName,
		Allergies:       d.Allergies,
		Conditions:      d.Conditions,
		Weight:          d.Weight,
		EnrollmentType:  d.EnrollmentType,
		PhotoURL:        run.photoURL,
		Documents:       docs,
		Activation:      models.ActivationActive,
		MemberNumber:    d.MemberNumber,
		RegisteredAt:    now,
		OwnerID:         run.owner,
		SeasonID:        seasonID,
	}
	if d.EnrollmentType == models.EnrollmentTransfer {
		transfer := d.Transfer
		rec.Transfer = &transfer
	}
	return rec
}

func (s *RegistrationService) persist(ctx context.Context, run *submission) error {
	kind := run.Draft.EnrollmentType.Kind()
	id, err := s.registrantRepo.Create(ctx, kind, run.record)
	if err != nil {
		return fmt.Errorf("store registrant: %w", err)
	}
	run.result.RegistrantID = id
	run.result.Collection = repositories.RegistrantCollection(kind)
	run.report(StagePersist, StageOK, id)
	return nil
}

// deactivatePredecessor marks the renewed record inactive. The new record
// stands whatever happens here.
func (s *RegistrationService) deactivatePredecessor(ctx context.Context, run *submission) {
	if run.Draft.EnrollmentType != models.EnrollmentRenewal || run.Prior == nil {
		return
	}
	ctx, span := s.tracer.Start(ctx, "registration."+StageDeactivation)
	defer span.End()

	err := func() error {
		kind, err := repositories.KindOfCollection(run.Prior.Collection)
		if err != nil {
			return err
		}
		return s.registrantRepo.Update(ctx, kind, run.Prior.ID, repositories.Fields{
			"activo":              models.ActivationInactive,
			"fecha_fin_temporada": s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
			"estatus":             models.StatusDeactivated,
		})
	}()
	if err != nil {
		span.RecordError(err)
		s.metrics.IncrementStageFailure(StageDeactivation)
		slog.Error("Failed to deactivate previous registrant", "error", err, "priorId", run.Prior.ID, "collection", run.Prior.Collection)
		run.warn(StageDeactivation, MsgPredecessorWarning)
		return
	}
	run.report(StageDeactivation, StageOK, run.Prior.ID)
}

// createPaymentSchedule turns a failure into the payment-pending outcome.
func (s *RegistrationService) createPaymentSchedule(ctx context.Context, run *submission) {
	ctx, span := s.tracer.Start(ctx, "registration."+StagePaymentSchedule)
	defer span.End()

	draft := run.Draft
	draft.Category = run.record.Category
	schedule, id, err := s.payments.Generate(ctx, PaymentScheduleInput{
		RegistrantID: run.result.RegistrantID,
		Draft:        draft,
		SeasonID:     deref(run.record.SeasonID),
	})
	switch {
	case err != nil:
		span.RecordError(err)
		s.metrics.IncrementStageFailure(StagePaymentSchedule)
		slog.Error("Failed to create payment schedule", "error", err, "registrantId", run.result.RegistrantID)
		run.result.Outcome = OutcomeRegisteredPaymentPending
		run.warn(StagePaymentSchedule, MsgPaymentSetupFailed)
	case schedule == nil:
		run.report(StagePaymentSchedule, StageSkipped, "no cost definition")
	default:
		run.result.PaymentScheduleID = id
		run.report(StagePaymentSchedule, StageOK, id)
	}
}

// compensate deletes files uploaded by an aborted submission.
func (s *RegistrationService) compensate(ctx context.Context, run *submission) {
	for _, url := range run.uploaded {
		if err := s.uploader.Delete(context.WithoutCancel(ctx), url); err != nil {
			slog.Warn("Failed to delete orphaned upload", "error", err, "url", url)
		}
	}
	run.uploaded = nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
