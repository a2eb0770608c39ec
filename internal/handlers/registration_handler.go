package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubtoros/toros-backend/internal/middleware"
	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/services"
	"github.com/clubtoros/toros-backend/internal/wizard"
)

// RegistrationSessions is the wizard session service used by the handler.
type RegistrationSessions interface {
	Create(ctx context.Context, user *models.SessionUser) (*wizard.Session, error)
	Get(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, error)
	UpdateDraft(ctx context.Context, user *models.SessionUser, id string, patch wizard.DraftPatch) (*wizard.Session, error)
	Next(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, bool, error)
	Previous(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, error)
	Reset(ctx context.Context, user *models.SessionUser, id string) (*wizard.Session, error)
	Focus(ctx context.Context, user *models.SessionUser, id, previousRoute string) (*wizard.Session, error)
	SelectPrior(ctx context.Context, user *models.SessionUser, id, collection, priorID string) (*wizard.Session, error)
	StageAttachment(ctx context.Context, user *models.SessionUser, id, slot, name, mimeType string, r io.Reader) (*wizard.Session, error)
	Submit(ctx context.Context, user *models.SessionUser, id string, consents services.Consents) (*services.SubmissionResult, error)
}

// ProgressSource reports the upload progress of a running submission.
type ProgressSource interface {
	Get(sessionID string) services.UploadProgress
}

// SessionView is the wizard session as returned to the app.
type SessionView struct {
	ID                string                  `json:"id"`
	State             wizard.State            `json:"state"`
	Step              wizard.StepID           `json:"step"`
	Steps             []wizard.StepID         `json:"steps"`
	IsLastStep        bool                    `json:"is_last_step"`
	EnrollmentOptions []models.EnrollmentType `json:"enrollment_options"`
	Advanced          *bool                   `json:"advanced,omitempty"`
}

func newSessionView(s *wizard.Session) SessionView {
	return SessionView{
		ID:                s.ID,
		State:             s.State,
		Step:              s.State.Step(),
		Steps:             s.State.Steps(),
		IsLastStep:        s.State.IsLastStep(),
		EnrollmentOptions: wizard.EnrollmentOptions(s.State.Draft.Sex),
	}
}

// RegistrationHandler serves the registration wizard endpoints
type RegistrationHandler struct {
	sessions RegistrationSessions
	progress ProgressSource
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(sessions RegistrationSessions, progress ProgressSource) *RegistrationHandler {
	return &RegistrationHandler{sessions: sessions, progress: progress}
}

// CreateSession handles POST /registrations/sessions
func (h *RegistrationHandler) CreateSession(c *gin.Context) {
	session, err := h.sessions.Create(c.Request.Context(), middleware.SessionUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionView(session))
}

// GetSession handles GET /registrations/sessions/:id
func (h *RegistrationHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), middleware.SessionUser(c), c.Param("id"))
	h.respondSession(c, session, err)
}

// UpdateDraft handles PATCH /registrations/sessions/:id/draft
func (h *RegistrationHandler) UpdateDraft(c *gin.Context) {
	var patch wizard.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	session, err := h.sessions.UpdateDraft(c.Request.Context(), middleware.SessionUser(c), c.Param("id"), patch)
	h.respondSession(c, session, err)
}

// Next handles POST /registrations/sessions/:id/next
func (h *RegistrationHandler) Next(c *gin.Context) {
	session, advanced, err := h.sessions.Next(c.Request.Context(), middleware.SessionUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	view := newSessionView(session)
	view.Advanced = &advanced
	c.JSON(http.StatusOK, view)
}

// Previous handles POST /registrations/sessions/:id/previous
func (h *RegistrationHandler) Previous(c *gin.Context) {
	session, err := h.sessions.Previous(c.Request.Context(), middleware.SessionUser(c), c.Param("id"))
	h.respondSession(c, session, err)
}

// Reset handles POST /registrations/sessions/:id/reset
func (h *RegistrationHandler) Reset(c *gin.Context) {
	session, err := h.sessions.Reset(c.Request.Context(), middleware.SessionUser(c), c.Param("id"))
	h.respondSession(c, session, err)
}

type focusRequest struct {
	PreviousRoute string `json:"previous_route"`
}

// Focus handles POST /registrations/sessions/:id/focus
func (h *RegistrationHandler) Focus(c *gin.Context) {
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	session, err := h.sessions.Focus(c.Request.Context(), middleware.SessionUser(c), c.Param("id"), req.PreviousRoute)
	h.respondSession(c, session, err)
}

type priorRequest struct {
	Collection string `json:"coleccion" binding:"required"`
	ID         string `json:"id" binding:"required"`
}

// SelectPrior handles POST /registrations/sessions/:id/prior
func (h *RegistrationHandler) SelectPrior(c *gin.Context) {
	var req priorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	session, err := h.sessions.SelectPrior(c.Request.Context(), middleware.SessionUser(c), c.Param("id"), req.Collection, req.ID)
	h.respondSession(c, session, err)
}

// StageAttachment handles PUT /registrations/sessions/:id/attachments/:slot
// with a multipart "file" field.
func (h *RegistrationHandler) StageAttachment(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	session, err := h.sessions.StageAttachment(
		c.Request.Context(),
		middleware.SessionUser(c),
		c.Param("id"),
		c.Param("slot"),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	h.respondSession(c, session, err)
}

// Submit handles POST /registrations/sessions/:id/submit
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var consents services.Consents
	if err := c.ShouldBindJSON(&consents); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.sessions.Submit(c.Request.Context(), middleware.SessionUser(c), c.Param("id"), consents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Progress handles GET /registrations/sessions/:id/progress
func (h *RegistrationHandler) Progress(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), middleware.SessionUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.progress.Get(session.ID))
}

func (h *RegistrationHandler) respondSession(c *gin.Context, session *wizard.Session, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(session))
}
