package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubtoros/toros-backend/internal/middleware"
	"github.com/clubtoros/toros-backend/internal/models"
)

// RegistrantLookup finds prior registrants and renewal seasons.
type RegistrantLookup interface {
	Search(ctx context.Context, term string, sex models.Sex) (*models.PriorRegistrant, error)
	ListForOwner(ctx context.Context, user *models.SessionUser, sex models.Sex) ([]models.PriorRegistrant, error)
	ListRenewalSeasons(ctx context.Context) ([]models.Season, error)
}

// LookupHandler serves the renewal lookups
type LookupHandler struct {
	lookup RegistrantLookup
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookup RegistrantLookup) *LookupHandler {
	return &LookupHandler{lookup: lookup}
}

// Search handles GET /registrants/search?term=&sex=
func (h *LookupHandler) Search(c *gin.Context) {
	prior, err := h.lookup.Search(c.Request.Context(), c.Query("term"), models.Sex(c.Query("sex")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prior)
}

// Mine handles GET /registrants/mine?sex=
func (h *LookupHandler) Mine(c *gin.Context) {
	sex := models.Sex(c.Query("sex"))
	if !sex.Valid() {
		badRequest(c, "sex must be hombre or mujer")
		return
	}
	priors, err := h.lookup.ListForOwner(c.Request.Context(), middleware.SessionUser(c), sex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrants": priors})
}

// RenewalSeasons handles GET /seasons/renewal
func (h *LookupHandler) RenewalSeasons(c *gin.Context) {
	seasons, err := h.lookup.ListRenewalSeasons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if seasons == nil {
		seasons = []models.Season{}
	}
	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}
