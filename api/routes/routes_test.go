package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/clubtoros/toros-backend/internal/handlers"
	"github.com/clubtoros/toros-backend/internal/metrics"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/repositories/memory"
	"github.com/clubtoros/toros-backend/internal/services"
	"github.com/clubtoros/toros-backend/pkg/jwt"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncrementSubmission(string(services.OutcomeRegistered))

	store := memory.NewDocumentStore()
	lookup := services.NewRegistrantLookupService(
		repositories.NewUserRepository(store),
		repositories.NewSeasonRepository(store),
		repositories.NewRegistrantRepository(store),
	)
	router := SetupRouter(Dependencies{
		AllowedOrigins: []string{"*"},
		Tokens:         jwt.NewTokenService("secret", "club-toros", time.Hour),
		Gatherer:       reg,
		Registration:   handlers.NewRegistrationHandler(nil, nil),
		Lookup:         handlers.NewLookupHandler(lookup),
		Health:         handlers.NewHealthHandler(nil),
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/v1/registrations/sessions", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/seasons/renewal", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/registrants/mine", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			if tt.path == "/metrics" {
				assert.Contains(t, w.Body.String(), "toros_registration_submissions_total")
			}
		})
	}
}
