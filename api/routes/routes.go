package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clubtoros/toros-backend/internal/handlers"
	"github.com/clubtoros/toros-backend/internal/middleware"
)

// Dependencies are the handlers and settings the router is built from.
type Dependencies struct {
	AllowedOrigins []string
	Tokens         middleware.TokenParser
	Gatherer       prometheus.Gatherer
	Registration   *handlers.RegistrationHandler
	Lookup         *handlers.LookupHandler
	Health         *handlers.HealthHandler
	// FilesDir is served under /files when uploads are stored locally.
	FilesDir string
}

// SetupRouter sets up the router
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	router.Use(middleware.LoggerMiddleware())

	router.GET("/health", deps.Health.Health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if deps.FilesDir != "" {
		router.Static("/files", deps.FilesDir)
	}

	public := router.Group("/api/v1")
	{
		public.GET("/health", deps.Health.Health)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	{
		sessions := protected.Group("/registrations/sessions")
		{
			sessions.POST("", deps.Registration.CreateSession)
			sessions.GET("/:id", deps.Registration.GetSession)
			sessions.PATCH("/:id/draft", deps.Registration.UpdateDraft)
			sessions.POST("/:id/next", deps.Registration.Next)
			sessions.POST("/:id/previous", deps.Registration.Previous)
			sessions.POST("/:id/reset", deps.Registration.Reset)
			sessions.POST("/:id/focus", deps.Registration.Focus)
			sessions.POST("/:id/prior", deps.Registration.SelectPrior)
			sessions.PUT("/:id/attachments/:slot", deps.Registration.StageAttachment)
			sessions.POST("/:id/submit", deps.Registration.Submit)
			sessions.GET("/:id/progress", deps.Registration.Progress)
		}

		protected.GET("/seasons/renewal", deps.Lookup.RenewalSeasons)

		registrants := protected.Group("/registrants")
		{
			registrants.GET("/search", deps.Lookup.Search)
			registrants.GET("/mine", deps.Lookup.Mine)
		}
	}

	return router
}
