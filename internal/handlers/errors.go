package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubtoros/toros-backend/internal/middleware"
	"github.com/clubtoros/toros-backend/pkg/apperrors"
)

// respondError writes err with the status its code maps to. Internal errors
// are logged and never leak their cause.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "path", c.FullPath(), "requestId", middleware.RequestID(c))
		_ = c.Error(err)
	}
	body := gin.H{"error": err.Error()}
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
