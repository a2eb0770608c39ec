package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/pkg/jwt"
)

const sessionUserKey = "sessionUser"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(tokenString string) (*jwt.Claims, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the authenticated guardian in the context.
func JWTAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, bearerSchema))
		if err != nil {
			slog.Warn("Token validation failed", "error", err, "requestId", c.GetString(requestIDKey))
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(sessionUserKey, &models.SessionUser{ID: claims.Subject, Email: claims.Email})
		c.Next()
	}
}

// SessionUser returns the guardian stored by JWTAuthMiddleware, or nil.
func SessionUser(c *gin.Context) *models.SessionUser {
	v, ok := c.Get(sessionUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.SessionUser)
	return user
}
