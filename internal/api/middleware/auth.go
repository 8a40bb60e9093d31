package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/internal/repository"
)

const creatorContextKey = "creator"

// AuthMiddleware authenticates requests with a creator API key carried
// in the Authorization header
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := extractAPIKey(c)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		creator, err := repos.Creator.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logger.Warn("Failed API key authentication", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(creatorContextKey, creator)
		c.Next()
	}
}

// GetCreatorFromContext retrieves the authenticated creator
func GetCreatorFromContext(c *gin.Context) (*domain.Creator, bool) {
	val, exists := c.Get(creatorContextKey)
	if !exists {
		return nil, false
	}
	creator, ok := val.(*domain.Creator)
	return creator, ok
}

func extractAPIKey(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.GetHeader("X-API-Key")
}
