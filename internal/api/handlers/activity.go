package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/api/middleware"
	"github.com/craftlane/storefront/internal/repository"
)

// ActivityResponse represents one activity feed entry
type ActivityResponse struct {
	ID           string                 `json:"id"`
	ActivityType string                 `json:"activity_type"`
	EntityType   string                 `json:"entity_type"`
	EntityID     string                 `json:"entity_id"`
	Description  string                 `json:"description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}

// HandleActivityFeed handles GET /v1/activity
func HandleActivityFeed(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, ok := middleware.GetCreatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, offset := paginationParams(c)

		entries, err := repos.Activity.ListByCreator(c.Request.Context(), creator.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list activity", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]ActivityResponse, len(entries))
		for i, entry := range entries {
			responses[i] = ActivityResponse{
				ID:           entry.ID.String(),
				ActivityType: entry.ActivityType,
				EntityType:   entry.EntityType,
				EntityID:     entry.EntityID.String(),
				Description:  entry.Description,
				Metadata:     entry.Metadata,
				CreatedAt:    entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"activity": responses,
			"limit":    limit,
			"offset":   offset,
		})
	}
}
