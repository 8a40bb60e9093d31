package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/api/middleware"
	"github.com/craftlane/storefront/internal/config"
	"github.com/craftlane/storefront/internal/ratelimit"
	"github.com/craftlane/storefront/internal/repository"
	"github.com/craftlane/storefront/internal/service"
	"github.com/craftlane/storefront/internal/webhook"
)

// HandleOrderWebhook handles POST /webhooks/orders/create.
//
// The platform delivers order notifications at-least-once; this handler
// is registered for all methods so it owns the 405 response, and it
// answers processing failures with HTTP 200 so the platform does not
// retry-storm on errors it cannot fix.
func HandleOrderWebhook(cfg *config.Config, repos *repository.Repositories, store ratelimit.Store, logger *zap.Logger) gin.HandlerFunc {
	verifier := webhook.NewVerifier(cfg.Webhook.Secret)

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic while processing order webhook", zap.Any("panic", r))
				if !c.Writer.Written() {
					c.JSON(http.StatusOK, gin.H{"error": "internal error"})
				}
			}
		}()

		if c.Request.Method != http.MethodPost {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
			return
		}

		// Shed abusive traffic before doing any cryptographic work
		if !middleware.CheckRateLimit(c, store, "webhook", cfg.Webhook.RateLimit, cfg.Webhook.RateWindow, logger) {
			return
		}

		// The signature covers the raw bytes; the body must not be
		// parsed or re-serialized before verification
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.Webhook.MaxBodyBytes)
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Warn("Failed to read webhook body",
				zap.String("client_ip", middleware.ClientIP(c)),
				zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
			return
		}

		if !verifier.Verify(body, c.GetHeader(webhook.SignatureHeader)) {
			logger.Warn("Rejected webhook with invalid signature",
				zap.String("client_ip", middleware.ClientIP(c)),
				zap.Int("body_bytes", len(body)))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}

		norm, fieldErr := webhook.Normalize(body)
		if fieldErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid payload",
				"field":   fieldErr.Field,
				"message": fieldErr.Message,
			})
			return
		}

		webhookService := service.NewWebhookService(repos, logger)
		outcome := webhookService.ProcessOrder(c.Request.Context(), norm)

		if !outcome.Success {
			// Deliberately 200: the failure is internal, retrying the
			// identical payload will not fix it
			c.JSON(http.StatusOK, gin.H{"error": "order processing failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"orderId": outcome.OrderID,
		})
	}
}
