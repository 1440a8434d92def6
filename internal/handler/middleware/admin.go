package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
)

const adminTokenHeader = "X-Admin-Token"

// AdminAuthMiddleware gates operator routes behind a shared token. An
// unconfigured token disables the routes entirely.
func AdminAuthMiddleware(token string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AdminAuthMiddleware")
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.APIErrorResponse{
				Code:    "ADMIN_DISABLED",
				Message: "Admin access is not configured.",
			})
			return
		}

		provided := c.GetHeader(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			log.Warn("Admin token mismatch", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIErrorResponse{
				Code:    "UNAUTHENTICATED",
				Message: "Invalid or missing admin token.",
			})
			return
		}

		c.Next()
	}
}
