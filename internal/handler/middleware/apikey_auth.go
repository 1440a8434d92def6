package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/service"
)

const (
	apiKeyHeader     = "X-API-Key"
	apiKeyContextKey = "authenticatedAPIKey"
)

// APIKeyAuthMiddleware authenticates self-service routes by the x-api-key
// header. The 401 body is identical for missing, malformed, unknown and
// revoked keys.
func APIKeyAuthMiddleware(keys *service.KeyService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APIKeyAuthMiddleware")
	return func(c *gin.Context) {
		presented := c.GetHeader(apiKeyHeader)
		if presented == "" {
			log.Debug("API key header is missing")
			unauthenticated(c)
			return
		}

		key, err := keys.Authenticate(c.Request.Context(), presented)
		if err != nil {
			log.Debug("API key authentication failed", zap.Error(err))
			unauthenticated(c)
			return
		}

		c.Set(apiKeyContextKey, key)
		c.Set("presentedAPIKey", presented)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIErrorResponse{
		Code:    "UNAUTHENTICATED",
		Message: "Invalid or missing API key.",
	})
}

func GetAuthenticatedKey(c *gin.Context) *apikey.APIKey {
	value, exists := c.Get(apiKeyContextKey)
	if !exists {
		return nil
	}
	key, ok := value.(*apikey.APIKey)
	if !ok {
		return nil
	}
	return key
}
