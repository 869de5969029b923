package middleware

import (
	"context"
	"net/http"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const (
	ContextAuthKey    = "auth"
	ContextPartnerKey = "partner"
)

// Authenticator resolves partner identity and venue credentials for one
// inbound request. Implemented by service.CredentialResolver.
type Authenticator interface {
	Authenticate(ctx context.Context, headers http.Header) *model.AuthResult
}

// AuthMiddleware rejects requests without a valid partner API key and
// stores the resolution result for handlers. Requests may still lack venue
// credentials; public market routes don't need them.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := auth.Authenticate(c.Request.Context(), c.Request.Header)
		if !result.Authenticated || result.Partner == nil {
			metrics.AuthFailures.WithLabelValues("api_key").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": result.Error},
			})
			c.Abort()
			return
		}

		c.Set(ContextAuthKey, result)
		c.Set(ContextPartnerKey, result.Partner)
		c.Next()
	}
}

// AuthFromContext returns the resolution stored by AuthMiddleware.
func AuthFromContext(c *gin.Context) *model.AuthResult {
	if v, ok := c.Get(ContextAuthKey); ok {
		if res, ok := v.(*model.AuthResult); ok {
			return res
		}
	}
	return &model.AuthResult{}
}
