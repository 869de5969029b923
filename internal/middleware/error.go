package middleware

import (
	"errors"
	"time"

	"github.com/GoOrderly/orderlygate/internal/pkg/apperrors"
	"github.com/GoOrderly/orderlygate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler converts errors attached via c.Error into the gateway's
// response envelope, with the HTTP status taken from the error type.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.New(apperrors.ErrInternal, err.Error(), err)
		}

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}
		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		c.JSON(appErr.HTTPStatus, gin.H{
			"success":   false,
			"error":     gin.H{"code": appErr.Type, "message": appErr.Message},
			"timestamp": time.Now().UnixMilli(),
		})
	}
}
