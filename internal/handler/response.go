package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// The gateway's response envelope, shared by every route.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *apiError   `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func sendSuccess(c *gin.Context, data interface{}) {
	sendSuccessStatus(c, data, http.StatusOK)
}

func sendSuccessStatus(c *gin.Context, data interface{}, status int) {
	c.JSON(status, apiResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

func sendError(c *gin.Context, code, message string, status int) {
	c.JSON(status, apiResponse{
		Success:   false,
		Error:     &apiError{Code: code, Message: message},
		Timestamp: time.Now().UnixMilli(),
	})
}

// sendAppError maps a service error onto the envelope via its type.
func sendAppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err)
	}
	sendError(c, string(appErr.Type), appErr.Message, appErr.HTTPStatus)
}

// venueReply forwards a normalized venue result: venue rejections carry
// the venue's own code and message, transport errors surface as 502.
func venueReply(c *gin.Context, result *model.VenueResult, err error) {
	if err != nil {
		sendAppError(c, err)
		return
	}
	if !result.Success {
		code := "VENUE_REJECTED"
		if result.Code != 0 {
			code = strconv.Itoa(result.Code)
		}
		message := result.Message
		if message == "" {
			message = "venue rejected the request"
		}
		sendError(c, code, message, http.StatusBadRequest)
		return
	}
	sendSuccess(c, result.Data)
}
