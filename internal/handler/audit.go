package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the audit trail on the admin surface.
type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns recent mutating requests, optionally filtered by
// partner_id and a from/to time window (RFC 3339 or unix seconds).
func (h *AuditHandler) List(c *gin.Context) {
	var partnerID int64
	if raw := c.Query("partner_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			sendError(c, "VALIDATION_ERROR", "partner_id must be an integer", http.StatusBadRequest)
			return
		}
		partnerID = parsed
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	var fromPtr, toPtr *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := parseAuditTime(raw)
		if err != nil {
			sendError(c, "VALIDATION_ERROR", "invalid from time", http.StatusBadRequest)
			return
		}
		fromPtr = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseAuditTime(raw)
		if err != nil {
			sendError(c, "VALIDATION_ERROR", "invalid to time", http.StatusBadRequest)
			return
		}
		toPtr = &t
	}

	records, err := h.audit.List(c.Request.Context(), partnerID, limit, fromPtr, toPtr)
	if err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccess(c, gin.H{"records": records})
}

func parseAuditTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format")
}
