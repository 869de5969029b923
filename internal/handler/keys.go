package handler

import (
	"net/http"
	"strconv"

	"github.com/GoOrderly/orderlygate/internal/middleware"
	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

// KeysHandler manages stored venue credentials for the calling partner.
type KeysHandler struct {
	partners *service.PartnerService
}

func NewKeysHandler(partners *service.PartnerService) *KeysHandler {
	return &KeysHandler{partners: partners}
}

func requirePartner(c *gin.Context) (*model.Partner, bool) {
	auth := middleware.AuthFromContext(c)
	if auth == nil || auth.Partner == nil {
		sendError(c, "AUTH_FAILED", "partner authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return auth.Partner, true
}

func (h *KeysHandler) Save(c *gin.Context) {
	partner, ok := requirePartner(c)
	if !ok {
		return
	}

	var req model.SaveKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", "account_id, orderly_key and orderly_secret are required", http.StatusBadRequest)
		return
	}

	cred, err := h.partners.SaveCredentials(c.Request.Context(), partner.ID, req)
	if err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccess(c, cred)
}

func (h *KeysHandler) List(c *gin.Context) {
	partner, ok := requirePartner(c)
	if !ok {
		return
	}

	creds, err := h.partners.ListCredentials(c.Request.Context(), partner.ID)
	if err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccess(c, gin.H{"credentials": creds})
}

func (h *KeysHandler) Deactivate(c *gin.Context) {
	partner, ok := requirePartner(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendError(c, "VALIDATION_ERROR", "credential id must be an integer", http.StatusBadRequest)
		return
	}

	if err := h.partners.DeactivateCredential(c.Request.Context(), partner.ID, id); err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccess(c, gin.H{"deactivated": true})
}
