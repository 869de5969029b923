package handler

import (
	"net/http"
	"strconv"

	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

// PartnerHandler exposes the admin provisioning surface. The raw gateway
// key is returned exactly once, on creation; only its bcrypt hash is kept.
type PartnerHandler struct {
	partners *service.PartnerService
}

func NewPartnerHandler(partners *service.PartnerService) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

type createPartnerRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *PartnerHandler) Create(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", "name is required", http.StatusBadRequest)
		return
	}

	partner, rawKey, err := h.partners.CreatePartner(c.Request.Context(), req.Name)
	if err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccessStatus(c, gin.H{
		"partner": partner,
		"api_key": rawKey,
	}, http.StatusCreated)
}

func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.partners.ListPartners(c.Request.Context())
	if err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccess(c, gin.H{"partners": partners})
}

func (h *PartnerHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendError(c, "VALIDATION_ERROR", "partner id must be an integer", http.StatusBadRequest)
		return
	}

	if err := h.partners.DeletePartner(c.Request.Context(), id); err != nil {
		sendAppError(c, err)
		return
	}
	sendSuccess(c, gin.H{"deleted": true})
}
