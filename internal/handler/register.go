package handler

import (
	"net/http"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

// RegisterHandler proxies account registration against the venue. All
// registration endpoints are public on the venue side, so the client is
// unbound from credentials.
type RegisterHandler struct {
	factory *service.OrderlyClientFactory
}

func NewRegisterHandler(factory *service.OrderlyClientFactory) *RegisterHandler {
	return &RegisterHandler{factory: factory}
}

func (h *RegisterHandler) Nonce(c *gin.Context) {
	result, err := h.factory.Client(nil).GetRegistrationNonce(c.Request.Context())
	venueReply(c, result, err)
}

func (h *RegisterHandler) Account(c *gin.Context) {
	var req model.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", "message and signature are required", http.StatusBadRequest)
		return
	}

	result, err := h.factory.Client(nil).RegisterAccount(c.Request.Context(), req)
	venueReply(c, result, err)
}

func (h *RegisterHandler) Key(c *gin.Context) {
	var req model.AddKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", "message and signature are required", http.StatusBadRequest)
		return
	}

	result, err := h.factory.Client(nil).AddOrderlyKey(c.Request.Context(), req)
	venueReply(c, result, err)
}

func (h *RegisterHandler) Check(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		sendError(c, "VALIDATION_ERROR", "address query parameter is required", http.StatusBadRequest)
		return
	}

	result, err := h.factory.Client(nil).CheckAccountExists(c.Request.Context(), address, c.Query("broker_id"))
	venueReply(c, result, err)
}
