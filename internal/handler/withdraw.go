package handler

import (
	"net/http"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

type WithdrawHandler struct {
	factory *service.OrderlyClientFactory
}

func NewWithdrawHandler(factory *service.OrderlyClientFactory) *WithdrawHandler {
	return &WithdrawHandler{factory: factory}
}

func (h *WithdrawHandler) Nonce(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetWithdrawNonce(c.Request.Context())
	venueReply(c, result, err)
}

func (h *WithdrawHandler) Request(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var req model.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := client.RequestWithdraw(c.Request.Context(), req)
	venueReply(c, result, err)
}

func (h *WithdrawHandler) History(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetWithdrawHistory(c.Request.Context(), passthroughQuery(c))
	venueReply(c, result, err)
}
