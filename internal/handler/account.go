package handler

import (
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	factory *service.OrderlyClientFactory
}

func NewAccountHandler(factory *service.OrderlyClientFactory) *AccountHandler {
	return &AccountHandler{factory: factory}
}

func (h *AccountHandler) client(c *gin.Context) (*service.OrderlyClient, bool) {
	return tradingClient(c, h.factory)
}

func (h *AccountHandler) Info(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	result, err := client.GetAccountInfo(c.Request.Context())
	venueReply(c, result, err)
}

func (h *AccountHandler) Balances(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	result, err := client.GetBalances(c.Request.Context())
	venueReply(c, result, err)
}

func (h *AccountHandler) Stats(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	result, err := client.GetAccountStats(c.Request.Context())
	venueReply(c, result, err)
}

func (h *AccountHandler) Positions(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	if symbol := c.Query("symbol"); symbol != "" {
		result, err := client.GetPosition(c.Request.Context(), symbol)
		venueReply(c, result, err)
		return
	}
	result, err := client.GetPositions(c.Request.Context())
	venueReply(c, result, err)
}

func (h *AccountHandler) Position(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	result, err := client.GetPosition(c.Request.Context(), c.Param("symbol"))
	venueReply(c, result, err)
}

func (h *AccountHandler) SettlementInfo(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	result, err := client.GetSettlementInfo(c.Request.Context())
	venueReply(c, result, err)
}
