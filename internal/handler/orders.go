package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/GoOrderly/orderlygate/internal/middleware"
	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	factory *service.OrderlyClientFactory
}

func NewOrderHandler(factory *service.OrderlyClientFactory) *OrderHandler {
	return &OrderHandler{factory: factory}
}

// tradingClient returns a client bound to the request's resolved venue
// credentials, or replies 400 when the partner supplied none.
func tradingClient(c *gin.Context, factory *service.OrderlyClientFactory) (*service.OrderlyClient, bool) {
	auth := middleware.AuthFromContext(c)
	if auth == nil || auth.Orderly == nil {
		msg := "Orderly credentials required. Include X-Account-ID, X-Orderly-Key, and X-Orderly-Secret headers"
		if auth != nil && auth.Error != "" {
			msg = auth.Error
		}
		sendError(c, "ORDERLY_CREDENTIALS_REQUIRED", msg, http.StatusBadRequest)
		return nil, false
	}
	return factory.Client(auth.Orderly), true
}

func (h *OrderHandler) Create(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.OrderQuantity == nil && req.OrderAmount == nil {
		sendError(c, "VALIDATION_ERROR", "either order_quantity or order_amount must be provided", http.StatusBadRequest)
		return
	}
	if strings.EqualFold(req.OrderType, "LIMIT") && req.OrderPrice == nil {
		sendError(c, "VALIDATION_ERROR", "order_price is required for LIMIT orders", http.StatusBadRequest)
		return
	}

	result, err := client.CreateOrder(c.Request.Context(), req)
	venueReply(c, result, err)
}

func (h *OrderHandler) List(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetOrders(c.Request.Context(), c.Query("symbol"))
	venueReply(c, result, err)
}

func (h *OrderHandler) Edit(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var req model.EditOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.OrderPrice == nil && req.OrderQuantity == nil {
		sendError(c, "VALIDATION_ERROR", "at least one of order_price or order_quantity must be provided", http.StatusBadRequest)
		return
	}

	result, err := client.EditOrder(c.Request.Context(), req)
	venueReply(c, result, err)
}

func (h *OrderHandler) Get(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetOrder(c.Request.Context(), c.Param("id"))
	venueReply(c, result, err)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	symbol := c.Query("symbol")
	if symbol == "" {
		sendError(c, "VALIDATION_ERROR", "symbol query parameter is required", http.StatusBadRequest)
		return
	}
	result, err := client.CancelOrder(c.Request.Context(), c.Param("id"), symbol)
	venueReply(c, result, err)
}

func (h *OrderHandler) CancelAll(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.CancelAllOrders(c.Request.Context(), c.Query("symbol"))
	venueReply(c, result, err)
}

func (h *OrderHandler) History(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetOrderHistory(c.Request.Context(), passthroughQuery(c))
	venueReply(c, result, err)
}

func (h *OrderHandler) BatchCreate(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var req model.BatchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := client.BatchCreateOrders(c.Request.Context(), req.Orders)
	venueReply(c, result, err)
}

func (h *OrderHandler) BatchCancel(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var req model.BatchCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, "VALIDATION_ERROR", "order_ids array is required in request body", http.StatusBadRequest)
		return
	}

	result, err := client.BatchCancelOrders(c.Request.Context(), req.OrderIDs)
	venueReply(c, result, err)
}

// --- Algo orders ---

func (h *OrderHandler) CreateAlgo(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		sendError(c, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := client.CreateAlgoOrder(c.Request.Context(), body)
	venueReply(c, result, err)
}

func (h *OrderHandler) EditAlgo(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		sendError(c, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := client.EditAlgoOrder(c.Request.Context(), c.Param("id"), body)
	venueReply(c, result, err)
}

func (h *OrderHandler) CancelAlgo(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.CancelAlgoOrder(c.Request.Context(), c.Param("id"))
	venueReply(c, result, err)
}

func (h *OrderHandler) GetAlgo(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetAlgoOrder(c.Request.Context(), c.Param("id"))
	venueReply(c, result, err)
}

func (h *OrderHandler) ListAlgo(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	result, err := client.GetAlgoOrders(c.Request.Context(), passthroughQuery(c))
	venueReply(c, result, err)
}

// passthroughQuery forwards the request's query parameters to the venue
// unchanged.
func passthroughQuery(c *gin.Context) url.Values {
	if len(c.Request.URL.Query()) == 0 {
		return nil
	}
	return c.Request.URL.Query()
}
