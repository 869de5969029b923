package handler

import (
	"net/http"
	"strconv"

	"github.com/GoOrderly/orderlygate/internal/market"
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
)

// MarketHandler serves public market data. Most endpoints proxy the venue
// with an unbound client; the stream endpoints read from the local ticker
// cache fed by the websocket subscription.
type MarketHandler struct {
	factory *service.OrderlyClientFactory
	tickers *market.TickerCache
}

func NewMarketHandler(factory *service.OrderlyClientFactory, tickers *market.TickerCache) *MarketHandler {
	return &MarketHandler{factory: factory, tickers: tickers}
}

func (h *MarketHandler) Symbols(c *gin.Context) {
	result, err := h.factory.Client(nil).GetSymbols(c.Request.Context())
	venueReply(c, result, err)
}

func (h *MarketHandler) Ticker(c *gin.Context) {
	result, err := h.factory.Client(nil).GetTicker(c.Request.Context(), c.Param("symbol"))
	venueReply(c, result, err)
}

func (h *MarketHandler) AllTickers(c *gin.Context) {
	result, err := h.factory.Client(nil).GetAllTickers(c.Request.Context())
	venueReply(c, result, err)
}

func (h *MarketHandler) Orderbook(c *gin.Context) {
	depth := 0
	if raw := c.Query("max_level"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			sendError(c, "VALIDATION_ERROR", "max_level must be a positive integer", http.StatusBadRequest)
			return
		}
		depth = n
	}
	result, err := h.factory.Client(nil).GetOrderbook(c.Request.Context(), c.Param("symbol"), depth)
	venueReply(c, result, err)
}

func (h *MarketHandler) Trades(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			sendError(c, "VALIDATION_ERROR", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	result, err := h.factory.Client(nil).GetTrades(c.Request.Context(), c.Param("symbol"), limit)
	venueReply(c, result, err)
}

// Klines is a private venue endpoint and requires resolved credentials.
func (h *MarketHandler) Klines(c *gin.Context) {
	client, ok := tradingClient(c, h.factory)
	if !ok {
		return
	}
	if c.Query("symbol") == "" || c.Query("type") == "" {
		sendError(c, "VALIDATION_ERROR", "symbol and type query parameters are required", http.StatusBadRequest)
		return
	}
	result, err := client.GetKlines(c.Request.Context(), passthroughQuery(c))
	venueReply(c, result, err)
}

func (h *MarketHandler) FundingRate(c *gin.Context) {
	result, err := h.factory.Client(nil).GetFundingRate(c.Request.Context(), c.Param("symbol"))
	venueReply(c, result, err)
}

func (h *MarketHandler) FundingRateHistory(c *gin.Context) {
	if c.Query("symbol") == "" {
		sendError(c, "VALIDATION_ERROR", "symbol query parameter is required", http.StatusBadRequest)
		return
	}
	result, err := h.factory.Client(nil).GetFundingRateHistory(c.Request.Context(), passthroughQuery(c))
	venueReply(c, result, err)
}

// StreamTickers returns the latest tickers observed on the websocket feed.
func (h *MarketHandler) StreamTickers(c *gin.Context) {
	sendSuccess(c, gin.H{"tickers": h.tickers.All()})
}

func (h *MarketHandler) StreamTicker(c *gin.Context) {
	t, ok := h.tickers.Get(c.Param("symbol"))
	if !ok {
		sendError(c, "NOT_FOUND", "no ticker observed for symbol yet", http.StatusNotFound)
		return
	}
	sendSuccess(c, t)
}
