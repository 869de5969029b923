package market

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerCachePutGet(t *testing.T) {
	cache := NewTickerCache()

	_, ok := cache.Get("PERP_ETH_USDC")
	assert.False(t, ok)

	cache.Put(Ticker{Symbol: "PERP_ETH_USDC", Close: decimal.NewFromInt(3000)})

	got, ok := cache.Get("PERP_ETH_USDC")
	require.True(t, ok)
	assert.True(t, got.Close.Equal(decimal.NewFromInt(3000)))
	assert.False(t, got.ReceivedAt.IsZero())
}

func TestTickerCachePutOverwrites(t *testing.T) {
	cache := NewTickerCache()
	cache.Put(Ticker{Symbol: "PERP_ETH_USDC", Close: decimal.NewFromInt(3000)})
	cache.Put(Ticker{Symbol: "PERP_ETH_USDC", Close: decimal.NewFromInt(3100)})

	got, _ := cache.Get("PERP_ETH_USDC")
	assert.True(t, got.Close.Equal(decimal.NewFromInt(3100)))
	assert.Len(t, cache.All(), 1)
}

func TestHandleTickersUpdatesCache(t *testing.T) {
	cache := NewTickerCache()
	s := NewStream("ws://unused", cache)
	defer s.Stop()

	payload := json.RawMessage(`[
		{"symbol":"PERP_ETH_USDC","open":"2900","close":"3000.5","high":"3050","low":"2850","volume":"120.5","amount":"361500","count":42},
		{"symbol":"","close":"1"}
	]`)
	s.handleTickers(payload)

	got, ok := cache.Get("PERP_ETH_USDC")
	require.True(t, ok)
	assert.True(t, got.Close.Equal(decimal.RequireFromString("3000.5")))
	assert.Equal(t, int64(42), got.Count)

	// Entries without a symbol are dropped.
	assert.Len(t, cache.All(), 1)
}

func TestHandleTickersMalformedPayload(t *testing.T) {
	cache := NewTickerCache()
	s := NewStream("ws://unused", cache)
	defer s.Stop()

	s.handleTickers(json.RawMessage(`{"not":"an array"}`))
	assert.Empty(t, cache.All())
}
