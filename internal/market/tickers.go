package market

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is the last known state of one symbol from the venue's public
// ticker stream.
type Ticker struct {
	Symbol     string          `json:"symbol"`
	Open       decimal.Decimal `json:"open"`
	Close      decimal.Decimal `json:"close"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Volume     decimal.Decimal `json:"volume"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int64           `json:"count"`
	ReceivedAt time.Time       `json:"received_at"`
}

// TickerCache holds the latest ticker per symbol. Writes come from the
// stream goroutine, reads from request handlers.
type TickerCache struct {
	mu      sync.RWMutex
	tickers map[string]Ticker
}

func NewTickerCache() *TickerCache {
	return &TickerCache{tickers: make(map[string]Ticker)}
}

func (c *TickerCache) Put(t Ticker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.ReceivedAt = time.Now()
	c.tickers[t.Symbol] = t
}

func (c *TickerCache) Get(symbol string) (Ticker, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tickers[symbol]
	return t, ok
}

func (c *TickerCache) All() []Ticker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Ticker, 0, len(c.tickers))
	for _, t := range c.tickers {
		out = append(out, t)
	}
	return out
}
