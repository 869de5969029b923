// Package market maintains a live cache of venue market data over the
// public websocket stream.
package market

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/GoOrderly/orderlygate/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	reconnBaseDelay = 1 * time.Second
	reconnMaxDelay  = 30 * time.Second
	readTimeout     = 60 * time.Second
)

// Stream subscribes to the venue's public tickers topic and keeps the
// cache current, reconnecting with exponential backoff.
type Stream struct {
	url    string
	cache  *TickerCache
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

func NewStream(wsURL string, cache *TickerCache) *Stream {
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{
		url:    wsURL,
		cache:  cache,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start launches the connection loop in a background goroutine.
func (s *Stream) Start() {
	go func() {
		defer close(s.done)
		s.runLoop()
	}()
}

func (s *Stream) Stop() {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
}

func (s *Stream) runLoop() {
	delay := reconnBaseDelay

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.connect(); err != nil {
			logger.Error("market stream connect failed", "error", err, "retry_in", delay)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnMaxDelay {
				delay = reconnMaxDelay
			}
			continue
		}

		delay = reconnBaseDelay
		s.readLoop()
	}
}

func (s *Stream) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	return s.send(map[string]interface{}{
		"id":    "tickers-sub",
		"event": "subscribe",
		"topic": "tickers",
	})
}

func (s *Stream) send(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteJSON(msg)
}

type wsMessage struct {
	Event string          `json:"event"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

type wsTicker struct {
	Symbol string          `json:"symbol"`
	Open   decimal.Decimal `json:"open"`
	Close  decimal.Decimal `json:"close"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Volume decimal.Decimal `json:"volume"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

func (s *Stream) readLoop() {
	defer func() {
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Error("market stream read error", "error", err)
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch {
		case msg.Event == "ping":
			// Venue-level keepalive; it closes the connection after
			// three missed pongs.
			_ = s.send(map[string]interface{}{"event": "pong"})
		case msg.Topic == "tickers":
			s.handleTickers(msg.Data)
		}
	}
}

func (s *Stream) handleTickers(data json.RawMessage) {
	var tickers []wsTicker
	if err := json.Unmarshal(data, &tickers); err != nil {
		return
	}
	for _, t := range tickers {
		if t.Symbol == "" {
			continue
		}
		s.cache.Put(Ticker{
			Symbol: t.Symbol,
			Open:   t.Open,
			Close:  t.Close,
			High:   t.High,
			Low:    t.Low,
			Volume: t.Volume,
			Amount: t.Amount,
			Count:  t.Count,
		})
	}
}
