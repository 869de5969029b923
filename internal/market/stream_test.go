package market

import (
	"testing"
	"time"
)

func TestStreamStopInterruptsReconnectBackoff(t *testing.T) {
	// No listener on this port, so every connect attempt fails and the
	// loop sits in its backoff wait.
	s := NewStream("ws://127.0.0.1:1/ws", NewTickerCache())
	s.Start()

	// Give the loop time to fail at least one dial and enter the wait.
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("stream goroutine did not exit after Stop")
	}
}
