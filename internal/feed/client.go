// Package feed streams price ticks from a websocket source into the engine.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"papertrade-systemv1/internal/model"
)

const (
	initialRetryDelay = 2 * time.Second
	maxRetryDelay     = 60 * time.Second
	readTimeout       = 90 * time.Second
)

// Client connects to a websocket tick feed and pushes parsed ticks into a
// channel. It reconnects with exponential backoff on any read error.
type Client struct {
	url string

	// OnReconnect is called before each reconnection attempt, if set.
	OnReconnect func()
}

// NewClient creates a feed client for the given websocket URL.
func NewClient(url string) *Client {
	return &Client{url: url}
}

// Start streams ticks into tickCh until ctx is cancelled. Ticks are dropped
// when tickCh is full so a slow consumer never stalls the read pump.
func (c *Client) Start(ctx context.Context, tickCh chan<- model.Tick) {
	delay := initialRetryDelay
	for {
		if err := c.stream(ctx, tickCh); err != nil {
			log.Printf("[feed] stream error: %v", err)
		}
		if ctx.Err() != nil {
			return
		}

		if c.OnReconnect != nil {
			c.OnReconnect()
		}
		log.Printf("[feed] reconnecting in %s", delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// stream runs one connection: dial, then read ticks until error or cancel.
func (c *Client) stream(ctx context.Context, tickCh chan<- model.Tick) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[feed] connected to %s", c.url)

	// Unblock the read loop when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var tick model.Tick
		if err := json.Unmarshal(msg, &tick); err != nil {
			log.Printf("[feed] bad tick %q: %v", msg, err)
			continue
		}
		if tick.TickTS.IsZero() {
			tick.TickTS = time.Now().UTC()
		}

		select {
		case tickCh <- tick:
		default: // consumer behind — drop tick
		}
	}
}
