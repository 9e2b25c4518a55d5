// Package feed streams live arcs from a websocket server. Decoded arcs are
// delivered on a buffered channel; the render loop drains it once per frame.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sudorandom/globe-lines/pkg/config"
)

const (
	DefaultBuffer     = 256
	DefaultMinBackoff = 1 * time.Second
	DefaultMaxBackoff = 60 * time.Second
)

var ErrUnknownMessage = errors.New("feed: unknown message type")

const subscribeMsg = `{"type": "subscribe", "data": {"type": "arc"}}`

// Message is the envelope every frame of the feed is wrapped in. Data holds
// one arc for "arc", a list for "arcs" and a string for "error".
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode returns the arcs carried by one feed message.
func Decode(message []byte) ([]config.Arc, error) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		return nil, fmt.Errorf("feed: decode: %w", err)
	}
	switch msg.Type {
	case "arc":
		var arc config.Arc
		if err := json.Unmarshal(msg.Data, &arc); err != nil {
			return nil, fmt.Errorf("feed: decode arc: %w", err)
		}
		return []config.Arc{arc}, nil
	case "arcs":
		var arcs []config.Arc
		if err := json.Unmarshal(msg.Data, &arcs); err != nil {
			return nil, fmt.Errorf("feed: decode arcs: %w", err)
		}
		return arcs, nil
	case "error":
		return nil, fmt.Errorf("feed: server error: %s", string(msg.Data))
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMessage, msg.Type)
	}
}

type Client struct {
	URL        string
	Dialer     *websocket.Dialer
	MinBackoff time.Duration
	MaxBackoff time.Duration

	arcs     chan config.Arc
	received atomic.Uint64
	dropped  atomic.Uint64
	sessions atomic.Uint64
}

func New(url string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Client{
		URL:        url,
		Dialer:     websocket.DefaultDialer,
		MinBackoff: DefaultMinBackoff,
		MaxBackoff: DefaultMaxBackoff,
		arcs:       make(chan config.Arc, buffer),
	}
}

// Arcs is the receive side of the feed. It is never closed.
func (c *Client) Arcs() <-chan config.Arc { return c.arcs }

// Received counts arcs decoded from the server.
func (c *Client) Received() uint64 { return c.received.Load() }

// Dropped counts arcs discarded because the channel was full.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

// Sessions counts successful connections.
func (c *Client) Sessions() uint64 { return c.sessions.Load() }

// Run connects and reconnects with exponential backoff until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		log.Printf("[FEED] Connecting to %s", c.URL)
		conn, _, err := c.Dialer.DialContext(ctx, c.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[FEED] Dial error: %v. Retrying in %v...", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff *= 2
			if backoff > c.MaxBackoff {
				backoff = c.MaxBackoff
			}
			continue
		}
		backoff = c.MinBackoff
		c.sessions.Add(1)

		if err := c.session(ctx, conn); err != nil && ctx.Err() == nil {
			log.Printf("[FEED] Read error: %v. Reconnecting...", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !sleep(ctx, c.MinBackoff) {
			return ctx.Err()
		}
	}
}

func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			log.Printf("[FEED] Error closing connection: %v", err)
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(subscribeMsg)); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		arcs, err := Decode(message)
		if err != nil {
			log.Printf("[FEED] %v", err)
			continue
		}
		for _, arc := range arcs {
			c.received.Add(1)
			c.push(arc)
		}
	}
}

func (c *Client) push(arc config.Arc) {
	select {
	case c.arcs <- arc:
	default:
		c.dropped.Add(1)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
