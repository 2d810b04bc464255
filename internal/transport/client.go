// Package transport owns the websocket connection to the game server. The
// read pump publishes every inbound frame to the event bus untouched;
// decoding happens downstream. Writes go through Send, which serializes
// access to the connection.
package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-log"
)

// FrameSink is the publish side of the event bus.
type FrameSink interface {
	Publish(subject string, data []byte) error
}

type Client struct {
	url     string
	sink    FrameSink
	subject string

	dialAttempts int
	dialWait     time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewClient(url string, sink FrameSink, subject string, opts ...ClientOpt) *Client {
	c := &Client{
		url:          url,
		sink:         sink,
		subject:      subject,
		dialAttempts: 12,
		dialWait:     time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start dials the game server and runs the read pump until the connection
// drops or ctx is canceled. A dropped connection is returned as an error so
// the application restarts rather than running loops against a dead mirror.
func (c *Client) Start(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	conn, err := c.dialWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("dialing game server: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	logger.Infof("connected to game server at %s", c.url)

	readErr := make(chan error, 1)
	go func() {
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if err := c.sink.Publish(c.subject, payload); err != nil {
				logger.WithError(err).Warn("publishing inbound frame")
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-readErr:
		return fmt.Errorf("game socket closed: %w", err)
	}
}

// Send marshals v as JSON and writes it to the socket.
func (c *Client) Send(ctx context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
	}
	return c.conn.WriteJSON(v)
}

// SendRaw writes a pre-encoded text frame to the socket.
func (c *Client) SendRaw(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) dialWithRetry(ctx context.Context) (*websocket.Conn, error) {
	if !strings.HasPrefix(c.url, "ws://") && !strings.HasPrefix(c.url, "wss://") {
		return nil, fmt.Errorf("invalid ws url: %s", c.url)
	}
	logger := log.GetLogger(ctx)

	var lastErr error
	for attempt := 0; attempt < c.dialAttempts; attempt++ {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		logger.WithError(err).Warnf("dial attempt %d/%d failed", attempt+1, c.dialAttempts)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.dialWait):
		}
	}
	return nil, lastErr
}
