package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/interfaces"
)

var ErrNotConnected = errors.New("push channel not connected")

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Client maintains the single persistent connection to the server's
// event channel. It is process-wide state: created once at startup,
// disposed at teardown; views subscribe and unsubscribe independently
// without owning the connection.
//
// Events are dispatched from one goroutine in delivery order, so
// handlers never race each other. Reconnecting is owned here, with
// exponential backoff; subscribers that cache state must register an
// OnReconnect hook and bulk-reload, since events missed while
// disconnected are unrecoverable.
type Client struct {
	url          string
	pingInterval time.Duration
	log          logger.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	handlers  map[interfaces.EventType]map[int]interfaces.EventHandler
	nextID    int
	reconnect []func()

	writeMu sync.Mutex
}

func New(url string, pingInterval time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		url:          url,
		pingInterval: pingInterval,
		log:          log,
		handlers:     make(map[interfaces.EventType]map[int]interfaces.EventHandler),
	}
}

// Subscribe registers a handler for one event type and returns its
// cancel func. A view must cancel all its subscriptions when it is torn
// down, so events stop updating unmounted state.
func (c *Client) Subscribe(event interfaces.EventType, h interfaces.EventHandler) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]interfaces.EventHandler)
	}
	id := c.nextID
	c.nextID++
	c.handlers[event][id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

// OnReconnect registers a hook fired after every re-established
// connection (not the first one).
func (c *Client) OnReconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconnect = append(c.reconnect, fn)
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Emit sends a client notification. Notifications are best-effort: a
// disconnected channel is an error the caller may ignore.
func (c *Client) Emit(ctx context.Context, event interfaces.EventType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.WriteJSON(interfaces.Envelope{Event: event, Data: data}); err != nil {
		return fmt.Errorf("failed to emit %s: %w", event, err)
	}
	return nil
}

// nextBackoff picks the wait before the next dial attempt. Any session
// that got a connection resets the ladder; only consecutive dial
// failures climb it.
func nextBackoff(prev time.Duration, dialed bool) time.Duration {
	if dialed || prev == 0 {
		return initialBackoff
	}
	next := prev * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// Run blocks until ctx is canceled, dialing and re-dialing the channel.
func (c *Client) Run(ctx context.Context) error {
	var backoff time.Duration
	connects := 0

	for {
		dialed, err := c.runOnce(ctx, connects > 0)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if dialed {
			connects++
		}

		backoff = nextBackoff(backoff, dialed)
		if err != nil {
			c.log.Error("push_disconnected", "Push channel disconnected", "", map[string]interface{}{
				"retry_in": backoff.String(),
			}, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// runOnce reports whether a connection was established, separately from
// how the session ended.
func (c *Client) runOnce(ctx context.Context, isReconnect bool) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to dial push channel: %w", err)
	}
	defer conn.Close()

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	hooks := append([]func(){}, c.reconnect...)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
	}()

	c.log.Info("push_connected", "Push channel connected", "", map[string]interface{}{
		"url": c.url,
	})

	if isReconnect {
		// missed events are unrecoverable; subscribers bulk-reload here
		for _, fn := range hooks {
			fn()
		}
	}

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go c.pingLoop(pingCtx, conn)

	// close the connection when ctx is canceled so ReadMessage unblocks
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			return true, fmt.Errorf("push channel read: %w", err)
		}
		c.dispatch(data)
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(data []byte) {
	var env interfaces.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Error("push_parse_failed", "Failed to parse push frame", "", nil, err)
		return
	}

	c.mu.RLock()
	hs := make([]interfaces.EventHandler, 0, len(c.handlers[env.Event]))
	for _, h := range c.handlers[env.Event] {
		hs = append(hs, h)
	}
	c.mu.RUnlock()

	if len(hs) == 0 {
		return
	}

	c.log.Debug("push_event", "Push event received", "", map[string]interface{}{
		"event":    string(env.Event),
		"handlers": len(hs),
	})
	for _, h := range hs {
		h(env.Data)
	}
}
