package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilafalo/tableside/internal/interfaces"
)

var upgrader = websocket.Upgrader{}

// testServer accepts one connection per call to handle and hands it to
// the callback.
func testServer(t *testing.T, handle func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestDispatchToSubscribers(t *testing.T) {
	t.Parallel()

	url := testServer(t, func(conn *websocket.Conn) {
		env := interfaces.Envelope{Event: interfaces.EventNewOrder, Data: json.RawMessage(`{"_id":"o1"}`)}
		conn.WriteJSON(env)
		// keep the connection open until the test ends
		conn.ReadMessage()
	})

	client := New(url, time.Minute, nil)

	got := make(chan struct{})
	var payload json.RawMessage
	client.Subscribe(interfaces.EventNewOrder, func(data json.RawMessage) {
		payload = data
		close(got)
	})

	ignored := 0
	client.Subscribe(interfaces.EventTableUpdated, func(json.RawMessage) { ignored++ })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	waitFor(t, got, "event dispatch")
	assert.JSONEq(t, `{"_id":"o1"}`, string(payload))
	assert.Zero(t, ignored)
	assert.True(t, client.Connected())
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	client := New("ws://unused", time.Minute, nil)

	calls := 0
	cancelSub := client.Subscribe(interfaces.EventNewOrder, func(json.RawMessage) { calls++ })

	env, _ := json.Marshal(interfaces.Envelope{Event: interfaces.EventNewOrder, Data: json.RawMessage(`{}`)})
	client.dispatch(env)
	assert.Equal(t, 1, calls)

	cancelSub()
	client.dispatch(env)
	assert.Equal(t, 1, calls)
}

func TestDispatchBadFrameIgnored(t *testing.T) {
	t.Parallel()

	client := New("ws://unused", time.Minute, nil)
	calls := 0
	client.Subscribe(interfaces.EventNewOrder, func(json.RawMessage) { calls++ })

	client.dispatch([]byte(`{not json`))
	assert.Zero(t, calls)
}

func TestEmit(t *testing.T) {
	t.Parallel()

	received := make(chan interfaces.Envelope, 1)
	url := testServer(t, func(conn *websocket.Conn) {
		var env interfaces.Envelope
		if err := conn.ReadJSON(&env); err == nil {
			received <- env
		}
	})

	client := New(url, time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	require.Eventually(t, client.Connected, 3*time.Second, 10*time.Millisecond)

	err := client.Emit(ctx, interfaces.EventPaymentReceived, interfaces.PaymentReceivedEvent{
		OrderID: "o1",
		TableID: "t1",
	})
	require.NoError(t, err)

	select {
	case env := <-received:
		assert.Equal(t, interfaces.EventPaymentReceived, env.Event)
		assert.JSONEq(t, `{"orderId":"o1","tableId":"t1"}`, string(env.Data))
	case <-time.After(3 * time.Second):
		t.Fatal("server never received the event")
	}
}

func TestEmitWhileDisconnected(t *testing.T) {
	t.Parallel()

	client := New("ws://unused", time.Minute, nil)
	err := client.Emit(context.Background(), interfaces.EventNewOrder, struct{}{})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNextBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prev   time.Duration
		dialed bool
		want   time.Duration
	}{
		{"first attempt", 0, false, time.Second},
		{"failure doubles", time.Second, false, 2 * time.Second},
		{"failure caps", 20 * time.Second, false, 30 * time.Second},
		{"stays at cap", 30 * time.Second, false, 30 * time.Second},
		{"session resets from cap", 30 * time.Second, true, time.Second},
		{"session resets mid-ladder", 8 * time.Second, true, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextBackoff(tt.prev, tt.dialed))
		})
	}
}

func TestDroppedSessionResetsBackoff(t *testing.T) {
	t.Parallel()

	// the server drops every connection right away; a session that
	// dialed must not inherit the failure ladder
	var accepts atomic.Int32
	url := testServer(t, func(conn *websocket.Conn) {
		accepts.Add(1)
		conn.Close()
	})

	client := New(url, time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	// with doubling this would take 1s+2s+4s; resets keep it at 1s each
	require.Eventually(t, func() bool { return accepts.Load() >= 3 }, 4*time.Second, 10*time.Millisecond)
}

func TestReconnectFiresHooks(t *testing.T) {
	t.Parallel()

	var accepts atomic.Int32
	url := testServer(t, func(conn *websocket.Conn) {
		if accepts.Add(1) == 1 {
			// drop the first connection immediately
			conn.Close()
			return
		}
		conn.ReadMessage()
	})

	client := New(url, time.Minute, nil)

	reconnected := make(chan struct{})
	client.OnReconnect(func() { close(reconnected) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	waitFor(t, reconnected, "reconnect hook")
	require.Eventually(t, client.Connected, 3*time.Second, 10*time.Millisecond)
}
