package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/adapter/rest"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
	"github.com/vilafalo/tableside/internal/state"
)

// Board is the manager's live list of open orders.
type Board struct {
	orders *state.Collection[domain.Order]
	api    interfaces.OrderAPI
	log    logger.Logger
}

func NewBoard(api interfaces.OrderAPI, log logger.Logger) *Board {
	if log == nil {
		log = logger.Nop()
	}
	return &Board{
		orders: state.New[domain.Order](func(o domain.Order) bool {
			return o.Status == domain.StatusActive
		}),
		api: api,
		log: log,
	}
}

func (b *Board) Load(ctx context.Context) error {
	orders, err := b.api.ListActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active orders: %w", err)
	}
	b.orders.Load(orders)
	return nil
}

func (b *Board) Attach(sub interfaces.Subscriber) (cancel func()) {
	cancels := []func(){
		sub.Subscribe(interfaces.EventOrderReceived, b.onOrderEvent),
		sub.Subscribe(interfaces.EventOrderUpdated, b.onOrderEvent),
		sub.Subscribe(interfaces.EventOrderItemUpdated, b.onOrderItemUpdated),
		sub.Subscribe(interfaces.EventOrderCompleted, b.onOrderCompleted),
	}
	return func() {
		for _, fn := range cancels {
			fn()
		}
	}
}

func (b *Board) onOrderEvent(data json.RawMessage) {
	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		b.log.Error("board_event_failed", "Failed to decode order event", "", nil, err)
		return
	}
	b.orders.Apply(order)
}

// onOrderItemUpdated re-fetches the named order; the event is slim. An
// order the server no longer has is dropped from the board.
func (b *Board) onOrderItemUpdated(data json.RawMessage) {
	var ev interfaces.OrderItemUpdatedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		b.log.Error("board_event_failed", "Failed to decode item event", "", nil, err)
		return
	}
	if _, tracked := b.orders.Get(ev.OrderID); !tracked {
		return
	}

	order, err := b.api.GetOrder(context.Background(), ev.OrderID)
	if rest.IsNotFound(err) {
		b.orders.Remove(ev.OrderID)
		return
	}
	if err != nil {
		b.log.Error("board_refetch_failed", "Failed to re-fetch order after item update", "", map[string]interface{}{
			"order_id": ev.OrderID,
		}, err)
		return
	}
	b.orders.Apply(order)
}

func (b *Board) onOrderCompleted(data json.RawMessage) {
	var ev interfaces.OrderCompletedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		b.log.Error("board_event_failed", "Failed to decode completion event", "", nil, err)
		return
	}
	b.orders.Remove(ev.OrderID)
}

// Orders lists the board newest first.
func (b *Board) Orders() []domain.Order {
	return b.orders.SortedBy(func(a, c domain.Order) bool {
		return a.CreatedAt.After(c.CreatedAt)
	})
}

func (b *Board) Len() int { return b.orders.Len() }

// Recent returns the n newest orders for the dashboard strip.
func (b *Board) Recent(n int) []domain.Order {
	out := b.Orders()
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Reload is the periodic refresh hook in case a push event was missed.
func (b *Board) Reload(ctx context.Context) error {
	return b.Load(ctx)
}
