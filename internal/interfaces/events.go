package interfaces

import (
	"encoding/json"

	"github.com/vilafalo/tableside/internal/domain"
)

// Push-channel event names. Server to client events carry either a full
// entity snapshot (upsert events) or a slim id payload that forces a
// targeted re-fetch.
type EventType string

const (
	EventNewOrder         EventType = "new-order"
	EventOrderUpdated     EventType = "order-updated"
	EventOrderReceived    EventType = "order-received"
	EventOrderItemUpdated EventType = "order-item-updated"
	EventOrderCompleted   EventType = "order-completed"
	EventTableUpdated     EventType = "table-updated"

	// client to server notifications
	EventTableStatusChange EventType = "table-status-change"
	EventPaymentReceived   EventType = "payment-received"
)

// Envelope is the frame exchanged on the push channel.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EventHandler receives the raw data of one event. Handlers run on the
// push client's single dispatch goroutine, in delivery order.
type EventHandler func(data json.RawMessage)

// Slim payloads that carry only ids.
type OrderItemUpdatedEvent struct {
	OrderID string `json:"orderId"`
}

type OrderCompletedEvent struct {
	OrderID string `json:"orderId"`
}

// Client to server notification payloads.
type TableStatusChangeEvent struct {
	TableID   string             `json:"_id"`
	Status    domain.TableStatus `json:"status"`
	UpdatedBy string             `json:"updatedBy"`
}

type PaymentReceivedEvent struct {
	OrderID string `json:"orderId"`
	TableID string `json:"tableId"`
}
