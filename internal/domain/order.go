package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusActive    OrderStatus = "active"
	StatusCompleted OrderStatus = "completed"
	StatusCanceled  OrderStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemServed    ItemStatus = "served"
	ItemCancelled ItemStatus = "cancelled"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrOrderNotActive          = errors.New("order is not active")
	ErrAlreadyPaid             = errors.New("order is already paid")
	ErrItemsNotPrepared        = errors.New("not all items are prepared")
	ErrItemNotFound            = errors.New("order item not found")
)

// Order is a restaurant order as the server reports it. Table and
// Waiter arrive either embedded or as bare ids, depending on the
// endpoint; TableRef/WaiterRef normalize that at decode time.
type Order struct {
	ID            string        `json:"_id"`
	Table         TableRef      `json:"table"`
	Waiter        WaiterRef     `json:"waiter"`
	Items         []OrderItem   `json:"items"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TotalAmount   int           `json:"totalAmount"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (o Order) EntityID() string { return o.ID }

// OrderItem is a line of an order. Price is captured at order time and
// never re-read from the live menu. Prepared is monotonic: once true it
// is never unset by the client.
type OrderItem struct {
	ID       string     `json:"_id"`
	Ref      ItemRef    `json:"-"`
	Name     string     `json:"name,omitempty"`
	Quantity int        `json:"quantity"`
	Price    int        `json:"price"`
	Notes    string     `json:"notes,omitempty"`
	Status   ItemStatus `json:"status,omitempty"`
	Prepared bool       `json:"prepared"`
}

// ComputeTotal is the creation-time total: sum of unit price times
// quantity over the submitted items.
func ComputeTotal(items []OrderItem) int {
	total := 0
	for _, it := range items {
		total += it.Price * it.Quantity
	}
	return total
}

// CanTransitionTo restricts the client to the transitions the backend
// is known to accept. Completed and canceled are terminal.
func (o Order) CanTransitionTo(s OrderStatus) bool {
	if o.Status != StatusActive {
		return false
	}
	return s == StatusCompleted || s == StatusCanceled
}

func (o *Order) TransitionTo(s OrderStatus) error {
	if !o.CanTransitionTo(s) {
		return ErrInvalidStatusTransition
	}
	o.Status = s
	return nil
}

// Pay marks the order paid. Payment is only accepted while the order is
// active; the caller is responsible for freeing the owning table.
func (o *Order) Pay() error {
	if o.Status != StatusActive {
		return ErrOrderNotActive
	}
	if o.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	o.PaymentStatus = PaymentPaid
	return nil
}

// MarkItemPrepared sets the item's prepared flag. The flag only moves
// false to true; repeating the call is a no-op.
func (o *Order) MarkItemPrepared(itemID string) error {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items[i].Prepared = true
			return nil
		}
	}
	return ErrItemNotFound
}

// AllItemsPrepared is the eligibility predicate for the order-level
// prepared transition. An order with no items is not eligible.
func (o Order) AllItemsPrepared() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if !it.Prepared {
			return false
		}
	}
	return true
}

// Age reports how long the order has been open.
func (o Order) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}

type WaitClass int

const (
	WaitNormal   WaitClass = iota // under 15 minutes
	WaitWarning                   // 15-30 minutes
	WaitCritical                  // over 30 minutes
)

// WaitClassFor buckets an order's age for kitchen prioritization.
func WaitClassFor(age time.Duration) WaitClass {
	switch {
	case age < 15*time.Minute:
		return WaitNormal
	case age < 30*time.Minute:
		return WaitWarning
	default:
		return WaitCritical
	}
}
