package waiter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/adapter/rest"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// TableView is the single-table detail: one table and its current
// order, kept live while the waiter has it open.
type TableView struct {
	tablesAPI interfaces.TableAPI
	ordersAPI interfaces.OrderAPI
	pub       interfaces.Publisher
	log       logger.Logger

	mu    sync.RWMutex
	table domain.Table
	order *domain.Order
}

func NewTableView(tablesAPI interfaces.TableAPI, ordersAPI interfaces.OrderAPI, pub interfaces.Publisher, log logger.Logger) *TableView {
	if log == nil {
		log = logger.Nop()
	}
	return &TableView{
		tablesAPI: tablesAPI,
		ordersAPI: ordersAPI,
		pub:       pub,
		log:       log,
	}
}

// Load fetches the table and, when one is open, its current order.
func (v *TableView) Load(ctx context.Context, tableID string) error {
	table, err := v.tablesAPI.GetTable(ctx, tableID)
	if err != nil {
		return fmt.Errorf("failed to load table: %w", err)
	}

	var order *domain.Order
	if table.CurrentOrder != "" {
		o, err := v.ordersAPI.GetOrder(ctx, table.CurrentOrder)
		switch {
		case rest.IsNotFound(err):
			// stale reference, the order is gone
		case err != nil:
			return fmt.Errorf("failed to load current order: %w", err)
		default:
			order = &o
		}
	}

	v.mu.Lock()
	v.table = table
	v.order = order
	v.mu.Unlock()
	return nil
}

// Attach subscribes the detail view to the push channel. Only events
// for the displayed table and order are acted on.
func (v *TableView) Attach(sub interfaces.Subscriber) (cancel func()) {
	cancels := []func(){
		sub.Subscribe(interfaces.EventTableUpdated, v.onTableUpdated),
		sub.Subscribe(interfaces.EventOrderItemUpdated, v.onOrderItemUpdated),
		sub.Subscribe(interfaces.EventOrderCompleted, v.onOrderCompleted),
	}
	return func() {
		for _, fn := range cancels {
			fn()
		}
	}
}

func (v *TableView) onTableUpdated(data json.RawMessage) {
	var table domain.Table
	if err := json.Unmarshal(data, &table); err != nil {
		v.log.Error("table_view_event_failed", "Failed to decode table event", "", nil, err)
		return
	}

	v.mu.Lock()
	if table.ID != v.table.ID {
		v.mu.Unlock()
		return
	}
	v.table = table
	if table.CurrentOrder == "" {
		v.order = nil
	}
	v.mu.Unlock()
}

// onOrderItemUpdated carries only the order id; the view re-fetches the
// order to pick up the item change.
func (v *TableView) onOrderItemUpdated(data json.RawMessage) {
	var ev interfaces.OrderItemUpdatedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		v.log.Error("table_view_event_failed", "Failed to decode item event", "", nil, err)
		return
	}

	v.mu.RLock()
	relevant := v.order != nil && v.order.ID == ev.OrderID
	v.mu.RUnlock()
	if !relevant {
		return
	}

	order, err := v.ordersAPI.GetOrder(context.Background(), ev.OrderID)
	if rest.IsNotFound(err) {
		v.mu.Lock()
		if v.order != nil && v.order.ID == ev.OrderID {
			v.order = nil
		}
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.log.Error("order_refetch_failed", "Failed to re-fetch order after item update", "", map[string]interface{}{
			"order_id": ev.OrderID,
		}, err)
		return
	}

	v.mu.Lock()
	if v.order != nil && v.order.ID == order.ID {
		v.order = &order
	}
	v.mu.Unlock()
}

func (v *TableView) onOrderCompleted(data json.RawMessage) {
	var ev interfaces.OrderCompletedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		v.log.Error("table_view_event_failed", "Failed to decode completion event", "", nil, err)
		return
	}

	v.mu.Lock()
	if v.order != nil && v.order.ID == ev.OrderID {
		v.order = nil
		if v.table.CurrentOrder == ev.OrderID {
			v.table.CurrentOrder = ""
		}
	}
	v.mu.Unlock()
}

// Snapshot returns the current table and order copy for rendering.
func (v *TableView) Snapshot() (domain.Table, *domain.Order) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.order == nil {
		return v.table, nil
	}
	order := *v.order
	return v.table, &order
}

// MarkPaid settles the current order: the server records the payment,
// the table is freed, and other views are notified. Payment is only
// accepted while the order is active.
func (v *TableView) MarkPaid(ctx context.Context) (domain.Order, error) {
	v.mu.RLock()
	table := v.table
	order := v.order
	v.mu.RUnlock()

	if order == nil {
		return domain.Order{}, domain.ErrInvalidTableRef
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return domain.Order{}, domain.ErrAlreadyPaid
	}
	if order.Status != domain.StatusActive {
		return domain.Order{}, domain.ErrOrderNotActive
	}

	paid, err := v.ordersAPI.PayOrder(ctx, order.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to pay order: %w", err)
	}

	free := domain.TableFree
	updated, err := v.tablesAPI.UpdateTable(ctx, table.ID, interfaces.TablePatch{
		Status:            &free,
		ClearCurrentOrder: true,
	})
	if err != nil {
		return paid, fmt.Errorf("order paid but table not freed: %w", err)
	}

	v.mu.Lock()
	v.table = updated
	v.order = nil
	v.mu.Unlock()

	if v.pub != nil {
		err := v.pub.Emit(ctx, interfaces.EventPaymentReceived, interfaces.PaymentReceivedEvent{
			OrderID: paid.ID,
			TableID: table.ID,
		})
		if err != nil {
			v.log.Debug("notify_skipped", "Payment notification not sent", "", map[string]interface{}{
				"order_id": paid.ID,
			})
		}
	}
	return paid, nil
}
