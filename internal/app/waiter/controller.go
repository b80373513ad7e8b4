package waiter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
	"github.com/vilafalo/tableside/internal/state"
)

// Controller drives the waiter floor view: every table with its status
// plus the set of active orders.
type Controller struct {
	tables *state.Collection[domain.Table]
	orders *state.Collection[domain.Order]

	tablesAPI interfaces.TableAPI
	ordersAPI interfaces.OrderAPI
	pub       interfaces.Publisher
	actor     string
	log       logger.Logger
}

// New builds the floor controller. actor is the logged-in waiter's
// name, attached to outgoing notifications.
func New(tablesAPI interfaces.TableAPI, ordersAPI interfaces.OrderAPI, pub interfaces.Publisher, actor string, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		tables: state.New[domain.Table](nil),
		orders: state.New[domain.Order](func(o domain.Order) bool {
			return o.Status == domain.StatusActive
		}),
		tablesAPI: tablesAPI,
		ordersAPI: ordersAPI,
		pub:       pub,
		actor:     actor,
		log:       log,
	}
}

// Load bulk-fetches tables and active orders. Called at mount and after
// every push-channel reconnect.
func (c *Controller) Load(ctx context.Context) error {
	tables, err := c.tablesAPI.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}
	c.tables.Load(tables)

	orders, err := c.ordersAPI.ListActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active orders: %w", err)
	}
	c.orders.Load(orders)
	return nil
}

// Attach subscribes the floor view to the push channel.
func (c *Controller) Attach(sub interfaces.Subscriber) (cancel func()) {
	cancels := []func(){
		sub.Subscribe(interfaces.EventTableUpdated, c.onTableUpdated),
		sub.Subscribe(interfaces.EventOrderReceived, c.onOrderEvent),
		sub.Subscribe(interfaces.EventOrderUpdated, c.onOrderEvent),
		sub.Subscribe(interfaces.EventOrderCompleted, c.onOrderCompleted),
	}
	return func() {
		for _, fn := range cancels {
			fn()
		}
	}
}

func (c *Controller) onTableUpdated(data json.RawMessage) {
	var table domain.Table
	if err := json.Unmarshal(data, &table); err != nil {
		c.log.Error("floor_event_failed", "Failed to decode table event", "", nil, err)
		return
	}
	c.tables.Apply(table)
}

func (c *Controller) onOrderEvent(data json.RawMessage) {
	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		c.log.Error("floor_event_failed", "Failed to decode order event", "", nil, err)
		return
	}
	c.orders.Apply(order)
}

func (c *Controller) onOrderCompleted(data json.RawMessage) {
	var ev interfaces.OrderCompletedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.log.Error("floor_event_failed", "Failed to decode completion event", "", nil, err)
		return
	}
	c.orders.Remove(ev.OrderID)
}

// Tables returns the floor ordered by table number.
func (c *Controller) Tables() []domain.Table {
	return c.tables.SortedBy(func(a, b domain.Table) bool {
		return a.Number < b.Number
	})
}

// ActiveOrders returns the open orders, newest first.
func (c *Controller) ActiveOrders() []domain.Order {
	return c.orders.SortedBy(func(a, b domain.Order) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (c *Controller) Table(id string) (domain.Table, bool) {
	return c.tables.Get(id)
}

// ChangeTableStatus moves a table to a new status. Freeing a table that
// still carries an order completes the order first; a free table never
// references an order.
func (c *Controller) ChangeTableStatus(ctx context.Context, tableID string, status domain.TableStatus) (domain.Table, error) {
	if !domain.ValidTableStatus(status) {
		return domain.Table{}, domain.ErrInvalidStatusTransition
	}

	table, ok := c.tables.Get(tableID)
	if !ok {
		var err error
		table, err = c.tablesAPI.GetTable(ctx, tableID)
		if err != nil {
			return domain.Table{}, fmt.Errorf("failed to fetch table: %w", err)
		}
	}

	if status == domain.TableFree && table.CurrentOrder != "" {
		if err := c.ordersAPI.CompleteOrder(ctx, table.CurrentOrder); err != nil {
			return domain.Table{}, fmt.Errorf("failed to complete current order: %w", err)
		}
		c.orders.Remove(table.CurrentOrder)
	}

	patch := interfaces.TablePatch{Status: &status}
	if status == domain.TableFree {
		patch.ClearCurrentOrder = true
	}
	updated, err := c.tablesAPI.UpdateTable(ctx, tableID, patch)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to update table: %w", err)
	}
	c.tables.Apply(updated)

	c.notifyTableStatus(ctx, updated)
	return updated, nil
}

func (c *Controller) notifyTableStatus(ctx context.Context, table domain.Table) {
	if c.pub == nil {
		return
	}
	err := c.pub.Emit(ctx, interfaces.EventTableStatusChange, interfaces.TableStatusChangeEvent{
		TableID:   table.ID,
		Status:    table.Status,
		UpdatedBy: c.actor,
	})
	if err != nil {
		c.log.Debug("notify_skipped", "Table status notification not sent", "", map[string]interface{}{
			"table_id": table.ID,
		})
	}
}

// CreateTable adds a table to the floor. A zero number is filled in
// with the next free one.
func (c *Controller) CreateTable(ctx context.Context, cmd interfaces.TableCommand) (domain.Table, error) {
	if cmd.Number == 0 {
		cmd.Number = domain.NextTableNumber(c.tables.List())
	}
	table, err := c.tablesAPI.CreateTable(ctx, cmd)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to create table: %w", err)
	}
	c.tables.Apply(table)
	return table, nil
}

// DeleteTable removes a free table.
func (c *Controller) DeleteTable(ctx context.Context, tableID string) error {
	table, ok := c.tables.Get(tableID)
	if ok && !table.Deletable() {
		return domain.ErrTableNotFree
	}
	if err := c.tablesAPI.DeleteTable(ctx, tableID); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	c.tables.Remove(tableID)
	return nil
}

// Reload is the periodic refresh hook for the floor view.
func (c *Controller) Reload(ctx context.Context) error {
	return c.Load(ctx)
}
