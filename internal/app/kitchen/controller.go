package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
	"github.com/vilafalo/tableside/internal/state"
)

// Controller drives the kitchen dashboard: the live set of active
// orders, oldest first, with per-item preparation tracking.
type Controller struct {
	orders *state.Collection[domain.Order]
	api    interfaces.OrderAPI
	menu   interfaces.MenuAPI
	log    logger.Logger

	mu        sync.RWMutex
	menuIndex map[string]domain.MenuItem
}

func New(api interfaces.OrderAPI, menu interfaces.MenuAPI, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		orders: state.New[domain.Order](func(o domain.Order) bool {
			return o.Status == domain.StatusActive
		}),
		api:       api,
		menu:      menu,
		log:       log,
		menuIndex: make(map[string]domain.MenuItem),
	}
}

// Load bulk-fetches the active orders and the menu. Called at mount and
// again after every push-channel reconnect.
func (c *Controller) Load(ctx context.Context) error {
	orders, err := c.api.ListActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active orders: %w", err)
	}
	c.orders.Load(orders)

	items, err := c.menu.ListMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to load menu: %w", err)
	}
	index := make(map[string]domain.MenuItem, len(items))
	for _, it := range items {
		index[it.ID] = it
	}
	c.mu.Lock()
	c.menuIndex = index
	c.mu.Unlock()

	c.log.Debug("kitchen_loaded", "Kitchen state loaded", "", map[string]interface{}{
		"orders": c.orders.Len(),
		"menu":   len(index),
	})
	return nil
}

// Attach subscribes the controller to the push channel. The returned
// cancel removes every subscription.
func (c *Controller) Attach(sub interfaces.Subscriber) (cancel func()) {
	cancels := []func(){
		sub.Subscribe(interfaces.EventNewOrder, c.onOrderEvent),
		sub.Subscribe(interfaces.EventOrderUpdated, c.onOrderEvent),
		sub.Subscribe(interfaces.EventOrderCompleted, c.onOrderCompleted),
	}
	return func() {
		for _, fn := range cancels {
			fn()
		}
	}
}

func (c *Controller) onOrderEvent(data json.RawMessage) {
	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		c.log.Error("kitchen_event_failed", "Failed to decode order event", "", nil, err)
		return
	}
	c.orders.Apply(order)
}

func (c *Controller) onOrderCompleted(data json.RawMessage) {
	var ev interfaces.OrderCompletedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.log.Error("kitchen_event_failed", "Failed to decode completion event", "", nil, err)
		return
	}
	c.orders.Remove(ev.OrderID)
}

// Pending returns the active orders oldest first, the order the kitchen
// works them in.
func (c *Controller) Pending() []domain.Order {
	return c.orders.SortedBy(func(a, b domain.Order) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// WaitClass buckets an order for display urgency.
func (c *Controller) WaitClass(o domain.Order) domain.WaitClass {
	return domain.WaitClassFor(o.Age(time.Now()))
}

// PrepareResult reports the outcome of marking one item prepared. The
// item update and the conditional order-level transition are separate
// server calls with separate outcomes: OrderPrepareErr being set never
// undoes the item update.
type PrepareResult struct {
	Order           domain.Order
	OrderPrepared   bool
	OrderPrepareErr error
}

// MarkItemPrepared flags one item as ready on the server, merges the
// returned order, and, when that was the last unprepared item, promotes
// the whole order to prepared.
func (c *Controller) MarkItemPrepared(ctx context.Context, orderID, itemID string) (PrepareResult, error) {
	order, err := c.api.UpdateItemStatus(ctx, orderID, itemID, domain.ItemReady)
	if err != nil {
		return PrepareResult{}, fmt.Errorf("failed to mark item prepared: %w", err)
	}
	if err := order.MarkItemPrepared(itemID); err != nil {
		return PrepareResult{}, err
	}
	c.orders.Apply(order)

	res := PrepareResult{Order: order}
	if !order.AllItemsPrepared() {
		return res, nil
	}

	if err := c.api.MarkOrderPrepared(ctx, orderID); err != nil {
		res.OrderPrepareErr = fmt.Errorf("failed to mark order prepared: %w", err)
		c.log.Error("order_prepare_failed", "Order-level prepared transition failed", "", map[string]interface{}{
			"order_id": orderID,
		}, err)
		return res, nil
	}
	res.OrderPrepared = true
	return res, nil
}

// MenuItem resolves a menu id against the cached menu.
func (c *Controller) MenuItem(id string) (domain.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.menuIndex[id]
	return item, ok
}

// CategoryGroup is one category's slice of an order, in menu category
// display order.
type CategoryGroup struct {
	Category domain.Category
	Items    []domain.OrderItem
}

// GroupByCategory splits an order's items by resolved category for the
// ticket layout. Items whose category cannot be resolved sort last.
func (c *Controller) GroupByCategory(o domain.Order) []CategoryGroup {
	c.mu.RLock()
	lookup := func(id string) (domain.MenuItem, bool) {
		item, ok := c.menuIndex[id]
		return item, ok
	}
	groups := make(map[domain.Category][]domain.OrderItem)
	for _, it := range o.Items {
		cat := it.ResolveCategory(lookup)
		groups[cat] = append(groups[cat], it)
	}
	c.mu.RUnlock()

	out := make([]CategoryGroup, 0, len(groups))
	for cat, items := range groups {
		out = append(out, CategoryGroup{Category: cat, Items: items})
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.CategoryRank(out[i].Category) < domain.CategoryRank(out[j].Category)
	})
	return out
}

// Reload is the periodic refresh hook backing the live view in case a
// push event was dropped.
func (c *Controller) Reload(ctx context.Context) error {
	orders, err := c.api.ListActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh active orders: %w", err)
	}
	c.orders.Load(orders)
	return nil
}
