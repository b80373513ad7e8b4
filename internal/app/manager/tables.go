package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
	"github.com/vilafalo/tableside/internal/state"
)

// StatusEntry is one observed table status change, kept in memory for
// the manager's activity feed.
type StatusEntry struct {
	TableID string
	Number  int
	Status  domain.TableStatus
	At      time.Time
}

const historyLimit = 200

// TableAdmin manages the floor layout and records status changes as
// they arrive.
type TableAdmin struct {
	tables *state.Collection[domain.Table]
	api    interfaces.TableAPI
	orders interfaces.OrderAPI
	pub    interfaces.Publisher
	actor  string
	log    logger.Logger

	mu      sync.Mutex
	history []StatusEntry
}

// NewTableAdmin builds the table manager. actor is the logged-in
// manager's name, attached to outgoing notifications.
func NewTableAdmin(api interfaces.TableAPI, orders interfaces.OrderAPI, pub interfaces.Publisher, actor string, log logger.Logger) *TableAdmin {
	if log == nil {
		log = logger.Nop()
	}
	return &TableAdmin{
		tables: state.New[domain.Table](nil),
		api:    api,
		orders: orders,
		pub:    pub,
		actor:  actor,
		log:    log,
	}
}

func (a *TableAdmin) Load(ctx context.Context) error {
	tables, err := a.api.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}
	a.tables.Load(tables)
	return nil
}

func (a *TableAdmin) Attach(sub interfaces.Subscriber) (cancel func()) {
	return sub.Subscribe(interfaces.EventTableUpdated, a.onTableUpdated)
}

func (a *TableAdmin) onTableUpdated(data json.RawMessage) {
	var table domain.Table
	if err := json.Unmarshal(data, &table); err != nil {
		a.log.Error("table_event_failed", "Failed to decode table event", "", nil, err)
		return
	}

	prev, had := a.tables.Get(table.ID)
	a.tables.Apply(table)

	if !had || prev.Status != table.Status {
		a.record(StatusEntry{
			TableID: table.ID,
			Number:  table.Number,
			Status:  table.Status,
			At:      time.Now(),
		})
	}
}

func (a *TableAdmin) record(e StatusEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, e)
	if len(a.history) > historyLimit {
		a.history = a.history[len(a.history)-historyLimit:]
	}
}

// History returns the recorded status changes, newest last.
func (a *TableAdmin) History() []StatusEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]StatusEntry(nil), a.history...)
}

func (a *TableAdmin) Tables() []domain.Table {
	return a.tables.SortedBy(func(x, y domain.Table) bool {
		return x.Number < y.Number
	})
}

// Create adds a table; a zero number gets the next free one.
func (a *TableAdmin) Create(ctx context.Context, cmd interfaces.TableCommand) (domain.Table, error) {
	if cmd.Number == 0 {
		cmd.Number = domain.NextTableNumber(a.tables.List())
	}
	table, err := a.api.CreateTable(ctx, cmd)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to create table: %w", err)
	}
	a.tables.Apply(table)
	return table, nil
}

// Update applies a partial table change. Moving a table to free
// completes its current order first and always clears the order
// reference; a free table never references an order.
func (a *TableAdmin) Update(ctx context.Context, id string, patch interfaces.TablePatch) (domain.Table, error) {
	if patch.Status != nil && *patch.Status == domain.TableFree {
		table, ok := a.tables.Get(id)
		if !ok {
			var err error
			table, err = a.api.GetTable(ctx, id)
			if err != nil {
				return domain.Table{}, fmt.Errorf("failed to fetch table: %w", err)
			}
		}
		if table.CurrentOrder != "" {
			if err := a.orders.CompleteOrder(ctx, table.CurrentOrder); err != nil {
				return domain.Table{}, fmt.Errorf("failed to complete current order: %w", err)
			}
		}
		patch.ClearCurrentOrder = true
	}

	table, err := a.api.UpdateTable(ctx, id, patch)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to update table: %w", err)
	}
	a.tables.Apply(table)

	if patch.Status != nil && a.pub != nil {
		err := a.pub.Emit(ctx, interfaces.EventTableStatusChange, interfaces.TableStatusChangeEvent{
			TableID:   table.ID,
			Status:    table.Status,
			UpdatedBy: a.actor,
		})
		if err != nil {
			a.log.Debug("notify_skipped", "Table status notification not sent", "", map[string]interface{}{
				"table_id": table.ID,
			})
		}
	}
	return table, nil
}

// Delete removes a table; only free tables may go.
func (a *TableAdmin) Delete(ctx context.Context, id string) error {
	if table, ok := a.tables.Get(id); ok && !table.Deletable() {
		return domain.ErrTableNotFree
	}
	if err := a.api.DeleteTable(ctx, id); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	a.tables.Remove(id)
	return nil
}
