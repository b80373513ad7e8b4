package manager

import (
	"context"
	"fmt"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// Stats is the dashboard headline row.
type Stats struct {
	ActiveOrders   int
	UnpaidAmount   int
	FreeTables     int
	OccupiedTables int
	TodayOrders    int
	TodayRevenue   int
}

// Controller composes the manager dashboard from the live board and
// the floor state.
type Controller struct {
	Board   *Board
	Tables  *TableAdmin
	Menu    *MenuAdmin
	Users   *UserAdmin
	Reports *Reporter

	orders interfaces.OrderAPI
	log    logger.Logger
}

// New builds the dashboard. actor is the logged-in manager's name,
// attached to outgoing notifications.
func New(orders interfaces.OrderAPI, tables interfaces.TableAPI, menu interfaces.MenuAPI, auth interfaces.AuthAPI, pub interfaces.Publisher, actor string, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		Board:  NewBoard(orders, log),
		Tables: NewTableAdmin(tables, orders, pub, actor, log),
		Menu:   NewMenuAdmin(menu, log),
		Users:  NewUserAdmin(auth, log),
		orders: orders,
		log:    log,
	}
	c.Reports = NewReporter(orders, c.Menu.Lookup)
	return c
}

// Load bulk-fetches everything the dashboard shows.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.Board.Load(ctx); err != nil {
		return err
	}
	if err := c.Tables.Load(ctx); err != nil {
		return err
	}
	if err := c.Menu.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Attach wires the dashboard's live parts to the push channel.
func (c *Controller) Attach(sub interfaces.Subscriber) (cancel func()) {
	cancels := []func(){
		c.Board.Attach(sub),
		c.Tables.Attach(sub),
	}
	return func() {
		for _, fn := range cancels {
			fn()
		}
	}
}

// Stats computes the headline numbers from cached state plus today's
// report.
func (c *Controller) Stats(ctx context.Context) (Stats, error) {
	s := Stats{ActiveOrders: c.Board.Len()}

	for _, o := range c.Board.Orders() {
		if o.PaymentStatus == domain.PaymentUnpaid {
			s.UnpaidAmount += o.TotalAmount
		}
	}
	for _, t := range c.Tables.Tables() {
		if t.Status == domain.TableFree {
			s.FreeTables++
		} else {
			s.OccupiedTables++
		}
	}

	today, err := c.orders.DailyReport(ctx)
	if err != nil {
		return s, fmt.Errorf("failed to load daily report: %w", err)
	}
	s.TodayOrders = len(today)
	for _, o := range today {
		if o.PaymentStatus == domain.PaymentPaid {
			s.TodayRevenue += o.TotalAmount
		}
	}
	return s, nil
}

// Reload backs the periodic refresher.
func (c *Controller) Reload(ctx context.Context) error {
	return c.Load(ctx)
}
