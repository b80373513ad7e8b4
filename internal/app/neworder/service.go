package neworder

import (
	"context"
	"fmt"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// Service submits a built order: the server creates it, other views
// are notified, and the table is bound to the new order.
type Service struct {
	orders interfaces.OrderAPI
	tables interfaces.TableAPI
	menu   interfaces.MenuAPI
	pub    interfaces.Publisher
	log    logger.Logger
}

func NewService(orders interfaces.OrderAPI, tables interfaces.TableAPI, menu interfaces.MenuAPI, pub interfaces.Publisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		orders: orders,
		tables: tables,
		menu:   menu,
		pub:    pub,
		log:    log,
	}
}

// Menu loads the items offered on the order screen, available ones
// only, in category display order.
func (s *Service) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.menu.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	out := items[:0]
	for _, it := range items {
		if it.Available {
			out = append(out, it)
		}
	}
	domain.SortMenu(out)
	return out, nil
}

// Submit creates the order, announces it, and moves the table to
// ordering with the new order attached. A failure binding the table is
// reported but does not undo the created order; the server owns it now.
func (s *Service) Submit(ctx context.Context, tableID string, b *Builder) (domain.Order, error) {
	cmd, err := b.Command(tableID)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.CreateOrder(ctx, cmd)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.Info("order_submitted", "Order submitted", "", map[string]interface{}{
		"order_id": order.ID,
		"table_id": tableID,
		"total":    order.TotalAmount,
	})

	if s.pub != nil {
		if err := s.pub.Emit(ctx, interfaces.EventNewOrder, order); err != nil {
			s.log.Debug("notify_skipped", "New order notification not sent", "", map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}

	ordering := domain.TableOrdering
	current := order.ID
	if _, err := s.tables.UpdateTable(ctx, tableID, interfaces.TablePatch{
		Status:       &ordering,
		CurrentOrder: &current,
	}); err != nil {
		return order, fmt.Errorf("order created but table not updated: %w", err)
	}

	b.Reset()
	return order, nil
}
