package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vilafalo/tableside/internal/domain"
)

// Resource fetchers. Stateless request/response wrappers around the
// REST API; the server is authoritative for every entity, the client
// only caches.

type AuthAPI interface {
	Login(ctx context.Context, username string) (domain.User, string, error)
	CurrentUser(ctx context.Context) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	Register(ctx context.Context, cmd UserCommand) (domain.User, error)
	UpdateUser(ctx context.Context, id string, cmd UserCommand) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type MenuAPI interface {
	ListMenu(ctx context.Context) ([]domain.MenuItem, error)
	ListMenuByCategory(ctx context.Context, c domain.Category) ([]domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, cmd MenuItemCommand) (domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, cmd MenuItemCommand) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
}

type TableAPI interface {
	ListTables(ctx context.Context) ([]domain.Table, error)
	GetTable(ctx context.Context, id string) (domain.Table, error)
	CreateTable(ctx context.Context, cmd TableCommand) (domain.Table, error)
	UpdateTable(ctx context.Context, id string, patch TablePatch) (domain.Table, error)
	DeleteTable(ctx context.Context, id string) error
}

type OrderAPI interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListActiveOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrdersByTable(ctx context.Context, tableID string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID string, status domain.ItemStatus) (domain.Order, error)
	MarkOrderPrepared(ctx context.Context, orderID string) error
	CompleteOrder(ctx context.Context, orderID string) error
	PayOrder(ctx context.Context, orderID string) (domain.Order, error)
	DailyReport(ctx context.Context) ([]domain.Order, error)
	CustomReport(ctx context.Context, start, end time.Time) ([]domain.Order, error)
}

// Publisher sends client notifications over the push channel. These are
// best-effort signals for other connected views, never authoritative
// writes.
type Publisher interface {
	Emit(ctx context.Context, event EventType, payload any) error
	Connected() bool
}

// Subscriber registers handlers per event type; the returned func
// removes the registration. Navigating away from a view must cancel all
// of its subscriptions.
type Subscriber interface {
	Subscribe(event EventType, h EventHandler) (cancel func())
}

// Commands / write payloads.

type UserCommand struct {
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type MenuItemCommand struct {
	Name             string          `json:"name"`
	LocalName        string          `json:"albanianName"`
	Category         domain.Category `json:"category"`
	Price            int             `json:"price"`
	Available        bool            `json:"available"`
	Description      string          `json:"description,omitempty"`
	LocalDescription string          `json:"albanianDescription,omitempty"`
}

type TableCommand struct {
	Number   int    `json:"number"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
}

// TablePatch is a partial table update. Nil fields are left untouched;
// ClearCurrentOrder sends an explicit null so the server drops the
// reference.
type TablePatch struct {
	Number            *int
	Name              *string
	Capacity          *int
	Status            *domain.TableStatus
	CurrentOrder      *string
	ClearCurrentOrder bool
}

func (p TablePatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Number != nil {
		fields["number"] = *p.Number
	}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Capacity != nil {
		fields["capacity"] = *p.Capacity
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.CurrentOrder != nil {
		fields["currentOrder"] = *p.CurrentOrder
	} else if p.ClearCurrentOrder {
		fields["currentOrder"] = nil
	}
	return json.Marshal(fields)
}

type CreateOrderCommand struct {
	TableID string                   `json:"tableId"`
	Items   []CreateOrderItemCommand `json:"items"`
}

// CreateOrderItemCommand captures price at order time; later menu price
// changes must not affect the submitted order.
type CreateOrderItemCommand struct {
	MenuItemID *string `json:"menuItem"`
	Name       string  `json:"name"`
	Price      int     `json:"price"`
	Quantity   int     `json:"quantity"`
	Notes      string  `json:"notes,omitempty"`
}
