package waiter

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilafalo/tableside/internal/adapter/rest"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

type fakeTableAPI struct {
	tables  map[string]domain.Table
	patches []interfaces.TablePatch
}

func newFakeTableAPI(tables ...domain.Table) *fakeTableAPI {
	m := make(map[string]domain.Table)
	for _, t := range tables {
		m[t.ID] = t
	}
	return &fakeTableAPI{tables: m}
}

func (f *fakeTableAPI) ListTables(ctx context.Context) ([]domain.Table, error) {
	out := make([]domain.Table, 0, len(f.tables))
	for _, t := range f.tables {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTableAPI) GetTable(ctx context.Context, id string) (domain.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return domain.Table{}, &rest.APIError{Status: http.StatusNotFound}
	}
	return t, nil
}

func (f *fakeTableAPI) CreateTable(ctx context.Context, cmd interfaces.TableCommand) (domain.Table, error) {
	t := domain.Table{ID: "new", Number: cmd.Number, Name: cmd.Name, Capacity: cmd.Capacity, Status: domain.TableFree}
	f.tables[t.ID] = t
	return t, nil
}

func (f *fakeTableAPI) UpdateTable(ctx context.Context, id string, patch interfaces.TablePatch) (domain.Table, error) {
	f.patches = append(f.patches, patch)
	t := f.tables[id]
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.CurrentOrder != nil {
		t.CurrentOrder = *patch.CurrentOrder
	} else if patch.ClearCurrentOrder {
		t.CurrentOrder = ""
	}
	f.tables[id] = t
	return t, nil
}

func (f *fakeTableAPI) DeleteTable(ctx context.Context, id string) error {
	delete(f.tables, id)
	return nil
}

type fakeOrderAPI struct {
	orders    map[string]domain.Order
	completed []string
	paid      []string
}

func newFakeOrderAPI(orders ...domain.Order) *fakeOrderAPI {
	m := make(map[string]domain.Order)
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeOrderAPI{orders: m}
}

func (f *fakeOrderAPI) ListOrders(ctx context.Context) ([]domain.Order, error) { return nil, nil }
func (f *fakeOrderAPI) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.Status == domain.StatusActive {
			out = append(out, o)
		}
	}
	return out, nil
}
func (f *fakeOrderAPI) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, &rest.APIError{Status: http.StatusNotFound}
	}
	return o, nil
}
func (f *fakeOrderAPI) ListOrdersByTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderAPI) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (domain.Order, error) {
	return domain.Order{}, nil
}
func (f *fakeOrderAPI) UpdateItemStatus(ctx context.Context, orderID, itemID string, status domain.ItemStatus) (domain.Order, error) {
	return domain.Order{}, nil
}
func (f *fakeOrderAPI) MarkOrderPrepared(ctx context.Context, orderID string) error { return nil }
func (f *fakeOrderAPI) CompleteOrder(ctx context.Context, orderID string) error {
	f.completed = append(f.completed, orderID)
	if o, ok := f.orders[orderID]; ok {
		o.Status = domain.StatusCompleted
		f.orders[orderID] = o
	}
	return nil
}
func (f *fakeOrderAPI) PayOrder(ctx context.Context, orderID string) (domain.Order, error) {
	o := f.orders[orderID]
	o.PaymentStatus = domain.PaymentPaid
	f.orders[orderID] = o
	f.paid = append(f.paid, orderID)
	return o, nil
}
func (f *fakeOrderAPI) DailyReport(ctx context.Context) ([]domain.Order, error) { return nil, nil }
func (f *fakeOrderAPI) CustomReport(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	return nil, nil
}

type fakePublisher struct {
	events []interfaces.EventType
}

func (f *fakePublisher) Emit(ctx context.Context, event interfaces.EventType, payload any) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakePublisher) Connected() bool { return true }

func TestChangeTableStatusFreeCompletesOrder(t *testing.T) {
	t.Parallel()

	tables := newFakeTableAPI(domain.Table{ID: "t1", Number: 5, Status: domain.TableUnpaid, CurrentOrder: "o1"})
	orders := newFakeOrderAPI(domain.Order{ID: "o1", Status: domain.StatusActive})
	pub := &fakePublisher{}
	ctrl := New(tables, orders, pub, "Ana", nil)
	require.NoError(t, ctrl.Load(context.Background()))

	updated, err := ctrl.ChangeTableStatus(context.Background(), "t1", domain.TableFree)
	require.NoError(t, err)

	assert.Equal(t, []string{"o1"}, orders.completed)
	assert.Equal(t, domain.TableFree, updated.Status)
	assert.Empty(t, updated.CurrentOrder)
	assert.Contains(t, pub.events, interfaces.EventTableStatusChange)

	require.Len(t, tables.patches, 1)
	assert.True(t, tables.patches[0].ClearCurrentOrder)
}

func TestChangeTableStatusNonFreeKeepsOrder(t *testing.T) {
	t.Parallel()

	tables := newFakeTableAPI(domain.Table{ID: "t1", Status: domain.TableOrdering, CurrentOrder: "o1"})
	orders := newFakeOrderAPI(domain.Order{ID: "o1", Status: domain.StatusActive})
	ctrl := New(tables, orders, nil, "Ana", nil)
	require.NoError(t, ctrl.Load(context.Background()))

	updated, err := ctrl.ChangeTableStatus(context.Background(), "t1", domain.TableUnpaid)
	require.NoError(t, err)
	assert.Empty(t, orders.completed)
	assert.Equal(t, "o1", updated.CurrentOrder)
}

func TestChangeTableStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	ctrl := New(newFakeTableAPI(), newFakeOrderAPI(), nil, "Ana", nil)
	_, err := ctrl.ChangeTableStatus(context.Background(), "t1", "closed")
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestDeleteTableOnlyWhenFree(t *testing.T) {
	t.Parallel()

	tables := newFakeTableAPI(
		domain.Table{ID: "t1", Status: domain.TableOrdering},
		domain.Table{ID: "t2", Status: domain.TableFree},
	)
	ctrl := New(tables, newFakeOrderAPI(), nil, "Ana", nil)
	require.NoError(t, ctrl.Load(context.Background()))

	assert.ErrorIs(t, ctrl.DeleteTable(context.Background(), "t1"), domain.ErrTableNotFree)
	require.NoError(t, ctrl.DeleteTable(context.Background(), "t2"))
	_, ok := ctrl.Table("t2")
	assert.False(t, ok)
}

func TestCreateTablePicksNextNumber(t *testing.T) {
	t.Parallel()

	tables := newFakeTableAPI(domain.Table{ID: "t1", Number: 7, Status: domain.TableFree})
	ctrl := New(tables, newFakeOrderAPI(), nil, "Ana", nil)
	require.NoError(t, ctrl.Load(context.Background()))

	created, err := ctrl.CreateTable(context.Background(), interfaces.TableCommand{Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, 8, created.Number)
}
