package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// OrderService implements interfaces.OrderAPI against /orders.
type OrderService struct {
	client *Client
}

func NewOrderService(client *Client) *OrderService {
	return &OrderService{client: client}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.client.do(ctx, http.MethodGet, "/orders", nil, &orders)
	return orders, err
}

func (s *OrderService) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.client.do(ctx, http.MethodGet, "/orders/active", nil, &orders)
	return orders, err
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var order domain.Order
	err := s.client.do(ctx, http.MethodGet, "/orders/"+id, nil, &order)
	return order, err
}

func (s *OrderService) ListOrdersByTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.client.do(ctx, http.MethodGet, "/orders/table/"+tableID, nil, &orders)
	return orders, err
}

func (s *OrderService) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (domain.Order, error) {
	var order domain.Order
	err := s.client.do(ctx, http.MethodPost, "/orders", cmd, &order)
	return order, err
}

type itemStatusRequest struct {
	Status domain.ItemStatus `json:"status"`
}

func (s *OrderService) UpdateItemStatus(ctx context.Context, orderID, itemID string, status domain.ItemStatus) (domain.Order, error) {
	var order domain.Order
	err := s.client.do(ctx, http.MethodPut, "/orders/"+orderID+"/item/"+itemID, itemStatusRequest{Status: status}, &order)
	return order, err
}

func (s *OrderService) MarkOrderPrepared(ctx context.Context, orderID string) error {
	return s.client.do(ctx, http.MethodPut, "/orders/"+orderID+"/prepared", struct{}{}, nil)
}

func (s *OrderService) CompleteOrder(ctx context.Context, orderID string) error {
	return s.client.do(ctx, http.MethodPut, "/orders/"+orderID+"/complete", struct{}{}, nil)
}

func (s *OrderService) PayOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var order domain.Order
	err := s.client.do(ctx, http.MethodPut, "/orders/"+orderID+"/pay", struct{}{}, &order)
	return order, err
}

func (s *OrderService) DailyReport(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.client.do(ctx, http.MethodGet, "/orders/report/daily", nil, &orders)
	return orders, err
}

func (s *OrderService) CustomReport(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("startDate", start.Format("2006-01-02"))
	q.Set("endDate", end.Format("2006-01-02"))

	var orders []domain.Order
	err := s.client.do(ctx, http.MethodGet, "/orders/report/custom?"+q.Encode(), nil, &orders)
	return orders, err
}
