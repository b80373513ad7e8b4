package rest

import (
	"context"
	"net/http"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// MenuService implements interfaces.MenuAPI against /menu.
type MenuService struct {
	client *Client
}

func NewMenuService(client *Client) *MenuService {
	return &MenuService{client: client}
}

func (s *MenuService) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := s.client.do(ctx, http.MethodGet, "/menu", nil, &items)
	return items, err
}

func (s *MenuService) ListMenuByCategory(ctx context.Context, c domain.Category) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := s.client.do(ctx, http.MethodGet, "/menu/category/"+string(c), nil, &items)
	return items, err
}

func (s *MenuService) CreateMenuItem(ctx context.Context, cmd interfaces.MenuItemCommand) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := s.client.do(ctx, http.MethodPost, "/menu", cmd, &item)
	return item, err
}

func (s *MenuService) UpdateMenuItem(ctx context.Context, id string, cmd interfaces.MenuItemCommand) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := s.client.do(ctx, http.MethodPut, "/menu/"+id, cmd, &item)
	return item, err
}

func (s *MenuService) DeleteMenuItem(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/menu/"+id, nil, nil)
}
