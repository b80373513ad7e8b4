package rest

import (
	"context"
	"net/http"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// TableService implements interfaces.TableAPI against /tables.
type TableService struct {
	client *Client
}

func NewTableService(client *Client) *TableService {
	return &TableService{client: client}
}

func (s *TableService) ListTables(ctx context.Context) ([]domain.Table, error) {
	var tables []domain.Table
	err := s.client.do(ctx, http.MethodGet, "/tables", nil, &tables)
	return tables, err
}

func (s *TableService) GetTable(ctx context.Context, id string) (domain.Table, error) {
	var table domain.Table
	err := s.client.do(ctx, http.MethodGet, "/tables/"+id, nil, &table)
	return table, err
}

func (s *TableService) CreateTable(ctx context.Context, cmd interfaces.TableCommand) (domain.Table, error) {
	var table domain.Table
	err := s.client.do(ctx, http.MethodPost, "/tables", cmd, &table)
	return table, err
}

func (s *TableService) UpdateTable(ctx context.Context, id string, patch interfaces.TablePatch) (domain.Table, error) {
	var table domain.Table
	err := s.client.do(ctx, http.MethodPut, "/tables/"+id, patch, &table)
	return table, err
}

func (s *TableService) DeleteTable(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/tables/"+id, nil, nil)
}
