package rest

import (
	"context"
	"net/http"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// AuthService implements interfaces.AuthAPI against /auth.
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

type loginRequest struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, username string) (domain.User, string, error) {
	var resp loginResponse
	err := s.client.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username}, &resp)
	if err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := s.client.do(ctx, http.MethodGet, "/auth/user", nil, &user)
	return user, err
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.client.do(ctx, http.MethodGet, "/auth/users", nil, &users)
	return users, err
}

type registerResponse struct {
	User domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, cmd interfaces.UserCommand) (domain.User, error) {
	var resp registerResponse
	err := s.client.do(ctx, http.MethodPost, "/auth/register", cmd, &resp)
	return resp.User, err
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, cmd interfaces.UserCommand) (domain.User, error) {
	var user domain.User
	err := s.client.do(ctx, http.MethodPut, "/auth/users/"+id, cmd, &user)
	return user, err
}

func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/auth/users/"+id, nil, nil)
}
