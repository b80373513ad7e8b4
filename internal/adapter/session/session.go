package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

var ErrUnauthenticated = errors.New("not authenticated")

// Store is the process-wide session singleton: the auth token and the
// identity it belongs to. The token is persisted to a file so a
// restarted terminal resumes its session; logout or a rejected token
// removes it.
type Store struct {
	mu        sync.RWMutex
	tokenPath string
	token     string
	user      *domain.User
	log       logger.Logger
}

func NewStore(tokenPath string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		tokenPath: tokenPath,
		log:       log,
	}
	s.loadToken()
	return s
}

func (s *Store) loadToken() {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return
	}
	s.token = strings.TrimSpace(string(data))
}

// Restore validates a persisted token by fetching the current user. An
// invalid token clears the store.
func (s *Store) Restore(ctx context.Context, auth interfaces.AuthAPI) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return ErrUnauthenticated
	}

	user, err := auth.CurrentUser(ctx)
	if err != nil {
		s.Invalidate()
		return fmt.Errorf("session restore: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.log.Info("session_restored", "Session restored from stored token", "", map[string]interface{}{
		"username": user.Username,
		"role":     string(user.Role),
	})
	return nil
}

// Login authenticates by username and persists the issued token.
func (s *Store) Login(ctx context.Context, auth interfaces.AuthAPI, username string) (domain.User, error) {
	user, token, err := auth.Login(ctx, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if err := s.persistToken(token); err != nil {
		s.log.Error("token_persist_failed", "Failed to store session token", "", nil, err)
	}

	s.log.Info("login_ok", "Logged in", "", map[string]interface{}{
		"username": user.Username,
		"role":     string(user.Role),
	})
	return user, nil
}

func (s *Store) persistToken(token string) error {
	dir := filepath.Dir(s.tokenPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.tokenPath, []byte(token), 0o600)
}

// Logout clears token and identity synchronously and removes the
// persisted token.
func (s *Store) Logout() {
	s.clear()
	s.log.Info("logout", "Logged out", "", nil)
}

// Invalidate is the global 401/403 handler: the server rejected the
// token, so the session is gone no matter which view made the call.
func (s *Store) Invalidate() {
	s.clear()
	s.log.Info("session_invalidated", "Server rejected session token", "", nil)
}

func (s *Store) clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	os.Remove(s.tokenPath)
}

// Token implements the REST client's token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}
