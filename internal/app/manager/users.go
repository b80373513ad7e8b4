package manager

import (
	"context"
	"fmt"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// UserAdmin manages staff accounts. The list is small and rarely
// changes, so it is fetched per view rather than cached.
type UserAdmin struct {
	api interfaces.AuthAPI
	log logger.Logger
}

func NewUserAdmin(api interfaces.AuthAPI, log logger.Logger) *UserAdmin {
	if log == nil {
		log = logger.Nop()
	}
	return &UserAdmin{api: api, log: log}
}

func (a *UserAdmin) List(ctx context.Context) ([]domain.User, error) {
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (a *UserAdmin) Create(ctx context.Context, cmd interfaces.UserCommand) (domain.User, error) {
	if !domain.ValidRole(cmd.Role) {
		return domain.User{}, fmt.Errorf("invalid role %q", cmd.Role)
	}
	user, err := a.api.Register(ctx, cmd)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to register user: %w", err)
	}
	a.log.Info("user_created", "Staff account created", "", map[string]interface{}{
		"username": user.Username,
		"role":     string(user.Role),
	})
	return user, nil
}

func (a *UserAdmin) Update(ctx context.Context, id string, cmd interfaces.UserCommand) (domain.User, error) {
	if !domain.ValidRole(cmd.Role) {
		return domain.User{}, fmt.Errorf("invalid role %q", cmd.Role)
	}
	user, err := a.api.UpdateUser(ctx, id, cmd)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (a *UserAdmin) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
