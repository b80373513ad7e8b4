package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

type fakeAuth struct {
	user     domain.User
	token    string
	loginErr error
	meErr    error
}

func (f *fakeAuth) Login(ctx context.Context, username string) (domain.User, string, error) {
	if f.loginErr != nil {
		return domain.User{}, "", f.loginErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuth) CurrentUser(ctx context.Context) (domain.User, error) {
	if f.meErr != nil {
		return domain.User{}, f.meErr
	}
	return f.user, nil
}

func (f *fakeAuth) ListUsers(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (f *fakeAuth) Register(ctx context.Context, cmd interfaces.UserCommand) (domain.User, error) {
	return domain.User{}, nil
}
func (f *fakeAuth) UpdateUser(ctx context.Context, id string, cmd interfaces.UserCommand) (domain.User, error) {
	return domain.User{}, nil
}
func (f *fakeAuth) DeleteUser(ctx context.Context, id string) error { return nil }

func tokenPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "token")
}

func TestLoginPersistsToken(t *testing.T) {
	t.Parallel()

	path := tokenPath(t)
	store := NewStore(path, nil)
	auth := &fakeAuth{
		user:  domain.User{ID: "u1", Username: "ana", Role: domain.RoleWaiter},
		token: "tok-abc",
	}

	user, err := store.Login(context.Background(), auth, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "tok-abc", store.Token())
	assert.True(t, store.Authenticated())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", string(data))
}

func TestRestoreFromStoredToken(t *testing.T) {
	t.Parallel()

	path := tokenPath(t)
	require.NoError(t, os.WriteFile(path, []byte("tok-stored\n"), 0o600))

	store := NewStore(path, nil)
	auth := &fakeAuth{user: domain.User{ID: "u1", Username: "ana"}}

	require.NoError(t, store.Restore(context.Background(), auth))
	assert.Equal(t, "tok-stored", store.Token())

	user, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "ana", user.Username)
}

func TestRestoreWithoutTokenFails(t *testing.T) {
	t.Parallel()

	store := NewStore(tokenPath(t), nil)
	err := store.Restore(context.Background(), &fakeAuth{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRestoreRejectedTokenClearsStore(t *testing.T) {
	t.Parallel()

	path := tokenPath(t)
	require.NoError(t, os.WriteFile(path, []byte("tok-stale"), 0o600))

	store := NewStore(path, nil)
	auth := &fakeAuth{meErr: errors.New("api error 401")}

	require.Error(t, store.Restore(context.Background(), auth))
	assert.Empty(t, store.Token())
	assert.False(t, store.Authenticated())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestInvalidateClearsEverything(t *testing.T) {
	t.Parallel()

	path := tokenPath(t)
	store := NewStore(path, nil)
	auth := &fakeAuth{user: domain.User{ID: "u1"}, token: "tok"}

	_, err := store.Login(context.Background(), auth, "ana")
	require.NoError(t, err)

	store.Invalidate()
	assert.Empty(t, store.Token())
	assert.False(t, store.Authenticated())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
