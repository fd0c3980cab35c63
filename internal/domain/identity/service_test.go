package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockUserRepo struct {
	users []*User
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	m.users = append(m.users, u)
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// --- Helpers ---

var testSecret = []byte("test-secret")

func newTestService(repo *mockUserRepo) *Service {
	return NewService(repo, testSecret, 7*24*time.Hour)
}

// --- Tests ---

func TestRegister(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestService(repo)

	u, token, err := svc.Register(context.Background(), "jane@example.com", "hunter2", "Jane")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane", u.Name)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter2", u.PasswordHash)
	require.Len(t, repo.users, 1)
}

func TestRegister_MissingCredentials(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Register(context.Background(), "", "hunter2", "Jane")
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, _, err = svc.Register(context.Background(), "jane@example.com", "", "Jane")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Register(context.Background(), "jane@example.com", "hunter2", "Jane")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "JANE@Example.COM", "other", "Jane 2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	registered, _, err := svc.Register(context.Background(), "jane@example.com", "hunter2", "Jane")
	require.NoError(t, err)

	u, token, err := svc.Login(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Register(context.Background(), "jane@example.com", "hunter2", "Jane")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jane@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_RoundTrip(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	u, token, err := svc.Register(context.Background(), "jane@example.com", "hunter2", "Jane")
	require.NoError(t, err)

	sub, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)
}

func TestVerify_Garbage(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.Verify(context.Background(), "not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	repo := &mockUserRepo{}
	issuer := newTestService(repo)
	verifier := NewService(repo, []byte("other-secret"), 7*24*time.Hour)

	_, token, err := issuer.Register(context.Background(), "jane@example.com", "hunter2", "Jane")
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, token, err := svc.Register(context.Background(), "jane@example.com", "hunter2", "Jane")
	require.NoError(t, err)

	// Shift the verifier's clock past the token lifetime.
	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	_, err = svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
