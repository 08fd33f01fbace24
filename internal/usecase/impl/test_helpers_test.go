package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"authsvc/config"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	"authsvc/internal/infra/auth"
	mockRepo "authsvc/internal/mocks/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testGlobalSecret = "test-global-secret"

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(allowUnverifiedEmail bool) *config.Config {
	return &config.Config{
		GoogleOAuth: &config.GoogleOAuthConfig{
			ClientID:             "client-id",
			StateTTL:             5 * time.Minute,
			AllowUnverifiedEmail: allowUnverifiedEmail,
		},
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// newTestTokenService returns a real JWT token service driven by clock.
func newTestTokenService(t *testing.T, clock *fakeClock) service.TokenService {
	t.Helper()

	tokens, err := auth.NewJWTService(auth.JWTOptions{
		GlobalSecret: []byte(testGlobalSecret),
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
		Issuer:       "authsvc-test",
		Now:          clock.Now,
	})
	require.NoError(t, err)

	return tokens
}

// expectTransaction runs the transaction callback against a factory that hands out txRepo.
func expectTransaction(t *testing.T, txManager *mockRepo.MockTransactionManager, txRepo *mockRepo.MockUserRepository) {
	t.Helper()

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.EXPECT().UserRepo().Return(txRepo).Maybe()

	txManager.EXPECT().
		Execute(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		}).
		Once()
}
