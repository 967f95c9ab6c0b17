package account_test

import (
	"context"
	"sync"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
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

func setupDB(t *testing.T) account.RepositoryManager {
	t.Helper()

	db, dialect, err := account.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = account.Migrate(context.Background(), db.DB, dialect)
	require.NoError(t, err)

	return account.NewRepositoryManager(db)
}

type lifecycleFixture struct {
	lc       *account.AccountLifecycle
	repo     account.RepositoryManager
	notifier *account.RecordingNotifier
	clock    *fakeClock
}

func setupLifecycle(t *testing.T, opts ...account.Option) *lifecycleFixture {
	t.Helper()

	repo := setupDB(t)
	notifier := &account.RecordingNotifier{}
	clock := newFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	base := []account.Option{
		account.WithClock(clock.Now),
		account.WithPasswordHasher(account.NewBcryptHasher(bcrypt.MinCost)),
		account.WithBaseURL("https://app.example.com"),
		account.WithLogger(&recordingLogger{}),
	}

	return &lifecycleFixture{
		lc:       account.NewAccountLifecycle(repo, notifier, append(base, opts...)...),
		repo:     repo,
		notifier: notifier,
		clock:    clock,
	}
}

func (f *lifecycleFixture) register(t *testing.T, email, name, password string) *account.Account {
	t.Helper()

	ok, err := f.lc.Register(context.Background(), account.RegisterAccountMessage{
		Email:    email,
		Name:     name,
		Password: password,
	})
	require.NoError(t, err)
	require.True(t, ok)

	return f.mustFind(t, email)
}

func (f *lifecycleFixture) registerVerified(t *testing.T, email, name, password string) *account.Account {
	t.Helper()

	acc := f.register(t, email, name, password)
	ok, err := f.lc.VerifyEmail(context.Background(), acc.VerificationToken)
	require.NoError(t, err)
	require.True(t, ok)

	return f.mustFind(t, email)
}

func (f *lifecycleFixture) mustFind(t *testing.T, email string) *account.Account {
	t.Helper()

	acc, err := f.repo.Accounts().FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return acc
}
