package account_test

import (
	"context"
	"fmt"
	"sync"

	account "github.com/goliatone/go-account"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAccounts implements account.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) result(args mock.Arguments) (*account.Account, error) {
	if rec, ok := args.Get(0).(*account.Account); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockAccounts) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, id))
}

func (m *MockAccounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return m.result(m.Called(ctx, email))
}

func (m *MockAccounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, email))
}

func (m *MockAccounts) FindByVerificationToken(ctx context.Context, token string) (*account.Account, error) {
	return m.result(m.Called(ctx, token))
}

func (m *MockAccounts) FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, token))
}

func (m *MockAccounts) FindByResetToken(ctx context.Context, token string) (*account.Account, error) {
	return m.result(m.Called(ctx, token))
}

func (m *MockAccounts) FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, token))
}

func (m *MockAccounts) FindByEmailAndName(ctx context.Context, email, name string) (*account.Account, error) {
	return m.result(m.Called(ctx, email, name))
}

func (m *MockAccounts) FindByEmailAndNameTx(ctx context.Context, tx bun.IDB, email, name string) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, email, name))
}

func (m *MockAccounts) Create(ctx context.Context, record *account.Account) (*account.Account, error) {
	return m.result(m.Called(ctx, record))
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *account.Account) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, record))
}

func (m *MockAccounts) Save(ctx context.Context, record *account.Account) (*account.Account, error) {
	return m.result(m.Called(ctx, record))
}

func (m *MockAccounts) SaveTx(ctx context.Context, tx bun.IDB, record *account.Account) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, record))
}

func (m *MockAccounts) UpdateStatus(ctx context.Context, id uuid.UUID, status account.AccountStatus) (*account.Account, error) {
	return m.result(m.Called(ctx, id, status))
}

func (m *MockAccounts) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status account.AccountStatus) (*account.Account, error) {
	return m.result(m.Called(ctx, tx, id, status))
}

// MockActivitySink implements account.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event account.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockNotifier implements account.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to, subject, body string) bool {
	args := m.Called(ctx, to, subject, body)
	return args.Bool(0)
}

// recordingLogger implements account.Logger and keeps warnings around
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Debug(format string, args ...any) {}
func (l *recordingLogger) Info(format string, args ...any)  {}
func (l *recordingLogger) Error(format string, args ...any) {}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}
