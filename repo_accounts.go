package account

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

const pgUniqueViolation = "23505"

// ErrRecordNotFound is returned by the repository when a lookup has no match
var ErrRecordNotFound = goerrors.New("account record not found", goerrors.CategoryNotFound).
	WithTextCode("RECORD_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrDuplicateAccount is returned when inserting an email that already exists
var ErrDuplicateAccount = goerrors.New("account email already registered", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_ACCOUNT").
	WithCode(goerrors.CodeConflict)

// Accounts is the persistence capability consumed by the lifecycle
type Accounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)

	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)
	FindByResetToken(ctx context.Context, token string) (*Account, error)
	FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error)
	FindByEmailAndName(ctx context.Context, email, name string) (*Account, error)
	FindByEmailAndNameTx(ctx context.Context, tx bun.IDB, email, name string) (*Account, error)

	Create(ctx context.Context, record *Account) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	Save(ctx context.Context, record *Account) (*Account, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus) (*Account, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status AccountStatus) (*Account, error)
}

type accounts struct {
	db  *bun.DB
	now func() time.Time
}

var _ Accounts = (*accounts)(nil)

type AccountsOption func(*accounts)

// WithAccountsClock injects the clock used for updated_at.
func WithAccountsClock(clock func() time.Time) AccountsOption {
	return func(a *accounts) {
		if clock != nil {
			a.now = clock
		}
	}
}

func NewAccountsRepository(db *bun.DB, opts ...AccountsOption) Accounts {
	repo := &accounts{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *accounts) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *accounts) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	if id == uuid.Nil {
		return nil, ErrRecordNotFound
	}
	return a.findOne(ctx, tx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	})
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *accounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrRecordNotFound
	}
	return a.findOne(ctx, tx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.email = ?", email)
	})
}

func (a *accounts) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return a.FindByVerificationTokenTx(ctx, a.db, token)
}

// FindByVerificationTokenTx never matches the empty token, a cleared
// column must not be usable as a bearer value.
func (a *accounts) FindByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrRecordNotFound
	}
	return a.findOne(ctx, tx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.verification_token = ?", token)
	})
}

func (a *accounts) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	return a.FindByResetTokenTx(ctx, a.db, token)
}

func (a *accounts) FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrRecordNotFound
	}
	return a.findOne(ctx, tx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.reset_token = ?", token)
	})
}

func (a *accounts) FindByEmailAndName(ctx context.Context, email, name string) (*Account, error) {
	return a.FindByEmailAndNameTx(ctx, a.db, email, name)
}

func (a *accounts) FindByEmailAndNameTx(ctx context.Context, tx bun.IDB, email, name string) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrRecordNotFound
	}
	return a.findOne(ctx, tx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("?TableAlias.email = ?", email).
			Where("?TableAlias.name = ?", strings.TrimSpace(name))
	})
}

func (a *accounts) Create(ctx context.Context, record *Account) (*Account, error) {
	return a.CreateTx(ctx, a.db, record)
}

// CreateTx inserts a new account. The unique index on email is what
// serializes concurrent registrations, a violation is reported as
// ErrDuplicateAccount.
func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	a.prepareDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Save(ctx context.Context, record *Account) (*Account, error) {
	return a.SaveTx(ctx, a.db, record)
}

// SaveTx upserts by primary key and returns the persisted record.
func (a *accounts) SaveTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	a.prepareDefaults(record)
	record.touch(a.now().UTC())

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("name = EXCLUDED.name").
		Set("password_hash = EXCLUDED.password_hash").
		Set("is_email_verified = EXCLUDED.is_email_verified").
		Set("verification_token = EXCLUDED.verification_token").
		Set("verified_at = EXCLUDED.verified_at").
		Set("status = EXCLUDED.status").
		Set("reset_token = EXCLUDED.reset_token").
		Set("reset_token_expires_at = EXCLUDED.reset_token_expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	return a.GetByIDTx(ctx, tx, record.ID)
}

func (a *accounts) UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus) (*Account, error) {
	return a.UpdateStatusTx(ctx, a.db, id, status)
}

func (a *accounts) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status AccountStatus) (*Account, error) {
	if !status.Valid() {
		return nil, ErrInvalidAccountStatus
	}

	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", a.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrRecordNotFound
	}

	return a.GetByIDTx(ctx, tx, id)
}

func (a *accounts) findOne(ctx context.Context, tx bun.IDB, where func(*bun.SelectQuery) *bun.SelectQuery) (*Account, error) {
	record := &Account{}
	err := where(tx.NewSelect().Model(record)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

func (a *accounts) prepareDefaults(record *Account) {
	if record == nil {
		return
	}

	record.EnsureStatus()
	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.RegisteredAt.IsZero() {
		record.RegisteredAt = a.now().UTC()
	}
}

// IsRecordNotFound reports whether the repository found no match
func IsRecordNotFound(err error) bool {
	return err != nil && (stderrors.Is(err, ErrRecordNotFound) || stderrors.Is(err, sql.ErrNoRows))
}

// IsUniqueViolation detects unique constraint failures for postgres (pgx)
// and both sqlite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if stderrors.Is(err, ErrDuplicateAccount) {
		return true
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// NormalizeEmail trims and lower cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
