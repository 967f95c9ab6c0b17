package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// CheckAuthenticatable runs the authentication gate for identifier.
// The first failing check wins: ErrAccountNotFound, ErrEmailNotVerified,
// ErrAccountSuspended, ErrAccountWithdrawn. An active account is returned
// ready for credential comparison.
func (l *AccountLifecycle) CheckAuthenticatable(ctx context.Context, identifier string) (*Account, error) {
	if err := guard(ctx, "authentication gate"); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	acc, err := l.repo.Accounts().FindByEmail(ctx, identifier)
	if err != nil {
		if IsRecordNotFound(err) {
			l.rejected(ctx, nil, identifier, ErrAccountNotFound)
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during authentication")
	}

	if err := gateError(acc); err != nil {
		l.rejected(ctx, acc, identifier, err)
		return nil, err
	}

	l.record(ctx, ActivityEvent{
		EventType: ActivityEventGatePassed,
		Actor:     accountActor(acc),
		AccountID: acc.ID.String(),
		Email:     acc.Email,
	})

	return acc, nil
}

// gateError maps a status onto its gate failure. Every status must be
// listed here.
func gateError(acc *Account) error {
	switch acc.Status {
	case AccountStatusPending:
		return ErrEmailNotVerified
	case AccountStatusSuspended:
		return ErrAccountSuspended
	case AccountStatusWithdrawn:
		return ErrAccountWithdrawn
	case AccountStatusActive:
		if !acc.EmailVerified {
			return ErrEmailNotVerified
		}
		return nil
	default:
		return ErrInvalidAccountStatus
	}
}

func (l *AccountLifecycle) rejected(ctx context.Context, acc *Account, identifier string, err error) {
	l.logger.Debug("authentication gate rejected %s: %s", NormalizeEmail(identifier), TextCodeOf(err))
	l.record(ctx, ActivityEvent{
		EventType: ActivityEventGateRejected,
		Actor:     accountActor(acc),
		AccountID: accountID(acc),
		Email:     NormalizeEmail(identifier),
		Metadata:  map[string]any{"code": TextCodeOf(err)},
	})
}

// VerifyIdentity passes identifier through the gate and compares password
// against the stored hash.
func (l *AccountLifecycle) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	acc, err := l.CheckAuthenticatable(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := l.hasher.ComparePasswordAndHash(password, acc.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return newAccountIdentity(acc), nil
}

// FindIdentityByIdentifier returns the identity of an account that passes
// the gate, without checking credentials.
func (l *AccountLifecycle) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	acc, err := l.CheckAuthenticatable(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return newAccountIdentity(acc), nil
}

type accountIdentity struct {
	id     string
	email  string
	name   string
	status AccountStatus
}

func newAccountIdentity(acc *Account) accountIdentity {
	return accountIdentity{
		id:     acc.ID.String(),
		email:  acc.Email,
		name:   acc.Name,
		status: acc.Status,
	}
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Email() string {
	return a.email
}

func (a accountIdentity) Name() string {
	return a.name
}

func (a accountIdentity) Status() AccountStatus {
	return a.status
}

var _ Identity = accountIdentity{}
