package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// VerifyEmail consumes a verification token and activates the account.
// Unknown tokens and already verified accounts return false.
func (l *AccountLifecycle) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if err := guard(ctx, "email verification"); err != nil {
		return false, err
	}
	return l.verifyEmail(ctx, token)
}

func (l *AccountLifecycle) verifyEmail(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var acc *Account
	var from AccountStatus

	err := l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		acc, err = l.repo.Accounts().FindByVerificationTokenTx(ctx, tx, token)
		if err != nil {
			if IsRecordNotFound(err) {
				return rollbackWith("unknown verification token")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification token")
		}

		if acc.EmailVerified {
			return rollbackWith("email already verified")
		}

		// a withdrawn pending account must stay withdrawn
		if !acc.IsPending() {
			return rollbackWith("account is not pending verification")
		}

		from = acc.Status
		acc.MarkVerified(l.timestamp())
		acc.VerificationToken = ""

		if acc, err = l.repo.Accounts().SaveTx(ctx, tx, acc); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verified account")
		}
		return nil
	})

	if err != nil {
		if vf, ok := asValueFailure(err); ok {
			l.logger.Debug("email verification rejected: %s", vf.reason)
			return false, nil
		}
		return false, resultError(err, "email verification transaction failed")
	}

	l.logger.Info("verified account %s", acc.ID)
	l.record(ctx, ActivityEvent{
		EventType:  ActivityEventAccountVerified,
		Actor:      accountActor(acc),
		AccountID:  acc.ID.String(),
		Email:      acc.Email,
		FromStatus: from,
		ToStatus:   acc.Status,
	})

	return true, nil
}
