package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ResendVerification issues a fresh verification token for a pending
// account and sends it again. Verified or withdrawn accounts return false,
// unknown emails return ErrAccountNotFound.
func (l *AccountLifecycle) ResendVerification(ctx context.Context, email string) (bool, error) {
	if err := guard(ctx, "verification resend"); err != nil {
		return false, err
	}
	return l.resendVerification(ctx, email)
}

func (l *AccountLifecycle) resendVerification(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	token, err := l.tokens.Generate()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification token")
	}

	var acc *Account
	err = l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		acc, err = l.repo.Accounts().FindByEmailTx(ctx, tx, email)
		if err != nil {
			if IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
		}

		if acc.EmailVerified || !acc.IsPending() {
			return rollbackWith("account is not pending verification")
		}

		acc.VerificationToken = token
		if acc, err = l.repo.Accounts().SaveTx(ctx, tx, acc); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verification token")
		}

		link := l.links.VerificationLink(acc.VerificationToken)
		return l.deliver(ctx, acc.Email, SubjectVerification, TemplateVerification, verificationMessageData(acc, link))
	})

	if err != nil {
		if vf, ok := asValueFailure(err); ok {
			l.logger.Info("verification resend for %s not completed: %s", NormalizeEmail(email), vf.reason)
			return false, nil
		}
		return false, resultError(err, "verification resend transaction failed")
	}

	l.record(ctx, ActivityEvent{
		EventType: ActivityEventVerificationResent,
		Actor:     accountActor(acc),
		AccountID: acc.ID.String(),
		Email:     acc.Email,
	})

	return true, nil
}
