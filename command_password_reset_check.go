package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// CheckResetToken reports whether token can still be used to reset a
// password. An unknown token is false. A known token whose window is
// missing or over returns ErrInvalidResetWindow.
func (l *AccountLifecycle) CheckResetToken(ctx context.Context, token string) (bool, error) {
	if err := guard(ctx, "password reset check"); err != nil {
		return false, err
	}
	if err := l.requirePasswordReset(ctx, true); err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	acc, err := l.repo.Accounts().FindByResetToken(ctx, token)
	if err != nil {
		if IsRecordNotFound(err) {
			return false, nil
		}
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if !acc.ResetWindowOpen(l.timestamp()) {
		return false, ErrInvalidResetWindow
	}

	return true, nil
}
