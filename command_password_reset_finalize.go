package account

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Token    string `json:"token" example:"kq3Zb1T9lH0n1mN2c3V4b5N6m7Q8w9E0r1T2y3U4i5o" doc:"Reset password token"`
	Password string `json:"password" example:"some_secret_word" doc:"New password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "account.password_reset.finalize" }

// Validate checks the new password against DefaultPasswordPolicy
func (p FinalizePasswordResetMessage) Validate() error {
	return p.ValidateWith(DefaultPasswordPolicy)
}

// ValidateWith checks the new password against policy
func (p FinalizePasswordResetMessage) ValidateWith(policy PasswordPolicy) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Password, policy.rules()...),
	)
}

// ResetPassword consumes a reset token. The checks run in order: unknown
// token is ErrAccountNotFound, a missing or elapsed window is
// ErrInvalidResetWindow, then the new password is validated. The token is
// cleared on success and can not be used again.
func (l *AccountLifecycle) ResetPassword(ctx context.Context, msg FinalizePasswordResetMessage) (bool, error) {
	if err := guard(ctx, "password reset finalization"); err != nil {
		return false, err
	}
	if err := l.requirePasswordReset(ctx, true); err != nil {
		return false, err
	}
	return l.resetPassword(ctx, msg)
}

func (l *AccountLifecycle) resetPassword(ctx context.Context, msg FinalizePasswordResetMessage) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var acc *Account

	err := l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		acc, err = l.repo.Accounts().FindByResetTokenTx(ctx, tx, msg.Token)
		if err != nil {
			if IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset token")
		}

		if !acc.ResetWindowOpen(l.timestamp()) {
			return withMetadata(ErrInvalidResetWindow, map[string]any{
				"account_id": acc.ID.String(),
			})
		}

		if err := msg.ValidateWith(l.passwords); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		hash, err := l.hasher.HashPassword(msg.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		acc.PasswordHash = hash
		acc.ClearResetToken()

		if acc, err = l.repo.Accounts().SaveTx(ctx, tx, acc); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account password")
		}
		return nil
	})

	if err != nil {
		if IsInvalidResetWindow(err) {
			l.record(ctx, ActivityEvent{
				EventType: ActivityEventPasswordResetWindowError,
				Actor:     accountActor(acc),
				AccountID: accountID(acc),
			})
		}
		return false, resultError(err, "failed to finalize password reset")
	}

	l.logger.Info("password reset for account %s", acc.ID)
	l.record(ctx, ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		Actor:     accountActor(acc),
		AccountID: acc.ID.String(),
		Email:     acc.Email,
	})

	return true, nil
}
