package account

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// PasswordResetRequestMessage starts a password reset
type PasswordResetRequestMessage struct {
	Email string `json:"email" example:"pepe.rone@example.com" doc:"Account email"`
	Name  string `json:"name" example:"Pepe Rone" doc:"Account holder name"`
}

func (p PasswordResetRequestMessage) Type() string { return "account.password_reset.request" }

// Validate will run validation rules, the name is only required when
// requireName is set.
func (p PasswordResetRequestMessage) Validate(requireName bool) error {
	nameRules := []validation.Rule{validation.Length(0, 200)}
	if requireName {
		nameRules = append(nameRules, validation.Required)
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Name, nameRules...),
	)
}

// RequestPasswordReset issues a reset token valid for the reset window and
// notifies the account. An unmatched email (and name) returns
// ErrAccountNotFound. A delivery failure returns false and the token is
// discarded.
func (l *AccountLifecycle) RequestPasswordReset(ctx context.Context, msg PasswordResetRequestMessage) (bool, error) {
	if err := guard(ctx, "password reset request"); err != nil {
		return false, err
	}
	if err := l.requirePasswordReset(ctx, false); err != nil {
		return false, err
	}
	return l.requestPasswordReset(ctx, msg)
}

func (l *AccountLifecycle) requestPasswordReset(ctx context.Context, msg PasswordResetRequestMessage) (bool, error) {
	msg.Email = NormalizeEmail(msg.Email)
	msg.Name = strings.TrimSpace(msg.Name)

	if err := msg.Validate(l.resetRequiresName); err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	token, err := l.tokens.Generate()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	var acc *Account
	err = l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if l.resetRequiresName {
			acc, err = l.repo.Accounts().FindByEmailAndNameTx(ctx, tx, msg.Email, msg.Name)
		} else {
			acc, err = l.repo.Accounts().FindByEmailTx(ctx, tx, msg.Email)
		}
		if err != nil {
			if IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		acc.ResetToken = token
		acc.ResetTokenExpiresAt = ExpiresAt(l.timestamp(), l.resetTTL)

		if acc, err = l.repo.Accounts().SaveTx(ctx, tx, acc); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
		}

		link := l.links.PasswordResetLink(acc.ResetToken)
		return l.deliver(ctx, acc.Email, SubjectPasswordReset, TemplatePasswordReset, passwordResetMessageData(acc, link))
	})

	if err != nil {
		if vf, ok := asValueFailure(err); ok {
			l.logger.Warn("password reset for %s not completed: %s", msg.Email, vf.reason)
			l.record(ctx, ActivityEvent{
				EventType: ActivityEventPasswordResetNotifyFail,
				Actor:     accountActor(acc),
				AccountID: accountID(acc),
				Email:     msg.Email,
				Metadata:  map[string]any{"reason": vf.reason},
			})
			return false, nil
		}
		return false, resultError(err, "failed to initialize password reset")
	}

	l.record(ctx, ActivityEvent{
		EventType: ActivityEventPasswordResetRequested,
		Actor:     accountActor(acc),
		AccountID: acc.ID.String(),
		Email:     acc.Email,
		Metadata:  map[string]any{"expires_at": acc.ResetTokenExpiresAt},
	})

	return true, nil
}

func accountID(acc *Account) string {
	if acc == nil {
		return ""
	}
	return acc.ID.String()
}
