package account

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries a new registration
type RegisterAccountMessage struct {
	Email    string `json:"email" example:"pepe.rone@example.com" doc:"Account email"`
	Name     string `json:"name" example:"Pepe Rone" doc:"Account holder name"`
	Password string `json:"password" example:"some_secret_word" doc:"Password"`
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// Validate will run validation rules using DefaultPasswordPolicy
func (e RegisterAccountMessage) Validate() error {
	return e.ValidateWith(DefaultPasswordPolicy)
}

// ValidateWith runs validation rules with the given password policy
func (e RegisterAccountMessage) ValidateWith(policy PasswordPolicy) error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&e.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Password, policy.rules()...),
	)
}

// Register creates a pending account and sends the verification message.
// It returns false when the input is rejected, the email is already
// registered or the message could not be delivered. Nothing is persisted
// in those cases.
func (l *AccountLifecycle) Register(ctx context.Context, msg RegisterAccountMessage) (bool, error) {
	if err := guard(ctx, "account registration"); err != nil {
		return false, err
	}
	if err := l.requireSignup(ctx); err != nil {
		return false, err
	}
	return l.register(ctx, msg)
}

func (l *AccountLifecycle) register(ctx context.Context, msg RegisterAccountMessage) (bool, error) {
	msg.Email = NormalizeEmail(msg.Email)
	msg.Name = strings.TrimSpace(msg.Name)

	if err := msg.ValidateWith(l.passwords); err != nil {
		l.logger.Info("registration for %s rejected: %s", msg.Email, err)
		l.record(ctx, ActivityEvent{
			EventType: ActivityEventRegistrationFailed,
			Email:     msg.Email,
			Metadata:  map[string]any{"reason": "invalid input", "fields": err.Error()},
		})
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	hash, err := l.hasher.HashPassword(msg.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return false, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	token, err := l.tokens.Generate()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification token")
	}

	acc := &Account{
		Email:             msg.Email,
		Name:              msg.Name,
		PasswordHash:      hash,
		EmailVerified:     false,
		VerificationToken: token,
		Status:            AccountStatusPending,
		RegisteredAt:      l.timestamp(),
	}

	if l.hashidIDs {
		id, err := hashid.NewUUID(msg.Email)
		if err != nil {
			return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive account id")
		}
		acc.ID = id
	}

	err = l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := l.repo.Accounts().FindByEmailTx(ctx, tx, acc.Email)
		switch {
		case err == nil:
			return rollbackWith("email already registered")
		case !IsRecordNotFound(err):
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
		}

		if acc, err = l.repo.Accounts().CreateTx(ctx, tx, acc); err != nil {
			if IsUniqueViolation(err) {
				return rollbackWith("email already registered")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
		}

		link := l.links.VerificationLink(acc.VerificationToken)
		return l.deliver(ctx, acc.Email, SubjectVerification, TemplateVerification, verificationMessageData(acc, link))
	})

	if err != nil {
		if vf, ok := asValueFailure(err); ok {
			l.logger.Info("registration for %s not completed: %s", msg.Email, vf.reason)
			l.record(ctx, ActivityEvent{
				EventType: ActivityEventRegistrationFailed,
				Email:     msg.Email,
				Metadata:  map[string]any{"reason": vf.reason},
			})
			return false, nil
		}
		return false, resultError(err, "account registration transaction failed")
	}

	l.logger.Info("registered account %s", acc.ID)
	l.record(ctx, ActivityEvent{
		EventType: ActivityEventAccountRegistered,
		Actor:     accountActor(acc),
		AccountID: acc.ID.String(),
		Email:     acc.Email,
		ToStatus:  acc.Status,
	})

	return true, nil
}
