package account

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	TextCodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	TextCodeAccountSuspended     = "ACCOUNT_SUSPENDED"
	TextCodeAccountWithdrawn     = "ACCOUNT_WITHDRAWN"
	TextCodeInvalidResetWindow   = "INVALID_RESET_WINDOW"
	TextCodeInvalidAccountStatus = "INVALID_ACCOUNT_STATUS"
	TextCodeInvalidCreds         = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
	TextCodeInvalidTransition    = "INVALID_ACCOUNT_STATE_TRANSITION"
	TextCodeTerminalState        = "TERMINAL_ACCOUNT_STATE"
)

// ErrAccountNotFound is returned when an identity lookup or a reset token
// lookup does not match any account
var ErrAccountNotFound = errors.New("account information does not exist", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrEmailNotVerified gate failure for pending accounts
var ErrEmailNotVerified = errors.New("email verification has not been completed", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeUnauthorized)

// ErrAccountSuspended gate failure for suspended accounts
var ErrAccountSuspended = errors.New("account has been suspended", errors.CategoryAuth).
	WithTextCode(TextCodeAccountSuspended).
	WithCode(errors.CodeForbidden)

// ErrAccountWithdrawn gate failure for withdrawn accounts
var ErrAccountWithdrawn = errors.New("account has been withdrawn", errors.CategoryAuth).
	WithTextCode(TextCodeAccountWithdrawn).
	WithCode(errors.CodeForbidden)

// ErrInvalidResetWindow is returned when a reset token exists but its
// expiry is missing or already passed
var ErrInvalidResetWindow = errors.New("reset token is not within a valid time window", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidResetWindow).
	WithCode(errors.CodeBadRequest)

// ErrInvalidAccountStatus is returned for a persisted status outside the known set
var ErrInvalidAccountStatus = errors.New("account status is unknown", errors.CategoryInternal).
	WithTextCode(TextCodeInvalidAccountStatus).
	WithCode(errors.CodeInternal)

// ErrMismatchedHashAndPassword credentials do not match
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString we refuse to hash empty passwords
var ErrNoEmptyString = errors.New("password can not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// TextCodeOf returns the text code of a rich error, or an empty string
func TextCodeOf(err error) string {
	if err == nil {
		return ""
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// IsAccountNotFound checks for ErrAccountNotFound
func IsAccountNotFound(err error) bool {
	return TextCodeOf(err) == TextCodeAccountNotFound
}

// IsInvalidResetWindow checks for ErrInvalidResetWindow
func IsInvalidResetWindow(err error) bool {
	return TextCodeOf(err) == TextCodeInvalidResetWindow
}

// IsGateError reports whether err is one of the authentication gate failures
func IsGateError(err error) bool {
	switch TextCodeOf(err) {
	case TextCodeAccountNotFound,
		TextCodeEmailNotVerified,
		TextCodeAccountSuspended,
		TextCodeAccountWithdrawn:
		return true
	default:
		return false
	}
}

// withMetadata clones a package error before attaching metadata so the
// shared values are never mutated.
func withMetadata(base *errors.Error, metadata map[string]any) *errors.Error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	return clone.WithMetadata(metadata)
}
