package account

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	featureguard "github.com/goliatone/go-featuregate/gate/guard"
)

const (
	TextCodeSignupDisabled        = "SIGNUP_DISABLED"
	TextCodePasswordResetDisabled = "PASSWORD_RESET_DISABLED"
)

// ErrSignupDisabled is returned by Register when signup is switched off
var ErrSignupDisabled = errors.New("account registration is disabled", errors.CategoryAuthz).
	WithTextCode(TextCodeSignupDisabled).
	WithCode(errors.CodeForbidden)

// ErrPasswordResetDisabled is returned by the reset operations when the
// feature is switched off
var ErrPasswordResetDisabled = errors.New("password reset is disabled", errors.CategoryAuthz).
	WithTextCode(TextCodePasswordResetDisabled).
	WithCode(errors.CodeForbidden)

// StaticFeatureGate enables every feature except the listed keys
type StaticFeatureGate struct {
	disabled map[string]struct{}
}

var _ gate.FeatureGate = StaticFeatureGate{}

func NewStaticFeatureGate(disabled ...string) StaticFeatureGate {
	g := StaticFeatureGate{disabled: map[string]struct{}{}}
	for _, key := range disabled {
		if key = strings.TrimSpace(key); key != "" {
			g.disabled[key] = struct{}{}
		}
	}
	return g
}

func (g StaticFeatureGate) Enabled(_ context.Context, key string, _ ...gate.ResolveOption) (bool, error) {
	_, off := g.disabled[key]
	return !off, nil
}

func normalizeFeatureGateError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return err
	}

	return errors.Wrap(err, errors.CategoryAuthz, "feature gate check failed").
		WithCode(errors.CodeForbidden)
}

func (l *AccountLifecycle) requireSignup(ctx context.Context) error {
	if l.features == nil {
		return nil
	}
	return featureguard.Require(ctx, l.features, gate.FeatureUsersSignup,
		featureguard.WithDisabledError(ErrSignupDisabled),
		featureguard.WithErrorMapper(normalizeFeatureGateError),
	)
}

// requirePasswordReset checks the reset feature. Token checks and
// consumption also pass when only the finalize override is enabled, so
// links already sent keep working.
func (l *AccountLifecycle) requirePasswordReset(ctx context.Context, finalize bool) error {
	if l.features == nil {
		return nil
	}
	opts := []featureguard.Option{
		featureguard.WithDisabledError(ErrPasswordResetDisabled),
		featureguard.WithErrorMapper(normalizeFeatureGateError),
	}
	if finalize {
		opts = append(opts, featureguard.WithOverrides(gate.FeatureUsersPasswordResetFinalize))
	}
	return featureguard.Require(ctx, l.features, gate.FeatureUsersPasswordReset, opts...)
}
