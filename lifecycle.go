package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
)

// DefaultResetTokenTTL is the validity window of a password reset token
const DefaultResetTokenTTL = 2 * time.Hour

// DefaultOperationTimeout bounds every lifecycle operation
const DefaultOperationTimeout = 10 * time.Second

// AccountLifecycle orchestrates registration, email verification, the
// authentication gate and password recovery.
//
// Operations report expected outcomes (email taken, unknown verification
// token, notification not delivered) as a false result with a nil error.
// A non nil error is either one of the package error values, carrying a
// text code meant for the end user, or an infrastructure fault.
//
// Persistence and notification share a transaction: when the notifier
// reports a failure the write is rolled back.
type AccountLifecycle struct {
	repo              RepositoryManager
	notifier          Notifier
	hasher            PasswordHasher
	tokens            TokenGenerator
	renderer          MessageRenderer
	links             LinkBuilder
	states            AccountStateMachine
	activity          ActivitySink
	logger            Logger
	now               func() time.Time
	resetTTL          time.Duration
	timeout           time.Duration
	resetRequiresName bool
	hashidIDs         bool
	features          gate.FeatureGate
	passwords         PasswordPolicy
}

var _ IdentityProvider = (*AccountLifecycle)(nil)

// Option configures an AccountLifecycle
type Option func(*AccountLifecycle)

// WithClock injects the clock used for timestamps and reset windows
func WithClock(clock func() time.Time) Option {
	return func(l *AccountLifecycle) {
		if clock != nil {
			l.now = clock
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(l *AccountLifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithActivitySink sets the sink receiving lifecycle audit events
func WithActivitySink(sink ActivitySink) Option {
	return func(l *AccountLifecycle) {
		l.activity = normalizeActivitySink(sink)
	}
}

func WithPasswordHasher(hasher PasswordHasher) Option {
	return func(l *AccountLifecycle) {
		if hasher != nil {
			l.hasher = hasher
		}
	}
}

func WithTokenGenerator(gen TokenGenerator) Option {
	return func(l *AccountLifecycle) {
		if gen != nil {
			l.tokens = gen
		}
	}
}

// WithResetTokenTTL overrides the two hour reset window
func WithResetTokenTTL(ttl time.Duration) Option {
	return func(l *AccountLifecycle) {
		if ttl > 0 {
			l.resetTTL = ttl
		}
	}
}

// WithResetRequiresName controls whether a reset request must match the
// account name as well as the email.
func WithResetRequiresName(required bool) Option {
	return func(l *AccountLifecycle) {
		l.resetRequiresName = required
	}
}

// WithHashidIDs derives account ids from the email address
func WithHashidIDs(enabled bool) Option {
	return func(l *AccountLifecycle) {
		l.hashidIDs = enabled
	}
}

func WithMessageRenderer(renderer MessageRenderer) Option {
	return func(l *AccountLifecycle) {
		if renderer != nil {
			l.renderer = renderer
		}
	}
}

// WithBaseURL sets the base of the links sent in notifications
func WithBaseURL(baseURL string) Option {
	return func(l *AccountLifecycle) {
		l.links.BaseURL = baseURL
	}
}

func WithLinkBuilder(links LinkBuilder) Option {
	return func(l *AccountLifecycle) {
		l.links = links
	}
}

// WithStateMachine replaces the state machine used by Suspend, Reinstate
// and Withdraw.
func WithStateMachine(sm AccountStateMachine) Option {
	return func(l *AccountLifecycle) {
		if sm != nil {
			l.states = sm
		}
	}
}

// WithFeatureGate lets signup and password reset be switched off
func WithFeatureGate(features gate.FeatureGate) Option {
	return func(l *AccountLifecycle) {
		l.features = features
	}
}

// WithOperationTimeout overrides the per operation timeout
func WithOperationTimeout(timeout time.Duration) Option {
	return func(l *AccountLifecycle) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// NewAccountLifecycle creates a lifecycle over repo that delivers
// messages through notifier.
func NewAccountLifecycle(repo RepositoryManager, notifier Notifier, opts ...Option) *AccountLifecycle {
	l := &AccountLifecycle{
		repo:              repo,
		notifier:          notifier,
		hasher:            NewBcryptHasher(passwordHashCost()),
		tokens:            RandomTokenGenerator{Bytes: DefaultTokenBytes},
		renderer:          DefaultMessageRenderer(),
		links:             DefaultLinkBuilder(""),
		activity:          noopActivitySink{},
		logger:            defLogger{},
		now:               time.Now,
		resetTTL:          DefaultResetTokenTTL,
		timeout:           DefaultOperationTimeout,
		resetRequiresName: true,
		passwords:         DefaultPasswordPolicy,
	}

	if l.notifier == nil {
		l.notifier = LogNotifier{}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	if l.states == nil {
		l.states = NewAccountStateMachine(
			repo.Accounts(),
			WithStateMachineClock(l.now),
			WithStateMachineActivitySink(l.activity),
			WithStateMachineLogger(l.logger),
			WithStateMachineHookErrorHandler(func(_ context.Context, _ TransitionHookPhase, err error, _ TransitionContext) error {
				return err
			}),
		)
	}

	return l
}

// NewAccountLifecycleFromConfig applies cfg before opts
func NewAccountLifecycleFromConfig(cfg Config, repo RepositoryManager, notifier Notifier, opts ...Option) *AccountLifecycle {
	base := []Option{}
	if cfg != nil {
		base = append(base,
			WithBaseURL(cfg.GetBaseURL()),
			WithResetTokenTTL(cfg.GetResetTokenTTL()),
			WithResetRequiresName(cfg.GetResetRequiresName()),
			WithHashidIDs(cfg.GetHashidIDs()),
		)
		if cost := cfg.GetBcryptCost(); cost > 0 {
			base = append(base, WithPasswordHasher(NewBcryptHasher(cost)))
		}
		if min := cfg.GetPasswordMinLength(); min > 0 {
			base = append(base, WithPasswordPolicy(PasswordPolicy{MinLength: min, MaxLength: MaxPasswordLength}))
		}
	}
	return NewAccountLifecycle(repo, notifier, append(base, opts...)...)
}

// StateMachine returns the machine used for external status changes
func (l *AccountLifecycle) StateMachine() AccountStateMachine {
	return l.states
}

// valueFailure aborts a transaction for an expected outcome that is
// reported to the caller as false.
type valueFailure struct {
	reason string
}

func (v *valueFailure) Error() string {
	return v.reason
}

func rollbackWith(reason string) error {
	return &valueFailure{reason: reason}
}

func asValueFailure(err error) (*valueFailure, bool) {
	var vf *valueFailure
	if goerrors.As(err, &vf) {
		return vf, true
	}
	return nil, false
}

// guard returns an operation error when ctx is already done
func guard(ctx context.Context, operation string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during "+operation,
		)
	default:
		return nil
	}
}

// resultError keeps package errors intact and wraps anything else
func resultError(err error, message string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message)
}

func (l *AccountLifecycle) record(ctx context.Context, event ActivityEvent) {
	recordActivity(ctx, l.activity, l.logger, l.now, event)
}

func (l *AccountLifecycle) timestamp() time.Time {
	return l.now().UTC()
}

func (l *AccountLifecycle) deliver(ctx context.Context, to, subject, template string, data map[string]any) error {
	body, err := l.renderer.Render(template, data)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render notification")
	}

	if !l.notifier.Send(ctx, to, subject, body) {
		return rollbackWith("notification delivery failed")
	}

	return nil
}

func accountActor(acc *Account) ActorRef {
	if acc == nil {
		return ActorRef{Type: "anonymous"}
	}
	return ActorRef{ID: acc.ID.String(), Type: "account"}
}
