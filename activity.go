package account

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventAccountRegistered        ActivityEventType = "account.registered"
	ActivityEventRegistrationFailed       ActivityEventType = "account.registration.failed"
	ActivityEventAccountVerified          ActivityEventType = "account.verified"
	ActivityEventVerificationResent       ActivityEventType = "account.verification.resent"
	ActivityEventAccountStatusChanged     ActivityEventType = "account.status.changed"
	ActivityEventGatePassed               ActivityEventType = "auth.gate.passed"
	ActivityEventGateRejected             ActivityEventType = "auth.gate.rejected"
	ActivityEventPasswordResetRequested   ActivityEventType = "auth.password.reset.requested"
	ActivityEventPasswordResetNotifyFail  ActivityEventType = "auth.password.reset.notify_failed"
	ActivityEventPasswordResetSuccess     ActivityEventType = "auth.password.reset"
	ActivityEventPasswordResetWindowError ActivityEventType = "auth.password.reset.invalid_window"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	ID         string
	EventType  ActivityEventType
	Actor      ActorRef
	AccountID  string
	Email      string
	FromStatus AccountStatus
	ToStatus   AccountStatus
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiActivitySink fans events out to every sink, the first error is
// returned after all sinks ran.
type MultiActivitySink []ActivitySink

func (m MultiActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

var (
	eventEntropyMu sync.Mutex
	eventEntropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewActivityID returns a lexicographically sortable event identifier.
func NewActivityID(at time.Time) string {
	eventEntropyMu.Lock()
	defer eventEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), eventEntropy).String()
}

// recordActivity fills defaults and sends the event to the sink, sink
// failures are logged and never fail the operation.
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, now func() time.Time, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = now()
	}

	if event.ID == "" {
		event.ID = NewActivityID(event.OccurredAt)
	}

	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		logger.Warn("activity sink error for %s: %v", event.EventType, err)
	}
}
