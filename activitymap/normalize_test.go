package activitymap_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-account/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := account.ActivityEvent{
		ID:         "01HZX",
		EventType:  account.ActivityEventAccountStatusChanged,
		Actor:      account.ActorRef{ID: "ops-42", Type: "operator"},
		AccountID:  "acc-100",
		Email:      "a@x.com",
		FromStatus: account.AccountStatusActive,
		ToStatus:   account.AccountStatusSuspended,
		Metadata: map[string]any{
			"reason":                          "abuse",
			activitymap.MetadataKeyFromStatus: "spoofed",
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ID != "01HZX" {
		t.Fatalf("expected id 01HZX, got %q", out.ID)
	}
	if out.ActorID != "ops-42" {
		t.Fatalf("expected actor_id ops-42, got %q", out.ActorID)
	}
	if out.Verb != string(account.ActivityEventAccountStatusChanged) {
		t.Fatalf("expected verb %q, got %q", account.ActivityEventAccountStatusChanged, out.Verb)
	}
	if out.ObjectType != "account" || out.ObjectID != "acc-100" {
		t.Fatalf("expected account/acc-100, got %s/%s", out.ObjectType, out.ObjectID)
	}
	if out.Channel != "account" {
		t.Fatalf("expected channel account, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}

	if out.Metadata["reason"] != "abuse" {
		t.Fatalf("expected reason abuse, got %#v", out.Metadata["reason"])
	}
	if out.Metadata[activitymap.MetadataKeyActorType] != "operator" {
		t.Fatalf("expected actor_type operator, got %#v", out.Metadata[activitymap.MetadataKeyActorType])
	}
	if out.Metadata[activitymap.MetadataKeyEmail] != "a@x.com" {
		t.Fatalf("expected email a@x.com, got %#v", out.Metadata[activitymap.MetadataKeyEmail])
	}
	if out.Metadata[activitymap.MetadataKeyFromStatus] != "active" {
		t.Fatalf("expected from_status active, got %#v", out.Metadata[activitymap.MetadataKeyFromStatus])
	}
	if out.Metadata[activitymap.MetadataKeyToStatus] != "suspended" {
		t.Fatalf("expected to_status suspended, got %#v", out.Metadata[activitymap.MetadataKeyToStatus])
	}

	if event.Metadata[activitymap.MetadataKeyFromStatus] != "spoofed" || len(event.Metadata) != 2 {
		t.Fatalf("expected source metadata unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := account.ActivityEvent{
		EventType: account.ActivityEventPasswordResetSuccess,
		Actor:     account.ActorRef{Type: "account"},
		AccountID: "acc-200",
		Metadata: map[string]any{
			"request_id":                     "req-1",
			activitymap.MetadataKeyActorType: "existing",
		},
	}

	out := activitymap.Normalize(
		event,
		activitymap.WithChannel("security"),
		activitymap.WithObjectType("credential"),
		activitymap.WithClock(func() time.Time { return fixed }),
		activitymap.WithObjectIDResolver(func(e account.ActivityEvent) string {
			v, _ := e.Metadata["request_id"].(string)
			return v
		}),
	)

	if out.Channel != "security" {
		t.Fatalf("expected channel security, got %q", out.Channel)
	}
	if out.ObjectType != "credential" {
		t.Fatalf("expected object_type credential, got %q", out.ObjectType)
	}
	if out.ObjectID != "req-1" {
		t.Fatalf("expected object_id req-1, got %q", out.ObjectID)
	}
	if out.Metadata[activitymap.MetadataKeyActorType] != "existing" {
		t.Fatalf("expected existing actor_type preserved, got %#v", out.Metadata[activitymap.MetadataKeyActorType])
	}
	if !out.OccurredAt.Equal(fixed) {
		t.Fatalf("expected occurred_at from clock, got %v", out.OccurredAt)
	}
}

func TestNormalizeActorFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		event  account.ActivityEvent
		opts   []activitymap.Option
		expect string
	}{
		{
			name:   "uses actor id when present",
			event:  account.ActivityEvent{Actor: account.ActorRef{ID: "actor-1"}, AccountID: "acc-1"},
			expect: "actor-1",
		},
		{
			name:   "uses account id when actor id missing",
			event:  account.ActivityEvent{AccountID: "acc-2"},
			expect: "acc-2",
		},
		{
			name:   "uses default fallback",
			event:  account.ActivityEvent{},
			expect: "system",
		},
		{
			name:   "uses configured fallback",
			event:  account.ActivityEvent{},
			opts:   []activitymap.Option{activitymap.WithActorFallback("job")},
			expect: "job",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := activitymap.Normalize(tc.event, tc.opts...)
			if out.ActorID != tc.expect {
				t.Fatalf("expected actor_id %q, got %q", tc.expect, out.ActorID)
			}
		})
	}
}

type lineLogger struct {
	lines []string
}

func (l *lineLogger) Debug(string, ...any) {}
func (l *lineLogger) Warn(string, ...any)  {}
func (l *lineLogger) Error(string, ...any) {}
func (l *lineLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, strings.TrimPrefix(fmt.Sprintf(format, args...), "activity "))
}

func TestLogSinkWritesJSON(t *testing.T) {
	logger := &lineLogger{}
	sink := activitymap.NewLogSink(logger)

	err := sink.Record(context.Background(), account.ActivityEvent{
		EventType: account.ActivityEventAccountVerified,
		AccountID: "acc-3",
		Email:     "a@x.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logger.lines) != 1 {
		t.Fatalf("expected one line, got %d", len(logger.lines))
	}

	var rec activitymap.Record
	if err := json.Unmarshal([]byte(logger.lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", logger.lines[0], err)
	}
	if rec.Verb != string(account.ActivityEventAccountVerified) || rec.ObjectID != "acc-3" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestNilSinkIsNoop(t *testing.T) {
	var sink *activitymap.Sink
	if err := sink.Record(context.Background(), account.ActivityEvent{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
