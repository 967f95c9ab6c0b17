// Package activitymap flattens account activity events into a record
// shape suited for audit logs and downstream feeds.
package activitymap

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	account "github.com/goliatone/go-account"
)

const (
	MetadataKeyActorType  = "actor_type"
	MetadataKeyFromStatus = "from_status"
	MetadataKeyToStatus   = "to_status"
	MetadataKeyEmail      = "email"
)

const (
	defaultChannel    = "account"
	defaultObjectType = "account"
	defaultActorID    = "system"
)

// Record is the normalized activity shape
type Record struct {
	ID         string         `json:"id,omitempty"`
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel          string
	objectType       string
	actorFallback    string
	objectIDResolver func(account.ActivityEvent) string
	now              func() time.Time
}

// Normalize converts an account.ActivityEvent into a Record. The actor
// falls back to the account id and then to "system".
func Normalize(event account.ActivityEvent, opts ...Option) Record {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.Actor.ID),
		strings.TrimSpace(event.AccountID),
		options.actorFallback,
	)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now()
	}

	return Record{
		ID:         event.ID,
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   resolveObjectID(event, options.objectIDResolver),
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

func WithChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

func WithObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides how the object id is read from an event
func WithObjectIDResolver(resolver func(account.ActivityEvent) string) Option {
	return func(opts *normalizeOptions) {
		opts.objectIDResolver = resolver
	}
}

func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func WithClock(now func() time.Time) Option {
	return func(opts *normalizeOptions) {
		if now != nil {
			opts.now = now
		}
	}
}

// Sink adapts a record writer into an account.ActivitySink
type Sink struct {
	write func(context.Context, Record) error
	opts  []Option
}

var _ account.ActivitySink = (*Sink)(nil)

func NewSink(write func(context.Context, Record) error, opts ...Option) *Sink {
	return &Sink{write: write, opts: opts}
}

// NewLogSink writes one JSON line per event at info level
func NewLogSink(logger account.Logger, opts ...Option) *Sink {
	return NewSink(func(_ context.Context, rec Record) error {
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		logger.Info("activity %s", raw)
		return nil
	}, opts...)
}

func (s *Sink) Record(ctx context.Context, event account.ActivityEvent) error {
	if s == nil || s.write == nil {
		return nil
	}
	return s.write(ctx, Normalize(event, s.opts...))
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
}

func resolveObjectID(event account.ActivityEvent, resolver func(account.ActivityEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	return strings.TrimSpace(event.AccountID)
}

// normalizeMetadata never mutates the event metadata. Status keys always
// reflect the event, caller supplied values under those keys are replaced.
func normalizeMetadata(event account.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	set := func(key string, value string, overwrite bool) {
		if value == "" {
			return
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[key]; exists && !overwrite {
			return
		}
		metadata[key] = value
	}

	set(MetadataKeyActorType, strings.TrimSpace(event.Actor.Type), false)
	set(MetadataKeyEmail, event.Email, false)
	set(MetadataKeyFromStatus, string(event.FromStatus), true)
	set(MetadataKeyToStatus, string(event.ToStatus), true)

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
