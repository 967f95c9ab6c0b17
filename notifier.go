package account

import (
	"context"
	"sync"
)

// Notifier delivers a message to an address. It reports delivery as a
// value, the lifecycle never retries a failed send.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, to, subject, body string) bool

// Send implements Notifier.
func (f NotifierFunc) Send(ctx context.Context, to, subject, body string) bool {
	if f == nil {
		return false
	}
	return f(ctx, to, subject, body)
}

// LogNotifier prints messages instead of delivering them, useful for
// development setups without a mail server.
type LogNotifier struct {
	Logger Logger
}

func (n LogNotifier) Send(_ context.Context, to, subject, body string) bool {
	logger := n.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("to: %s", to)
	logger.Info("subject: %s", subject)
	logger.Info("%s", body)
	return true
}

// Message is a notification captured by RecordingNotifier
type Message struct {
	To      string
	Subject string
	Body    string
}

// RecordingNotifier keeps every message in memory and reports the
// configured outcome, handy for tests and dry runs.
type RecordingNotifier struct {
	mu       sync.Mutex
	Fail     bool
	messages []Message
}

func (n *RecordingNotifier) Send(_ context.Context, to, subject, body string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail {
		return false
	}
	n.messages = append(n.messages, Message{To: to, Subject: subject, Body: body})
	return true
}

// Messages returns a copy of the delivered messages
func (n *RecordingNotifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.messages))
	copy(out, n.messages)
	return out
}

// Last returns the most recent message
func (n *RecordingNotifier) Last() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return Message{}, false
	}
	return n.messages[len(n.messages)-1], true
}
