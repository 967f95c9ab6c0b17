package account_test

import (
	"context"
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
)

func TestRecordingNotifier(t *testing.T) {
	n := &account.RecordingNotifier{}
	ctx := context.Background()

	_, ok := n.Last()
	assert.False(t, ok)

	assert.True(t, n.Send(ctx, "a@example.com", "s1", "b1"))
	assert.True(t, n.Send(ctx, "b@example.com", "s2", "b2"))

	last, ok := n.Last()
	assert.True(t, ok)
	assert.Equal(t, account.Message{To: "b@example.com", Subject: "s2", Body: "b2"}, last)
	assert.Len(t, n.Messages(), 2)

	n.Fail = true
	assert.False(t, n.Send(ctx, "c@example.com", "s3", "b3"))
	assert.Len(t, n.Messages(), 2)
}

func TestNotifierFunc(t *testing.T) {
	var to string
	n := account.NotifierFunc(func(_ context.Context, addr, _, _ string) bool {
		to = addr
		return true
	})

	assert.True(t, n.Send(context.Background(), "x@example.com", "s", "b"))
	assert.Equal(t, "x@example.com", to)

	var nilFunc account.NotifierFunc
	assert.False(t, nilFunc.Send(context.Background(), "x@example.com", "s", "b"))
}

func TestLogNotifier(t *testing.T) {
	n := account.LogNotifier{Logger: &recordingLogger{}}
	assert.True(t, n.Send(context.Background(), "x@example.com", "s", "b"))
}
