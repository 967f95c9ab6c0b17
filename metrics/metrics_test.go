package metrics_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-account/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Record(ctx, account.ActivityEvent{EventType: account.ActivityEventAccountRegistered}))
	require.NoError(t, c.Record(ctx, account.ActivityEvent{EventType: account.ActivityEventAccountRegistered}))
	require.NoError(t, c.Record(ctx, account.ActivityEvent{
		EventType:  account.ActivityEventAccountStatusChanged,
		FromStatus: account.AccountStatusActive,
		ToStatus:   account.AccountStatusSuspended,
	}))
	require.NoError(t, c.Record(ctx, account.ActivityEvent{
		EventType: account.ActivityEventGateRejected,
		Metadata:  map[string]any{"code": account.TextCodeAccountSuspended},
	}))
	require.NoError(t, c.Record(ctx, account.ActivityEvent{EventType: account.ActivityEventGateRejected}))

	assert.Equal(t, float64(2), testutil.ToFloat64(c.Events().WithLabelValues(string(account.ActivityEventAccountRegistered))))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Transitions().WithLabelValues("active", "suspended")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.GateRejections().WithLabelValues(account.TextCodeAccountSuspended)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.GateRejections().WithLabelValues("unknown")))
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	_, err = metrics.NewCollector(reg)
	assert.Error(t, err)
}

func TestHandlerExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	require.NoError(t, c.Record(context.Background(), account.ActivityEvent{EventType: account.ActivityEventAccountVerified}))

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `account_activity_events_total{event="account.verified"} 1`), body)
}
