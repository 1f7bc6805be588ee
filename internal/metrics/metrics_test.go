package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"blazehammer/internal/dummy"
	"blazehammer/internal/runner"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector("run-1")

	c.ObserveInflight(3)
	c.ObserveOutcome(runner.Outcome{Success: true, StatusCode: 200, Elapsed: 20 * time.Millisecond})
	c.ObserveOutcome(runner.Outcome{Success: true, StatusCode: 200, Elapsed: 30 * time.Millisecond})
	c.ObserveOutcome(runner.Outcome{Success: true, StatusCode: 503, Elapsed: time.Millisecond})
	c.ObserveOutcome(runner.Outcome{Err: "connection refused"})

	assert.Equal(t, 3.0, testutil.ToFloat64(c.Inflight))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FailuresTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(c.LatencySeconds))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("run-2")
	c.ObserveOutcome(runner.Outcome{Success: true, StatusCode: 201, Elapsed: time.Millisecond})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `blazehammer_requests_total{code="201",run="run-2"} 1`)
	assert.Contains(t, string(body), "blazehammer_request_duration_seconds_bucket")
}

func TestCollector_ObservesRun(t *testing.T) {
	srv := httptest.NewServer(dummy.NewMux())
	defer srv.Close()

	r, err := runner.NewRunner(runner.Config{
		URL:         srv.URL + "/status/202",
		Requests:    6,
		Concurrency: 3,
		Method:      runner.MethodGet,
	}, nil)
	require.NoError(t, err)

	c := NewCollector(r.ID)
	r.SetObserver(c)

	sum := r.Run(context.Background())
	require.Equal(t, 6, sum.Success)

	assert.Equal(t, 6.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("202")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.FailuresTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Inflight))
}
