package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSessionStarted()
		m.RecordTurn("greeting")
		m.RecordCapability("generate", errors.New("x"), time.Second)
		m.RecordEvaluation("ok", time.Second, 7)
		m.RecordHTTP("/health", 200, time.Millisecond)
	})
}

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordSessionStarted()
	m.RecordTurn("factual")
	m.RecordTurn("factual")
	m.RecordTransition("greeting", "project_1")
	m.RecordTransition("factual", "factual")
	m.RecordCapability("grade_answer", nil, time.Millisecond)
	m.RecordCapability("grade_answer", errors.New("timeout"), time.Millisecond)
	m.RecordHTTP("POST /v1/interviews", 201, time.Millisecond)
	m.RecordHTTP("POST /v1/interviews", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("factual")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TransitionsTotal), "self transitions are not counted")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityCalls.WithLabelValues("grade_answer", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST /v1/interviews", "4xx")))
}

func TestNewUsesIsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
