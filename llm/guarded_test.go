package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/interviewer/pkg/limiter"
	"github.com/snow-ghost/interviewer/pkg/metrics"
)

func TestGuardedRecordsCapability(t *testing.T) {
	m := metrics.New()
	protection := limiter.NewProtection(limiter.Policy{}, nil, nil)
	g := NewGuarded(&recorder{reply: "hello"}, protection, m, nil)

	out, err := g.Complete(context.Background(), Request{Capability: CapabilityGradeAnswer})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "recorder", g.Name())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityCalls.WithLabelValues(CapabilityGradeAnswer, "ok")))
}

func TestGuardedFailures(t *testing.T) {
	m := metrics.New()
	protection := limiter.NewProtection(limiter.Policy{}, nil, nil)

	boom := errors.New("boom")
	_, err := NewGuarded(&recorder{err: boom}, protection, m, nil).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityCalls.WithLabelValues(CapabilityGenerate, "error")))

	_, err = NewGuarded(&recorder{reply: ""}, protection, nil, nil).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
