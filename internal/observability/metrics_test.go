package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordRenderPass(OutcomeOK, 12*time.Millisecond)
	RecordToolRun(OutcomeSkippedOverlap, 0)
	RecordHTTPRequest("GET", "/health", 200, 3*time.Millisecond)
}

func TestRecordersMoveCounters(t *testing.T) {
	RegisterMetrics()

	before := testutil.ToFloat64(renderPasses.WithLabelValues(OutcomeFailed))
	RecordRenderPass(OutcomeFailed, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(renderPasses.WithLabelValues(OutcomeFailed)))

	before = testutil.ToFloat64(toolRuns.WithLabelValues(OutcomeOK))
	RecordToolRun(OutcomeOK, 40*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(toolRuns.WithLabelValues(OutcomeOK)))

	SetPublishedEntries(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(publishedEntries))
}
