package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("lyre")
	b := NewCollector("lyre")

	a.RecordEffectApplied("Gain")
	a.RecordEffectApplied("Gain")

	assert.InDelta(t, 2.0, testutil.ToFloat64(a.effectsApplied.WithLabelValues("Gain")), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.effectsApplied.WithLabelValues("Gain")), 0)
}

func TestRecordHTTPRequest(t *testing.T) {
	c := NewCollector("lyre")

	c.RecordHTTPRequest("POST", "/api/apply-effects", 400, 5*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/apply-effects", 200, 50*time.Millisecond)

	assert.InDelta(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/api/apply-effects", "400")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.httpRequestDuration))
}

func TestObserveApply(t *testing.T) {
	c := NewCollector("lyre")

	c.ObserveApply(time.Millisecond, 16000, nil)
	c.ObserveApply(time.Millisecond, 8000, errors.New("boom"))
	c.RecordEffectSkipped("invalid_params")

	assert.InDelta(t, 16000.0, testutil.ToFloat64(c.applySamples), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.applyDuration))
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.effectsSkipped.WithLabelValues("invalid_params")), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("lyre")
	c.RecordEffectApplied("Reverb")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `lyre_effects_applied_total{effect="Reverb"} 1`))
}
