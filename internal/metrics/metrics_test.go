package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/apperr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.Request("/weather", http.StatusOK)
	r.Request("/weather", http.StatusNotFound)
	r.Request("/process-audio", http.StatusInternalServerError)
	r.Lookup(nil)
	r.Lookup(apperr.Network("down", errors.New("refused")))
	r.Step("transcribe", time.Now().Add(-time.Second))

	assert.InDelta(t, 1, testutil.ToFloat64(r.requests.WithLabelValues("/weather", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.requests.WithLabelValues("/weather", "client_error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.requests.WithLabelValues("/process-audio", "server_error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.lookups.WithLabelValues("network")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.lookups.WithLabelValues("ok")), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.Request("/", http.StatusOK)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weatherspeak_requests_total")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Request("/", http.StatusOK)
		r.Lookup(nil)
		r.Step("x", time.Now())
	})
}
