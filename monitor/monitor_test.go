package monitor

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/songquanpeng/model-compare/relay/comparison"
	"github.com/songquanpeng/model-compare/relay/streaming"
)

func TestRunObserver(t *testing.T) {
	target := comparison.Target{SlotId: "s1", ProviderName: "observer-test", ModelId: "m"}
	obs := RunObserver{}

	obs.RunStarted(target)
	require.Equal(t, 1.0, testutil.ToFloat64(runsStarted.WithLabelValues("observer-test", "m")))
	require.Equal(t, 1.0, testutil.ToFloat64(runsInFlight.WithLabelValues("observer-test")))

	obs.RunFinished(target, streaming.ModelResponse{
		SlotId: "s1",
		Status: streaming.StatusComplete,
		Metrics: streaming.TimingMetrics{
			RequestSent:   1000,
			FirstToken:    1500,
			ContentStart:  1500,
			ContentEnd:    2500,
			ContentTokens: 40,
		},
	})
	require.Equal(t, 0.0, testutil.ToFloat64(runsInFlight.WithLabelValues("observer-test")))
	require.Equal(t, 1.0, testutil.ToFloat64(runsFinished.WithLabelValues("observer-test", "m", "complete")))
	require.Equal(t, 1, testutil.CollectAndCount(ttftSeconds.WithLabelValues("observer-test", "m").(prometheus.Histogram)))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, register(reg, "v0.0.0-test", "now", "go", time.Now()))
	require.Error(t, register(reg, "v0.0.0-test", "now", "go", time.Now()), "double registration")

	RecordHTTPRequest(http.MethodGet, "/api/status", http.StatusOK, 10*time.Millisecond)
	require.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/status", "2xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(buildInfo.WithLabelValues("v0.0.0-test", "now", "go")))
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "2xx", statusLabel(200))
	require.Equal(t, "3xx", statusLabel(304))
	require.Equal(t, "4xx", statusLabel(404))
	require.Equal(t, "5xx", statusLabel(503))
}
