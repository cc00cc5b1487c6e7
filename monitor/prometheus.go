package monitor

import (
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "model_compare"

var (
	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information, always 1.",
	}, []string{"version", "start_time", "go_version"})

	uptimeSeconds prometheus.GaugeFunc

	runsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_started_total",
		Help:      "Slot runs dispatched to a provider.",
	}, []string{"provider", "model"})

	runsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_finished_total",
		Help:      "Slot runs that reached a terminal state.",
	}, []string{"provider", "model", "status"})

	runsInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "runs_in_flight",
		Help:      "Slot runs currently streaming.",
	}, []string{"provider"})

	ttftSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "time_to_first_token_seconds",
		Help:      "Latency from dispatch to the first reasoning or content fragment.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"provider", "model"})

	totalSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Latency from dispatch to the end of the stream.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160, 320},
	}, []string{"provider", "model", "status"})

	tokensPerSecond = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tokens_per_second",
		Help:      "Estimated throughput per phase.",
		Buckets:   []float64{1, 5, 10, 20, 40, 60, 80, 120, 200, 400},
	}, []string{"provider", "model", "phase"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "path", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency. Streaming endpoints last as long as the stream.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

var (
	initOnce sync.Once
	initErr  error
	enabled  bool
)

// InitPrometheusMonitoring registers every collector with the default
// registry. Collectors record values whether registered or not.
func InitPrometheusMonitoring(version, startTimeText, goVersion string, startTime time.Time) error {
	initOnce.Do(func() {
		initErr = register(prometheus.DefaultRegisterer, version, startTimeText, goVersion, startTime)
		enabled = initErr == nil
	})
	return initErr
}

// Enabled reports whether InitPrometheusMonitoring succeeded.
func Enabled() bool {
	return enabled
}

func register(reg prometheus.Registerer, version, startTimeText, goVersion string, startTime time.Time) error {
	uptimeSeconds = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Seconds since the process started.",
	}, func() float64 { return time.Since(startTime).Seconds() })

	for _, c := range []prometheus.Collector{
		buildInfo, uptimeSeconds,
		runsStarted, runsFinished, runsInFlight,
		ttftSeconds, totalSeconds, tokensPerSecond,
		httpRequests, httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "register prometheus collector")
		}
	}

	buildInfo.WithLabelValues(version, startTimeText, goVersion).Set(1)
	return nil
}

// RecordHTTPRequest observes one served request. path is the route
// template, not the raw URL.
func RecordHTTPRequest(method, path string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, path, statusLabel(code)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
