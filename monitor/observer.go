package monitor

import (
	"github.com/songquanpeng/model-compare/relay/comparison"
	"github.com/songquanpeng/model-compare/relay/streaming"
)

// RunObserver feeds slot lifecycle events into the run collectors.
type RunObserver struct{}

var _ comparison.Observer = RunObserver{}

func (RunObserver) RunStarted(target comparison.Target) {
	runsStarted.WithLabelValues(target.ProviderName, target.ModelId).Inc()
	runsInFlight.WithLabelValues(target.ProviderName).Inc()
}

func (RunObserver) RunFinished(target comparison.Target, resp streaming.ModelResponse) {
	provider, model := target.ProviderName, target.ModelId
	status := string(resp.Status)

	runsInFlight.WithLabelValues(provider).Dec()
	runsFinished.WithLabelValues(provider, model, status).Inc()

	summary := resp.Metrics.Summarize()
	if summary.TTFT != nil {
		ttftSeconds.WithLabelValues(provider, model).Observe(msToSeconds(*summary.TTFT))
	}
	if summary.TotalDuration != nil {
		totalSeconds.WithLabelValues(provider, model, status).Observe(msToSeconds(*summary.TotalDuration))
	}
	if resp.Status != streaming.StatusComplete {
		return
	}
	if summary.CotTPS != nil {
		tokensPerSecond.WithLabelValues(provider, model, "cot").Observe(*summary.CotTPS)
	}
	if summary.ContentTPS != nil {
		tokensPerSecond.WithLabelValues(provider, model, "content").Observe(*summary.ContentTPS)
	}
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
