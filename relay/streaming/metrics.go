package streaming

import (
	"fmt"
	"unicode/utf8"
)

// TimingMetrics holds wall-clock checkpoints of one run as unix milliseconds.
// A zero timestamp means the checkpoint has not been reached. Apart from
// CotEnd in the explicit reasoning regime, every checkpoint is written once.
type TimingMetrics struct {
	RequestSent   int64 `json:"requestSent,omitempty"`
	FirstToken    int64 `json:"firstToken,omitempty"`
	CotStart      int64 `json:"cotStart,omitempty"`
	CotEnd        int64 `json:"cotEnd,omitempty"`
	ContentStart  int64 `json:"contentStart,omitempty"`
	ContentEnd    int64 `json:"contentEnd,omitempty"`
	CotTokens     int   `json:"cotTokens,omitempty"`
	ContentTokens int   `json:"contentTokens,omitempty"`
	HTTPStatus    int   `json:"httpStatus,omitempty"`
}

// setOnce writes v into an unset checkpoint and reports whether it did.
func setOnce(field *int64, v int64) bool {
	if *field != 0 {
		return false
	}
	*field = v
	return true
}

// EstimateTokenCount approximates the token count as ceil(chars/4).
// Characters are counted as runes.
func EstimateTokenCount(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// CalculateTPS returns tokens per second over [start, end] in milliseconds,
// or 0 when the interval is empty or negative.
func CalculateTPS(tokens int, start, end int64) float64 {
	durationMs := end - start
	if durationMs <= 0 {
		return 0
	}
	return float64(tokens) / float64(durationMs) * 1000
}

// FormatDuration renders milliseconds as "850ms" or "1.25s".
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

// Summary holds the values derived from TimingMetrics. A nil field could
// not be derived because one of its inputs is unset.
type Summary struct {
	TTFT            *int64   `json:"ttftMs,omitempty"`
	CotDuration     *int64   `json:"cotDurationMs,omitempty"`
	CotTPS          *float64 `json:"cotTps,omitempty"`
	ContentTTFT     *int64   `json:"contentTtftMs,omitempty"`
	ContentDuration *int64   `json:"contentDurationMs,omitempty"`
	ContentTPS      *float64 `json:"contentTps,omitempty"`
	TotalDuration   *int64   `json:"totalDurationMs,omitempty"`
}

func span(start, end int64) *int64 {
	if start == 0 || end == 0 {
		return nil
	}
	d := end - start
	return &d
}

func throughput(tokens int, start, end int64, duration *int64) *float64 {
	if duration == nil || *duration == 0 || tokens == 0 {
		return nil
	}
	tps := CalculateTPS(tokens, start, end)
	return &tps
}

// Summarize derives latency and throughput figures.
func (m TimingMetrics) Summarize() Summary {
	s := Summary{
		TTFT:            span(m.RequestSent, m.FirstToken),
		CotDuration:     span(m.CotStart, m.CotEnd),
		ContentTTFT:     span(m.RequestSent, m.ContentStart),
		ContentDuration: span(m.ContentStart, m.ContentEnd),
		TotalDuration:   span(m.RequestSent, m.ContentEnd),
	}
	s.CotTPS = throughput(m.CotTokens, m.CotStart, m.CotEnd, s.CotDuration)
	s.ContentTPS = throughput(m.ContentTokens, m.ContentStart, m.ContentEnd, s.ContentDuration)
	return s
}
