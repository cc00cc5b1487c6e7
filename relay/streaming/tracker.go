package streaming

import (
	"strings"
	"time"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/model-compare/common/logger"
	"github.com/songquanpeng/model-compare/relay/adaptor/openai_compatible"
)

// TrackerParams describes the immutable configuration of a Tracker.
type TrackerParams struct {
	SlotID string
	// Now is the clock used for every checkpoint. Defaults to time.Now.
	Now    func() time.Time
	Logger glog.Logger
}

// Tracker folds the events of one stream into a ModelResponse. It separates
// reasoning from answer text and records timing checkpoints.
//
// Two regimes exist. Once any reasoning_content fragment arrives, the stream
// is in the explicit regime and content fragments are taken verbatim. Until
// then, content is scanned for an inline <think>...</think> span; after the
// span resolves no further scanning happens.
//
// A Tracker is owned by a single goroutine and is not safe for concurrent use.
type Tracker struct {
	params TrackerParams
	resp   ModelResponse

	fullText  strings.Builder
	thinking  strings.Builder
	content   strings.Builder
	explicit  bool
	resolved  bool
	thinkOpen bool
}

// NewTracker builds an idle tracker for one slot.
func NewTracker(params TrackerParams) *Tracker {
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Logger == nil {
		params.Logger = logger.Logger
	}
	params.Logger = params.Logger.With(zap.String("slot_id", params.SlotID))

	return &Tracker{
		params: params,
		resp: ModelResponse{
			SlotId: params.SlotID,
			Status: StatusIdle,
		},
	}
}

func (t *Tracker) now() int64 {
	return t.params.Now().UnixMilli()
}

func (t *Tracker) active() bool {
	return t.resp.Status == StatusStreaming
}

// Start moves the response to streaming and stamps RequestSent. It must be
// called right before the request is dispatched.
func (t *Tracker) Start() bool {
	if !t.resp.Status.CanTransition(StatusStreaming) {
		return false
	}
	t.resp.Status = StatusStreaming
	setOnce(&t.resp.Metrics.RequestSent, t.now())
	return true
}

// Observe applies one stream event and reports whether the response changed.
func (t *Tracker) Observe(ev openai_compatible.StreamEvent) bool {
	switch ev.Type {
	case openai_compatible.EventStatus:
		return t.OnStatus(ev.HTTPStatus)
	case openai_compatible.EventReasoning:
		return t.OnReasoning(ev.Text)
	case openai_compatible.EventContent:
		return t.OnContent(ev.Text)
	default:
		return false
	}
}

// OnStatus records the HTTP status of the accepted response.
func (t *Tracker) OnStatus(code int) bool {
	if !t.active() {
		return false
	}
	t.resp.Metrics.HTTPStatus = code
	return true
}

// OnReasoning appends an explicit reasoning fragment.
func (t *Tracker) OnReasoning(chunk string) bool {
	if !t.active() || chunk == "" {
		return false
	}
	now := t.now()
	m := &t.resp.Metrics

	if !t.explicit {
		t.explicit = true
		if !t.resolved {
			// inline text seen so far is answer text, not a pending span
			t.content.Reset()
			t.content.WriteString(t.fullText.String())
		}
	}
	setOnce(&m.FirstToken, now)
	setOnce(&m.CotStart, m.FirstToken)
	m.CotEnd = now

	t.thinking.WriteString(chunk)
	t.resp.Thinking = t.thinking.String()
	return true
}

// OnContent appends a content fragment, splitting out an inline reasoning
// span when no explicit reasoning channel is in use.
func (t *Tracker) OnContent(chunk string) bool {
	if !t.active() || chunk == "" {
		return false
	}
	now := t.now()
	m := &t.resp.Metrics
	setOnce(&m.FirstToken, now)
	t.fullText.WriteString(chunk)

	if t.explicit {
		t.content.WriteString(chunk)
		t.resp.Content = t.content.String()
		if t.resp.Content != "" {
			setOnce(&m.ContentStart, now)
		}
		return true
	}

	if t.resolved {
		// re-split the whole text, trimming only the assembled answer
		_, content, _ := ExtractThinking(t.fullText.String())
		t.content.Reset()
		t.content.WriteString(content)
		t.resp.Content = content
		if content != "" {
			setOnce(&m.ContentStart, now)
		}
		return true
	}

	full := t.fullText.String()
	if thinking, content, ok := ExtractThinking(full); ok {
		t.resolved = true
		t.thinking.WriteString(thinking)
		t.content.WriteString(content)
		t.resp.Thinking = thinking
		t.resp.Content = content

		setOnce(&m.CotStart, m.FirstToken)
		setOnce(&m.CotEnd, now)
		m.CotTokens = EstimateTokenCount(thinking)
		if content != "" {
			setOnce(&m.ContentStart, now)
		}
		t.params.Logger.Debug("inline reasoning resolved",
			zap.Int("cot_tokens", m.CotTokens))
		return true
	}

	// Unresolved: the text is published as-is until the span closes.
	t.resp.Content = full
	switch {
	case hasOpenThinkTag(full):
		if !t.thinkOpen {
			t.thinkOpen = true
			setOnce(&m.CotStart, now)
		}
	case strings.TrimSpace(full) == "", mayOpenThinkTag(full):
		// could still become "<think>"
	default:
		setOnce(&m.ContentStart, now)
	}
	return true
}

// Complete assembles the final texts, stamps ContentEnd and computes token
// estimates. An unterminated <think> span is kept as plain content.
func (t *Tracker) Complete() bool {
	if !t.resp.Status.CanTransition(StatusComplete) {
		return false
	}

	switch {
	case t.explicit:
		t.resp.Content = t.content.String()
		t.resp.Thinking = t.thinking.String()
	case t.resolved:
		thinking, content, _ := ExtractThinking(t.fullText.String())
		t.resp.Content = content
		t.resp.Thinking = thinking
	default:
		t.resp.Content = t.fullText.String()
		t.resp.Thinking = ""
	}

	t.finish()
	t.resp.Status = StatusComplete
	return true
}

// Fail ends the run. Aborts are reported with AbortedMessage, anything else
// with the error text. No text is modified.
func (t *Tracker) Fail(err error) bool {
	to := StatusError
	msg := UnknownErrorMessage
	switch {
	case openai_compatible.IsAborted(err):
		to = StatusAborted
		msg = AbortedMessage
	case err != nil && err.Error() != "":
		msg = err.Error()
	}
	if !t.resp.Status.CanTransition(to) {
		return false
	}

	t.finish()
	t.resp.Status = to
	t.resp.Error = msg
	return true
}

func (t *Tracker) finish() {
	m := &t.resp.Metrics
	setOnce(&m.ContentEnd, t.now())
	m.ContentTokens = EstimateTokenCount(t.resp.Content)
	if t.resp.Thinking != "" && (t.explicit || m.CotTokens == 0) {
		m.CotTokens = EstimateTokenCount(t.resp.Thinking)
	}
}

// Snapshot returns a copy of the current response.
func (t *Tracker) Snapshot() ModelResponse {
	return t.resp
}

// Status is the current lifecycle state.
func (t *Tracker) Status() Status {
	return t.resp.Status
}
