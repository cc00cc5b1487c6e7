package openai_compatible

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/model-compare/relay/model"
)

const (
	DataPrefix       = "data: "
	DataPrefixLength = len(DataPrefix)
	Done             = "[DONE]"

	maxErrorBodySize = 64 << 10 // 64 KiB
)

// EventType tells which field of a StreamEvent is meaningful.
type EventType int

const (
	// EventStatus carries the HTTP status of the accepted response. It is always the first event.
	EventStatus EventType = iota + 1
	// EventReasoning carries a reasoning_content fragment.
	EventReasoning
	// EventContent carries a content fragment.
	EventContent
)

func (t EventType) String() string {
	switch t {
	case EventStatus:
		return "status"
	case EventReasoning:
		return "reasoning"
	case EventContent:
		return "content"
	default:
		return "unknown"
	}
}

// StreamEvent is one item decoded from a chat completion stream.
type StreamEvent struct {
	Type       EventType
	HTTPStatus int
	Text       string
}

// NormalizeDataLine rewrites "data:<payload>" into "data: <payload>".
func NormalizeDataLine(line string) string {
	if strings.HasPrefix(line, "data:") {
		return DataPrefix + strings.TrimLeft(line[len("data:"):], " ")
	}
	return line
}

// BuildChatRequestBody assembles the request body. Provider request params
// are spread last, so they may override any default including model and stream.
func BuildChatRequestBody(provider model.Provider, modelID string, messages []model.ChatMessage) ([]byte, error) {
	body := map[string]any{
		"model":    modelID,
		"messages": messages,
		"stream":   true,
	}
	for key, value := range provider.RequestParams {
		body[key] = value
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chat completion request")
	}
	return payload, nil
}

// ChatStream is a single-pass reader over one streamed chat completion.
// It is not safe for concurrent use and cannot be restarted; every call to
// StreamChatCompletion opens a new connection. Close releases the connection
// and is called automatically once the stream reaches its end or fails.
type ChatStream struct {
	ctx        context.Context
	resp       *http.Response
	reader     *bufio.Reader
	logger     glog.Logger
	pending    []StreamEvent
	statusSent bool
	eof        bool
	closed     bool
	err        error
}

// StreamChatCompletion posts a streaming chat completion request.
// A non-2xx answer fails immediately with *HTTPError. Cancelling ctx aborts
// the transport and makes the stream fail with an error for which IsAborted
// is true.
func (c *Client) StreamChatCompletion(ctx context.Context, provider model.Provider, modelID string, messages []model.ChatMessage) (*ChatStream, error) {
	endpoint := BuildAPIURL(provider.Endpoint, "/chat/completions")
	lg := c.logger.With(
		zap.String("provider", provider.Name),
		zap.String("model", modelID),
	)

	payload, err := BuildChatRequestBody(provider, modelID, messages)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build chat completion request")
	}
	setHeaders(req, provider.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err, "do chat completion request")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Detail:     upstreamErrorMessage(body),
		}
		lg.Warn("chat completion rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response_body", body))
		return nil, httpErr
	}

	if resp.Body == nil {
		return nil, errors.New("no response body")
	}

	return &ChatStream{
		ctx:    ctx,
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
		logger: lg,
	}, nil
}

// Recv returns the next event. The first event is always EventStatus. It
// returns io.EOF once the body is exhausted and ErrAborted (wrapped) when the
// context was cancelled.
func (s *ChatStream) Recv() (StreamEvent, error) {
	if !s.statusSent {
		s.statusSent = true
		return StreamEvent{Type: EventStatus, HTTPStatus: s.resp.StatusCode}, nil
	}

	for {
		if len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			return ev, nil
		}
		if s.err != nil {
			return StreamEvent{}, s.err
		}
		if s.eof {
			s.Close()
			return StreamEvent{}, io.EOF
		}

		line, err := s.reader.ReadString('\n')
		if line != "" {
			s.handleLine(line)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.eof = true
		default:
			s.err = classifyTransportError(s.ctx, err, "read chat completion stream")
			s.Close()
		}
	}
}

// handleLine decodes one SSE line into zero, one or two pending events.
// A trailing line without newline at end of body is handled the same way.
func (s *ChatStream) handleLine(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	line = NormalizeDataLine(line)
	if !strings.HasPrefix(line, DataPrefix) {
		return
	}

	payload := line[DataPrefixLength:]
	if payload == Done {
		return
	}

	var chunk model.ChatCompletionsStreamResponse
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		s.logger.Warn("failed to parse SSE chunk, skipping",
			zap.String("chunk_data", line),
			zap.Error(err))
		return
	}

	if reasoning := chunk.ReasoningText(); reasoning != "" {
		s.pending = append(s.pending, StreamEvent{Type: EventReasoning, Text: reasoning})
	}
	if content := chunk.ContentText(); content != "" {
		s.pending = append(s.pending, StreamEvent{Type: EventContent, Text: content})
	}
}

// Close releases the underlying connection. It is safe to call more than once.
func (s *ChatStream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.resp.Body.Close()
}

// Events adapts the stream to a range-over-func sequence. The stream is
// closed when the loop ends, whether by exhaustion, error or break. A failure
// is yielded once as the final element.
func (s *ChatStream) Events() iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		defer s.Close()
		for {
			ev, err := s.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(StreamEvent{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}
