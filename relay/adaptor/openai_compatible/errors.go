package openai_compatible

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/songquanpeng/model-compare/relay/model"
)

// ErrAborted is returned when the caller cancelled the run. It is kept apart
// from transport failures so a cancelled slot is reported as aborted.
var ErrAborted = errors.New("request aborted by user")

// IsAborted reports whether err stems from a user cancellation.
func IsAborted(err error) bool {
	return err != nil && (errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled))
}

// HTTPError is a non-2xx answer to the chat completion request.
type HTTPError struct {
	StatusCode int
	Status     string
	// Detail is the upstream error message, when the body carried one.
	Detail string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("API Error: %d %s", e.StatusCode, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// FetchError is a non-2xx answer to the models list request.
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return "failed to fetch models: " + e.Status
}

// statusText returns the reason phrase of resp, e.g. "Internal Server Error".
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// upstreamErrorMessage extracts error.message from an OpenAI style error body.
func upstreamErrorMessage(body []byte) string {
	var parsed model.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Error.Message)
}

// classifyTransportError maps a failure observed while ctx was live into the
// error taxonomy: cancellation becomes ErrAborted, anything else stays a
// transport error.
func classifyTransportError(ctx context.Context, err error, action string) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return errors.Wrap(ErrAborted, action)
	}
	if errors.Is(err, context.Canceled) {
		return errors.Wrap(ErrAborted, action)
	}
	return errors.Wrap(err, action)
}
