package model

import "strings"

// ChatCompletionsStreamResponse is a single decoded `data:` payload of the SSE stream.
type ChatCompletionsStreamResponse struct {
	Id      string                                `json:"id,omitempty"`
	Object  string                                `json:"object,omitempty"`
	Created int64                                 `json:"created,omitempty"`
	Model   string                                `json:"model,omitempty"`
	Choices []ChatCompletionsStreamResponseChoice `json:"choices"`
	Usage   *Usage                                `json:"usage,omitempty"`
}

// ChatCompletionsStreamResponseChoice carries either an incremental delta or,
// for providers that stream whole messages, a message.
type ChatCompletionsStreamResponseChoice struct {
	Index        int          `json:"index"`
	Delta        *StreamDelta `json:"delta,omitempty"`
	Message      *StreamDelta `json:"message,omitempty"`
	FinishReason *string      `json:"finish_reason,omitempty"`
}

// StreamDelta holds the text fields read from a choice.
type StreamDelta struct {
	Role             string `json:"role,omitempty"`
	Content          any    `json:"content,omitempty"`
	ReasoningContent any    `json:"reasoning_content,omitempty"`
}

// StringContent flattens content that is either a plain string or a list of text parts.
func (d *StreamDelta) StringContent() string {
	if d == nil {
		return ""
	}
	return flattenText(d.Content)
}

// StringReasoning flattens reasoning_content the same way as StringContent.
func (d *StreamDelta) StringReasoning() string {
	if d == nil {
		return ""
	}
	return flattenText(d.ReasoningContent)
}

func flattenText(v any) string {
	switch content := v.(type) {
	case string:
		return content
	case []any:
		var sb strings.Builder
		for _, item := range content {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// ReasoningText returns the first choice's reasoning text, preferring delta over message.
func (r *ChatCompletionsStreamResponse) ReasoningText() string {
	if len(r.Choices) == 0 {
		return ""
	}
	choice := r.Choices[0]
	if text := choice.Delta.StringReasoning(); text != "" {
		return text
	}
	return choice.Message.StringReasoning()
}

// ContentText returns the first choice's content text, preferring delta over message.
func (r *ChatCompletionsStreamResponse) ContentText() string {
	if len(r.Choices) == 0 {
		return ""
	}
	choice := r.Choices[0]
	if text := choice.Delta.StringContent(); text != "" {
		return text
	}
	return choice.Message.StringContent()
}

// ModelsResponse is the body of GET /models. Data is kept raw because
// providers disagree on its shape.
type ModelsResponse struct {
	Object string `json:"object,omitempty"`
	Data   any    `json:"data"`
}

// ModelIDs extracts the identifier of every entry in Data, reading `id`,
// then `model`, else the empty string. A missing or non-array Data yields nil.
func (r *ModelsResponse) ModelIDs() []string {
	entries, ok := r.Data.([]any)
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		obj, _ := entry.(map[string]any)
		id, _ := obj["id"].(string)
		if id == "" {
			id, _ = obj["model"].(string)
		}
		ids = append(ids, id)
	}
	return ids
}
