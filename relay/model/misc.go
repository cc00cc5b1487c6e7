package model

// Usage is the token usage some providers append to the final stream chunk.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Error is the OpenAI style error object returned in non-2xx bodies.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    any    `json:"code"`
}

// ErrorResponse wraps Error the way upstream providers do.
type ErrorResponse struct {
	Error Error `json:"error"`
}
