// Package openai_compatible talks to OpenAI compatible chat completion endpoints.
//
// It resolves versioned API URLs, lists the models a provider exposes and
// decodes streamed chat completions into a forward-only sequence of
// StreamEvent values. Reasoning text arrives either as separate
// reasoning_content deltas or inline in the content; this package reports
// what the provider sent and leaves splitting to relay/streaming.
package openai_compatible
