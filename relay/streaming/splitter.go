package streaming

import (
	"regexp"
	"strings"
)

const openThinkTag = "<think>"

var (
	thinkSpanPattern = regexp.MustCompile(`(?is)<think>(.*?)</think>`)
	thinkOpenPattern = regexp.MustCompile(`(?i)<think>`)
)

// ExtractThinking finds the first complete <think>...</think> span, matched
// case-insensitively. It returns the trimmed interior and the trimmed text
// with the span removed. ok is false when no complete span exists.
func ExtractThinking(text string) (thinking, content string, ok bool) {
	loc := thinkSpanPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text, false
	}
	thinking = strings.TrimSpace(text[loc[2]:loc[3]])
	content = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return thinking, content, true
}

// hasOpenThinkTag reports whether text contains an opening tag.
func hasOpenThinkTag(text string) bool {
	return thinkOpenPattern.MatchString(text)
}

// mayOpenThinkTag reports whether text, ignoring leading whitespace, could
// still grow into an opening tag, e.g. "<thi".
func mayOpenThinkTag(text string) bool {
	trimmed := strings.ToLower(strings.TrimLeft(text, " \t\r\n"))
	return trimmed != "" && len(trimmed) < len(openThinkTag) && strings.HasPrefix(openThinkTag, trimmed)
}
