package model

import "strings"

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the messages array sent to /chat/completions.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// BuildPromptMessages turns the prompt pair into the message list of a run.
// An empty (after trimming) system prompt is omitted.
func BuildPromptMessages(systemPrompt, userPrompt string) []ChatMessage {
	messages := make([]ChatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, ChatMessage{Role: RoleSystem, Content: systemPrompt})
	}
	return append(messages, ChatMessage{Role: RoleUser, Content: userPrompt})
}
