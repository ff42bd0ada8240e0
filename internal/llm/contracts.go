package llm

import "context"

// Message roles for chat-style completions.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged chunk of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the capability every analyzer depends on: one chat-style
// completion returning the model's text. Providers that only accept a single
// prompt string adapt themselves to this shape; callers never know the
// difference. Rate-limit responses surface as common.ErrRateLimited so the
// queued execution path can reschedule.
type Client interface {
	CreateCompletion(ctx context.Context, model string, temperature float32, messages []Message) (string, error)
}

// System builds a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
