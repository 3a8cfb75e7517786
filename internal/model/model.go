package model

import "time"

// Message is a single entry in a conversation transcript. Messages are
// immutable once appended; the streaming pipeline builds assistant content in
// a local buffer and only appends the completed message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ValidRole reports whether role is one of the three transcript roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant || role == RoleSystem
}

// Conversation is one independent chat thread with its own transcript and
// generation settings.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"created_at"`
	Model       string    `json:"model"`
	Personality string    `json:"personality"`
	Temperature float64   `json:"temperature"`
}

// Clone returns a deep copy. The store hands out clones so that callers never
// observe a conversation mid-mutation.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

// StreamChunk is the structure for a single chunk in a streaming response as
// surfaced to the presentation layer. Content fragments concatenate in
// emission order to the full assistant message; Error carries the failure
// reason when the backend call broke down (the marked content is still
// delivered and persisted as ordinary message text).
type StreamChunk struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Error   string `json:"error,omitempty"`
}
