package store

import (
	"strings"

	"kodechat/internal/model"
)

// titleLimit is the number of leading characters of the first user message
// used as the conversation title.
const titleLimit = 30

// DeriveTitle produces a short display title from a transcript: the first 30
// characters of the first user message, with an ellipsis appended when the
// message was longer. Transcripts without a user message keep the default
// title. Pure and deterministic.
func DeriveTitle(messages []model.Message) string {
	for _, msg := range messages {
		if msg.Role != model.RoleUser {
			continue
		}
		runes := []rune(msg.Content)
		if len(runes) <= titleLimit {
			return strings.TrimSpace(msg.Content)
		}
		return strings.TrimSpace(string(runes[:titleLimit])) + "..."
	}
	return DefaultTitle
}
