package repository

import (
	"context"

	"kodechat/internal/model"
)

// Repository is the durable archive of conversations. The in-memory store
// stays authoritative during a session; the archive is written behind it on
// commit and read back once at startup, so a restart does not lose history.
type Repository interface {
	// SaveConversation upserts the conversation and replaces its archived
	// transcript with the given snapshot.
	SaveConversation(ctx context.Context, conv *model.Conversation) error
	// ListConversations returns all archived conversations with their
	// transcripts, oldest archived first.
	ListConversations(ctx context.Context) ([]*model.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
