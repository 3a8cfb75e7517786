package interfaces

import (
	"context"

	"kodechat/internal/model"
	"kodechat/internal/service"
)

// This file defines the interface for the core chat service.
// Depending on this interface, instead of the concrete implementation, allows
// for decoupling (e.g., API layer from Service layer) and easier testing via
// mocking.

// ChatService is the contract the presentation layer programs against: the
// conversation lifecycle, per-conversation configuration, export/import,
// session credentials, and the streaming turn pipeline.
type ChatService interface {
	ListConversations(ctx context.Context) []*model.Conversation
	CreateConversation(ctx context.Context) *model.Conversation
	DeleteConversation(ctx context.Context, id string) error
	SelectConversation(ctx context.Context, id string) error
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	ActiveConversation(ctx context.Context) (*model.Conversation, error)
	ClearAll(ctx context.Context) *model.Conversation
	UpdateSettings(ctx context.Context, id string, req *service.UpdateSettingsRequest) (*model.Conversation, error)
	Export(ctx context.Context, id string) (string, error)
	Import(ctx context.Context, blob string) (*model.Conversation, error)
	Configure(apiKey, baseURL string) error
	Configured() bool
	Submit(ctx context.Context, conversationID, text string, out chan<- model.StreamChunk) error
}
