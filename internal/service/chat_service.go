package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"kodechat/internal/catalog"
	apperrors "kodechat/internal/errors"
	"kodechat/internal/model"
	"kodechat/internal/repository"
	"kodechat/internal/store"
)

// contextWindow bounds how many transcript messages accompany each request:
// the most recent 20, oldest first, regardless of role composition.
const contextWindow = 20

// ChatService owns the conversation lifecycle and the turn pipeline. It
// mediates between the session store (authoritative, in-memory), the
// completion client, and the write-behind archive.
type ChatService struct {
	store   *store.Store
	catalog *catalog.Catalog
	session *Session
	archive repository.Repository

	// inFlight enforces at most one active turn per conversation id.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewChatService(st *store.Store, cat *catalog.Catalog, session *Session, archive repository.Repository) *ChatService {
	return &ChatService{
		store:    st,
		catalog:  cat,
		session:  session,
		archive:  archive,
		inFlight: make(map[string]struct{}),
	}
}

// UpdateSettingsRequest carries per-conversation configuration changes. All
// fields are optional; the model is given by its catalog display name.
type UpdateSettingsRequest struct {
	Model       *string  `json:"model,omitempty"`
	Personality *string  `json:"personality,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// ListConversations returns all conversations in creation order.
func (s *ChatService) ListConversations(ctx context.Context) []*model.Conversation {
	return s.store.List()
}

// CreateConversation starts a fresh conversation and makes it active.
func (s *ChatService) CreateConversation(ctx context.Context) *model.Conversation {
	conv := s.store.Create()
	s.archiveConversation(ctx, conv)
	return conv
}

// DeleteConversation removes a conversation. The last remaining conversation
// cannot be deleted.
func (s *ChatService) DeleteConversation(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	if err := s.archive.DeleteConversation(ctx, id); err != nil && err != repository.ErrNotFound {
		slog.Warn("Could not remove conversation from archive", "conversation_id", id, "error", err)
	}
	return nil
}

// SelectConversation switches the active conversation.
func (s *ChatService) SelectConversation(ctx context.Context, id string) error {
	return s.store.SetActive(id)
}

// GetConversation returns a snapshot of one conversation.
func (s *ChatService) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	return s.store.Get(id)
}

// ActiveConversation returns a snapshot of the active conversation.
func (s *ChatService) ActiveConversation(ctx context.Context) (*model.Conversation, error) {
	return s.store.GetActive()
}

// ClearAll replaces every conversation with a single fresh one.
func (s *ChatService) ClearAll(ctx context.Context) *model.Conversation {
	conv := s.store.ClearAll()
	if err := s.archive.DeleteAll(ctx); err != nil {
		slog.Warn("Could not clear conversation archive", "error", err)
	}
	s.archiveConversation(ctx, conv)
	return conv
}

// UpdateSettings applies configuration changes to one conversation and
// returns the updated snapshot. Unknown model or personality names are
// rejected; nothing is applied on failure of an earlier field.
func (s *ChatService) UpdateSettings(ctx context.Context, id string, req *UpdateSettingsRequest) (*model.Conversation, error) {
	if req.Model != nil {
		modelID, err := s.catalog.ModelID(*req.Model)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetModel(id, modelID); err != nil {
			return nil, err
		}
	}
	if req.Personality != nil {
		if err := s.store.SetPersonality(id, *req.Personality); err != nil {
			return nil, err
		}
	}
	if req.Temperature != nil {
		if err := s.store.SetTemperature(id, *req.Temperature); err != nil {
			return nil, err
		}
	}
	conv, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.archiveConversation(ctx, conv)
	return conv, nil
}

// Export renders a conversation as its canonical JSON export.
func (s *ChatService) Export(ctx context.Context, id string) (string, error) {
	return s.store.Serialize(id)
}

// Import adds a previously exported conversation under a fresh id and makes
// it active.
func (s *ChatService) Import(ctx context.Context, blob string) (*model.Conversation, error) {
	conv, err := s.store.Deserialize(blob)
	if err != nil {
		return nil, err
	}
	s.archiveConversation(ctx, conv)
	return conv, nil
}

// Configure installs session credentials.
func (s *ChatService) Configure(apiKey, baseURL string) error {
	return s.session.Configure(apiKey, baseURL)
}

// Configured reports whether session credentials have been supplied.
func (s *ChatService) Configured() bool {
	return s.session.Configured()
}

// Submit runs one turn against the given conversation: it appends the user
// message, streams the model's reply into out chunk by chunk, and commits the
// completed assistant message. out is always closed before Submit returns.
//
// Text that is empty after trimming is a silent no-op. Missing credentials,
// an unknown conversation, and a turn already in flight are reported as
// errors before any state changes. A backend failure is not an error here:
// it is committed and streamed as error-marked message content.
//
// If ctx is cancelled mid-stream the partially accumulated reply is discarded
// entirely; the transcript is left with just the user message.
func (s *ChatService) Submit(ctx context.Context, conversationID, text string, out chan<- model.StreamChunk) error {
	defer close(out)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	client, err := s.session.Client()
	if err != nil {
		return err
	}
	if err := s.beginTurn(conversationID); err != nil {
		return err
	}
	defer s.endTurn(conversationID)

	count, err := s.store.AppendMessage(conversationID, model.Message{Role: model.RoleUser, Content: text})
	if err != nil {
		return err
	}
	if count == 1 {
		// First message in the conversation names it.
		title := store.DeriveTitle([]model.Message{{Role: model.RoleUser, Content: text}})
		if err := s.store.SetTitle(conversationID, title); err != nil {
			slog.Warn("Could not update conversation title", "conversation_id", conversationID, "error", err)
		}
	}

	conv, err := s.store.Get(conversationID)
	if err != nil {
		return err
	}
	prompt, err := s.catalog.SystemPrompt(conv.Personality)
	if err != nil {
		return err
	}
	outgoing := assembleRequest(prompt, conv.Messages)

	var reply strings.Builder
	for chunk := range client.StreamComplete(ctx, outgoing, conv.Model, conv.Temperature) {
		reply.WriteString(chunk.Content)
		forwarded := model.StreamChunk{Content: chunk.Content}
		if chunk.Err != nil {
			slog.Warn("Stream error from backend", "conversation_id", conversationID, "error", chunk.Err)
			forwarded.Error = chunk.Err.Error()
		}
		if !send(ctx, out, forwarded) {
			break
		}
	}
	if ctx.Err() != nil {
		slog.Info("Turn abandoned, discarding partial reply", "conversation_id", conversationID)
		return ctx.Err()
	}

	// The stream ended normally: commit exactly once. An error-marked reply
	// is committed verbatim, so failures show up in history like any answer.
	if _, err := s.store.AppendMessage(conversationID, model.Message{Role: model.RoleAssistant, Content: reply.String()}); err != nil {
		return fmt.Errorf("could not commit assistant message: %w", err)
	}
	send(ctx, out, model.StreamChunk{Done: true})

	if conv, err := s.store.Get(conversationID); err == nil {
		s.archiveConversation(context.WithoutCancel(ctx), conv)
	}
	return nil
}

// assembleRequest builds the outgoing message list: the system prompt
// followed by a sliding window over the transcript.
func assembleRequest(systemPrompt string, messages []model.Message) []model.Message {
	recent := messages
	if len(recent) > contextWindow {
		recent = recent[len(recent)-contextWindow:]
	}
	outgoing := make([]model.Message, 0, len(recent)+1)
	outgoing = append(outgoing, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	return append(outgoing, recent...)
}

func (s *ChatService) beginTurn(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[conversationID]; busy {
		return apperrors.ErrTurnInFlight
	}
	s.inFlight[conversationID] = struct{}{}
	return nil
}

func (s *ChatService) endTurn(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, conversationID)
}

// archiveConversation is write-behind: archive trouble is logged, never
// surfaced, because the in-memory store stays authoritative mid-session.
func (s *ChatService) archiveConversation(ctx context.Context, conv *model.Conversation) {
	if err := s.archive.SaveConversation(ctx, conv); err != nil {
		slog.Warn("Could not archive conversation", "conversation_id", conv.ID, "error", err)
	}
}

func send(ctx context.Context, out chan<- model.StreamChunk, chunk model.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
