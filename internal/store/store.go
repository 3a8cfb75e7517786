// Package store owns the session's conversations: an insertion-ordered set of
// Conversation aggregates plus the active-conversation reference. All
// mutation happens under one lock, so every operation is atomic with respect
// to an in-flight turn. The store is never empty while the session is
// running; deleting the last remaining conversation is refused.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"kodechat/internal/catalog"
	apperrors "kodechat/internal/errors"
	"kodechat/internal/model"
)

// DefaultTitle is the title of a conversation before its first user message.
const DefaultTitle = "New Chat"

// Store maps conversation id to Conversation, keyed uniquely, with insertion
// order preserved (relevant for "first available" selection after a delete).
// Reads hand out deep copies; writes go through store methods so callers
// never share mutable conversation state.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
	order         []string
	activeID      string

	catalog            *catalog.Catalog
	defaultTemperature float64
}

// New builds a store seeded with one fresh conversation, which becomes
// active. The catalog validates model and personality configuration.
func New(cat *catalog.Catalog, defaultTemperature float64) *Store {
	s := &Store{
		conversations:      make(map[string]*model.Conversation),
		catalog:            cat,
		defaultTemperature: defaultTemperature,
	}
	first := s.newConversation()
	s.insert(first)
	return s
}

func (s *Store) newConversation() *model.Conversation {
	return &model.Conversation{
		ID:          uuid.NewString(),
		Title:       DefaultTitle,
		Messages:    []model.Message{},
		CreatedAt:   time.Now().UTC(),
		Model:       s.catalog.DefaultModelID(),
		Personality: catalog.DefaultPersonality,
		Temperature: s.defaultTemperature,
	}
}

// insert adds conv and makes it active. Caller must hold the lock (or be the
// constructor).
func (s *Store) insert(conv *model.Conversation) {
	s.conversations[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	s.activeID = conv.ID
}

// Create adds a fresh conversation with default settings, makes it active,
// and returns a snapshot of it.
func (s *Store) Create() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.newConversation()
	s.insert(conv)
	return conv.Clone()
}

// Delete removes a conversation. Deleting the only remaining conversation is
// refused with ErrLastConversation. If the deleted conversation was active,
// the first remaining conversation in insertion order becomes active.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	if len(s.conversations) == 1 {
		return apperrors.ErrLastConversation
	}
	delete(s.conversations, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = s.order[0]
	}
	return nil
}

// Get returns a snapshot of the conversation with the given id.
func (s *Store) Get(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	return conv.Clone(), nil
}

// GetActive returns a snapshot of the active conversation.
func (s *Store) GetActive() (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[s.activeID]
	if !ok {
		return nil, fmt.Errorf("%w: no active conversation", apperrors.ErrNotFound)
	}
	return conv.Clone(), nil
}

// ActiveID returns the id of the active conversation.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SetActive switches the active conversation.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

// List returns snapshots of all conversations in insertion (creation) order.
func (s *Store) List() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.conversations[id].Clone())
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// ClearAll atomically replaces the entire store with one fresh conversation
// and returns a snapshot of it. A concurrent reader never observes an empty
// store.
func (s *Store) ClearAll() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.newConversation()
	s.conversations = map[string]*model.Conversation{conv.ID: conv}
	s.order = []string{conv.ID}
	s.activeID = conv.ID
	return conv.Clone()
}

// Restore replaces the store contents with previously archived conversations,
// preserving their ids and the given order. The first conversation becomes
// active. An empty slice leaves the store untouched.
func (s *Store) Restore(convs []*model.Conversation) {
	if len(convs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make(map[string]*model.Conversation, len(convs))
	s.order = make([]string, 0, len(convs))
	for _, conv := range convs {
		if _, ok := s.conversations[conv.ID]; ok {
			continue
		}
		s.conversations[conv.ID] = conv.Clone()
		s.order = append(s.order, conv.ID)
	}
	s.activeID = s.order[0]
}

// AppendMessage appends a message to the conversation's transcript and
// returns the transcript length after the append. Messages are append-only;
// there are no in-place edits.
func (s *Store) AppendMessage(id string, msg model.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return 0, fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	conv.Messages = append(conv.Messages, msg)
	return len(conv.Messages), nil
}

// SetTitle overwrites the conversation's display title.
func (s *Store) SetTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	conv.Title = title
	return nil
}

// SetModel updates the conversation's backend model id, which must resolve in
// the catalog.
func (s *Store) SetModel(id, modelID string) error {
	if _, err := s.catalog.ModelName(modelID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	conv.Model = modelID
	return nil
}

// SetPersonality updates the conversation's personality, which must be a
// valid catalog key.
func (s *Store) SetPersonality(id, personality string) error {
	if _, err := s.catalog.SystemPrompt(personality); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	conv.Personality = personality
	return nil
}

// SetTemperature updates the conversation's sampling temperature, bounded to
// [0, 1].
func (s *Store) SetTemperature(id string, temperature float64) error {
	if temperature < 0 || temperature > 1 {
		return fmt.Errorf("%w: temperature %.2f out of range [0, 1]", apperrors.ErrValidation, temperature)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	conv.Temperature = temperature
	return nil
}
