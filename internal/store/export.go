package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "kodechat/internal/errors"
	"kodechat/internal/model"
)

// exportEnvelope is the on-disk export format. Field order is stable and the
// set of keys is fixed: imports with unknown or missing keys are rejected.
type exportEnvelope struct {
	Title       string          `json:"title"`
	Messages    []model.Message `json:"messages"`
	CreatedAt   time.Time       `json:"created_at"`
	Model       string          `json:"model"`
	Personality string          `json:"personality"`
	Temperature float64         `json:"temperature"`
}

// importEnvelope mirrors exportEnvelope with pointer fields so that missing
// keys are distinguishable from zero values.
type importEnvelope struct {
	Title    *string `json:"title"`
	Messages *[]struct {
		Role    *string `json:"role"`
		Content *string `json:"content"`
	} `json:"messages"`
	CreatedAt   *time.Time `json:"created_at"`
	Model       *string    `json:"model"`
	Personality *string    `json:"personality"`
	Temperature *float64   `json:"temperature"`
}

// Serialize renders the conversation as its canonical JSON export. The
// conversation id is deliberately not part of the export; imports are always
// assigned a fresh id.
func (s *Store) Serialize(id string) (string, error) {
	conv, err := s.Get(id)
	if err != nil {
		return "", err
	}
	blob, err := json.MarshalIndent(exportEnvelope{
		Title:       conv.Title,
		Messages:    conv.Messages,
		CreatedAt:   conv.CreatedAt,
		Model:       conv.Model,
		Personality: conv.Personality,
		Temperature: conv.Temperature,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not serialize conversation %s: %w", id, err)
	}
	return string(blob), nil
}

// Deserialize imports a previously exported conversation. The imported
// conversation gets a fresh id (an imported id is never trusted, to avoid
// collisions), is added to the store, and becomes active. Any parse or shape
// failure returns ErrMalformedData and leaves the store unchanged.
func (s *Store) Deserialize(blob string) (*model.Conversation, error) {
	env, err := parseExport([]byte(blob))
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.ModelName(env.Model); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedData, err)
	}
	if _, err := s.catalog.SystemPrompt(env.Personality); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedData, err)
	}

	conv := &model.Conversation{
		ID:          uuid.NewString(),
		Title:       env.Title,
		Messages:    env.Messages,
		CreatedAt:   env.CreatedAt,
		Model:       env.Model,
		Personality: env.Personality,
		Temperature: env.Temperature,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(conv)
	return conv.Clone(), nil
}

// parseExport validates an export blob against the documented shape without
// touching the store.
func parseExport(blob []byte) (*exportEnvelope, error) {
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	var env importEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedData, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after conversation object", apperrors.ErrMalformedData)
	}
	if env.Title == nil || env.Messages == nil || env.CreatedAt == nil ||
		env.Model == nil || env.Personality == nil || env.Temperature == nil {
		return nil, fmt.Errorf("%w: missing required key", apperrors.ErrMalformedData)
	}
	if *env.Temperature < 0 || *env.Temperature > 1 {
		return nil, fmt.Errorf("%w: temperature %.2f out of range [0, 1]", apperrors.ErrMalformedData, *env.Temperature)
	}

	messages := make([]model.Message, 0, len(*env.Messages))
	for i, msg := range *env.Messages {
		if msg.Role == nil || msg.Content == nil {
			return nil, fmt.Errorf("%w: message %d is missing role or content", apperrors.ErrMalformedData, i)
		}
		if !model.ValidRole(*msg.Role) {
			return nil, fmt.Errorf("%w: message %d has invalid role %q", apperrors.ErrMalformedData, i, *msg.Role)
		}
		messages = append(messages, model.Message{Role: *msg.Role, Content: *msg.Content})
	}

	return &exportEnvelope{
		Title:       *env.Title,
		Messages:    messages,
		CreatedAt:   *env.CreatedAt,
		Model:       *env.Model,
		Personality: *env.Personality,
		Temperature: *env.Temperature,
	}, nil
}
