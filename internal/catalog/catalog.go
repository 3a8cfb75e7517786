// Package catalog is the static registry of selectable models and
// personalities. Lookups with names that are not registered fail instead of
// falling back, so bad configuration is caught at the boundary rather than
// deep in the pipeline.
package catalog

import (
	"fmt"

	apperrors "kodechat/internal/errors"
)

// DefaultPersonality is the personality assigned to new conversations.
const DefaultPersonality = "Assistant"

type entry struct {
	name  string
	value string
}

// Catalog maps human-readable model names to backend model identifiers and
// personality names to system-prompt text. It is read-only after construction.
type Catalog struct {
	models        []entry
	personalities []entry
	defaultModel  string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		models: []entry{
			{"Claude Sonnet 4", "anthropic/claude-sonnet-4"},
			{"GPT-4o", "openai/gpt-4o"},
			{"Gemini 2.0 Flash", "google/gemini-2.0-flash-thinking-exp"},
		},
		personalities: []entry{
			{"Assistant", "You are a helpful AI assistant. Provide clear, accurate, and helpful responses to user queries."},
			{"Developer", "You are an expert software developer. Help with coding questions, debugging, and best practices."},
			{"Teacher", "You are a patient and knowledgeable teacher. Explain concepts clearly with examples and encourage learning."},
			{"Creative", "You are a creative AI assistant. Help with writing, brainstorming, and creative projects with imagination and flair."},
			{"Analyst", "You are a data analyst and researcher. Provide detailed analysis, insights, and evidence-based responses."},
		},
		defaultModel: "anthropic/claude-sonnet-4",
	}
}

// ModelID resolves a human-readable model name to its backend identifier.
func (c *Catalog) ModelID(name string) (string, error) {
	for _, m := range c.models {
		if m.name == name {
			return m.value, nil
		}
	}
	return "", fmt.Errorf("%w: model %q", apperrors.ErrUnknownKey, name)
}

// ModelName is the reverse lookup, from backend identifier to display name.
// Used to validate that a stored or imported model id still resolves.
func (c *Catalog) ModelName(id string) (string, error) {
	for _, m := range c.models {
		if m.value == id {
			return m.name, nil
		}
	}
	return "", fmt.Errorf("%w: model id %q", apperrors.ErrUnknownKey, id)
}

// SystemPrompt returns the system-prompt text for a personality.
func (c *Catalog) SystemPrompt(personality string) (string, error) {
	for _, p := range c.personalities {
		if p.name == personality {
			return p.value, nil
		}
	}
	return "", fmt.Errorf("%w: personality %q", apperrors.ErrUnknownKey, personality)
}

// ModelNames lists the selectable model names in registration order.
func (c *Catalog) ModelNames() []string {
	names := make([]string, len(c.models))
	for i, m := range c.models {
		names[i] = m.name
	}
	return names
}

// Personalities lists the personality names in registration order.
func (c *Catalog) Personalities() []string {
	names := make([]string, len(c.personalities))
	for i, p := range c.personalities {
		names[i] = p.name
	}
	return names
}

// DefaultModelID is the backend identifier assigned to new conversations.
func (c *Catalog) DefaultModelID() string {
	return c.defaultModel
}
