package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kodechat/internal/catalog"
	"kodechat/internal/interfaces"
	"kodechat/internal/model"
	"kodechat/internal/service"
)

// maxImportSize bounds the size of an uploaded conversation export.
const maxImportSize = 4 << 20

// ChatHandler translates HTTP requests into core service calls and core
// state back into JSON. It is the boundary the presentation layer talks to.
type ChatHandler struct {
	service interfaces.ChatService
	catalog *catalog.Catalog
}

func NewChatHandler(svc interfaces.ChatService, cat *catalog.Catalog) *ChatHandler {
	return &ChatHandler{service: svc, catalog: cat}
}

// CredentialsRequest supplies the session API key and an optional base URL
// override.
type CredentialsRequest struct {
	APIKey  string `json:"api_key" validate:"required"`
	BaseURL string `json:"base_url" validate:"omitempty,url"`
}

// SubmitMessageRequest is the body of a streaming turn submission.
type SubmitMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// CatalogResponse lists the selectable model and personality names.
type CatalogResponse struct {
	Models        []string `json:"models"`
	Personalities []string `json:"personalities"`
}

// SessionResponse reports whether credentials are configured and which
// conversation is active.
type SessionResponse struct {
	Configured           bool   `json:"configured"`
	ActiveConversationID string `json:"active_conversation_id"`
}

// ConversationSummary is the tab-bar view of a conversation: everything
// except the transcript.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	Model        string    `json:"model"`
	Personality  string    `json:"personality"`
	Temperature  float64   `json:"temperature"`
	MessageCount int       `json:"message_count"`
	Active       bool      `json:"active"`
}

// SetCredentials handles POST /v1/session/credentials.
func (h *ChatHandler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("invalid request payload: %w", err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.service.Configure(req.APIKey, req.BaseURL); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetSession handles GET /v1/session.
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{Configured: h.service.Configured()}
	if conv, err := h.service.ActiveConversation(r.Context()); err == nil {
		resp.ActiveConversationID = conv.ID
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetCatalog handles GET /v1/catalog.
func (h *ChatHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, CatalogResponse{
		Models:        h.catalog.ModelNames(),
		Personalities: h.catalog.Personalities(),
	})
}

// GetConversations handles GET /v1/conversations.
func (h *ChatHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	var activeID string
	if conv, err := h.service.ActiveConversation(r.Context()); err == nil {
		activeID = conv.ID
	}
	convs := h.service.ListConversations(r.Context())
	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			Model:        conv.Model,
			Personality:  conv.Personality,
			Temperature:  conv.Temperature,
			MessageCount: len(conv.Messages),
			Active:       conv.ID == activeID,
		})
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

// CreateConversation handles POST /v1/conversations.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conv := h.service.CreateConversation(r.Context())
	respondWithJSON(w, http.StatusCreated, conv)
}

// GetActiveConversation handles GET /v1/conversations/active.
func (h *ChatHandler) GetActiveConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.ActiveConversation(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

// GetConversation handles GET /v1/conversations/{conversationID}.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.GetConversation(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

// SelectConversation handles PUT /v1/conversations/{conversationID}/select.
func (h *ChatHandler) SelectConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SelectConversation(r.Context(), chi.URLParam(r, "conversationID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// UpdateSettings handles PUT /v1/conversations/{conversationID}/settings.
func (h *ChatHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("invalid request payload: %w", err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	conv, err := h.service.UpdateSettings(r.Context(), chi.URLParam(r, "conversationID"), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

// DeleteConversation handles DELETE /v1/conversations/{conversationID}.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteConversation(r.Context(), chi.URLParam(r, "conversationID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// ClearAllConversations handles DELETE /v1/conversations.
func (h *ChatHandler) ClearAllConversations(w http.ResponseWriter, r *http.Request) {
	conv := h.service.ClearAll(r.Context())
	respondWithJSON(w, http.StatusOK, conv)
}

// ExportConversation handles GET /v1/conversations/{conversationID}/export.
// The response body is the canonical export document itself.
func (h *ChatHandler) ExportConversation(w http.ResponseWriter, r *http.Request) {
	blob, err := h.service.Export(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	filename := fmt.Sprintf("conversation_%s.json", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write([]byte(blob)); err != nil {
		slog.Error("Failed to write export response", "error", err)
	}
}

// ImportConversation handles POST /v1/conversations/import. The request body
// is a previously exported conversation document.
func (h *ChatHandler) ImportConversation(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		respondWithError(w, fmt.Errorf("could not read request body: %w", err))
		return
	}
	conv, err := h.service.Import(r.Context(), string(blob))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, conv)
}

// SubmitMessage handles POST /v1/conversations/{conversationID}/messages.
// It streams the assistant's reply over SSE, one chunk per content fragment,
// and ends with a done event once the reply is committed.
func (h *ChatHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	conversationID := chi.URLParam(r, "conversationID")

	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding request body", "error", err)
		sendStreamError(w, "Invalid request body")
		return
	}
	if err := validateRequest(&req); err != nil {
		sendStreamError(w, err.Error())
		return
	}

	streamChan := make(chan model.StreamChunk)
	errChan := make(chan error, 1)
	go func() {
		errChan <- h.service.Submit(r.Context(), conversationID, req.Content, streamChan)
	}()

	for chunk := range streamChan {
		if r.Context().Err() != nil {
			slog.Info("Client disconnected during stream", "conversation_id", conversationID)
			break
		}
		if err := writeStreamEvent(w, chunk); err != nil {
			slog.Warn("Could not write to message stream, client likely disconnected", "error", err)
			break
		}
	}
	// Drain any remaining chunks so the pipeline never blocks on a reader
	// that stopped early.
	go func() {
		for range streamChan {
		}
	}()

	if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
		sendStreamError(w, err.Error())
		return
	}
	slog.Info("Finished streaming response", "conversation_id", conversationID)
}
