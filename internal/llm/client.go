package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "kodechat/internal/errors"
	"kodechat/internal/model"
)

// ErrorMarker is the fixed prefix used to flag backend-originated failures
// embedded in otherwise normal message content. Failures are deliberately
// surfaced as renderable chat text rather than raised errors, so a
// conversation's history is a faithful record of everything shown to the user.
const ErrorMarker = "❌ Error:"

// maxOutputTokens caps the length of a single model response.
const maxOutputTokens = 2000

// StreamChunk is a LOCAL type for the llm package: one fragment of a streamed
// response. Err carries the structured failure reason when the stream broke
// down; in that case Content holds the error-marked string for display, the
// chunk is terminal, and the channel is closed after it.
type StreamChunk struct {
	Content string
	Err     error
}

// CompletionClient is the minimal chat-completion capability the pipeline
// depends on. Chunks from StreamComplete concatenate in emission order to the
// full response; the channel is always closed when the stream ends.
type CompletionClient interface {
	Complete(ctx context.Context, messages []model.Message, modelID string, temperature float64) string
	StreamComplete(ctx context.Context, messages []model.Message, modelID string, temperature float64) <-chan StreamChunk
}

// Client talks to an OpenAI-compatible chat-completions endpoint. It keeps no
// state between calls beyond the configured credentials.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// New builds a client. The API key is required; baseURL must point at the
// root of an OpenAI-compatible API (the "/chat/completions" path is appended).
func New(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", apperrors.ErrInvalidCredentials)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", apperrors.ErrInvalidCredentials)
	}
	return &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// ErrorMessage renders a failure as the error-marked string that is shown and
// persisted in place of a normal assistant response.
func ErrorMessage(err error) string {
	return fmt.Sprintf("%s %v", ErrorMarker, err)
}

// IsErrorMarked reports whether s is an error-marked message.
func IsErrorMarked(s string) bool {
	return strings.HasPrefix(s, ErrorMarker)
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []model.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete performs a one-shot completion. It never returns an error: any
// transport or backend failure is converted to an error-marked string, which
// callers must treat as renderable content.
func (c *Client) Complete(ctx context.Context, messages []model.Message, modelID string, temperature float64) string {
	text, err := c.complete(ctx, messages, modelID, temperature)
	if err != nil {
		return ErrorMessage(err)
	}
	return text
}

func (c *Client) complete(ctx context.Context, messages []model.Message, modelID string, temperature float64) (string, error) {
	resp, err := c.post(ctx, &chatRequest{
		Model:       modelID,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
		Stream:      false,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}
	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("could not decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// StreamComplete performs a streaming completion. The returned channel yields
// content fragments in emission order and is closed when the stream ends. On
// failure the channel yields exactly one terminal chunk carrying the failure
// and the error-marked content, then closes; nothing is raised past the
// caller. Cancelling ctx closes the channel without a terminal chunk.
func (c *Client) StreamComplete(ctx context.Context, messages []model.Message, modelID string, temperature float64) <-chan StreamChunk {
	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)

		resp, err := c.post(ctx, &chatRequest{
			Model:       modelID,
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   maxOutputTokens,
			Stream:      true,
		})
		if err != nil {
			sendChunk(ctx, ch, StreamChunk{Content: ErrorMessage(err), Err: err})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := readAPIError(resp)
			sendChunk(ctx, ch, StreamChunk{Content: ErrorMessage(err), Err: err})
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}
			var event streamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				err = fmt.Errorf("could not decode stream chunk: %w", err)
				sendChunk(ctx, ch, StreamChunk{Content: ErrorMessage(err), Err: err})
				return
			}
			if len(event.Choices) == 0 {
				continue
			}
			if content := event.Choices[0].Delta.Content; content != "" {
				if !sendChunk(ctx, ch, StreamChunk{Content: content}) {
					return
				}
			}
			if event.Choices[0].FinishReason != nil {
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			err = fmt.Errorf("stream interrupted: %w", err)
			sendChunk(ctx, ch, StreamChunk{Content: ErrorMessage(err), Err: err})
		}
	}()
	return ch
}

func (c *Client) post(ctx context.Context, req *chatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	return fmt.Errorf("api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
}

func sendChunk(ctx context.Context, ch chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
