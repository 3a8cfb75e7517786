package tests

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kodechat/internal/app"
	"kodechat/internal/config"
)

// newBackend starts a stub completion backend that streams a fixed reply for
// every request.
func newBackend(t *testing.T, reply ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, fragment := range reply {
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"delta": map[string]string{"content": fragment}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)
	return server
}

// newServer boots the full application against the given database path and
// serves it over an in-process HTTP listener.
func newServer(t *testing.T, dbPath string) *httptest.Server {
	t.Helper()
	a, err := app.New(&config.Config{
		DatabasePath:       dbPath,
		APIBaseURL:         "https://api.kodekey.ai/v1",
		LogLevel:           "ERROR",
		DefaultTemperature: 0.7,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.DB.Close() })

	server := httptest.NewServer(a.Server.Handler)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestFullChatWorkflow(t *testing.T) {
	backend := newBackend(t, "The answer ", "is 4.")
	dbPath := filepath.Join(t.TempDir(), "kodechat.db")
	server := newServer(t, dbPath)
	api := server.URL + "/api/v1"

	var activeID string
	var exportBlob string
	var importedID string

	t.Run("Healthz", func(t *testing.T) {
		resp := getJSON(t, server.URL+"/healthz", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("SessionStartsUnconfigured", func(t *testing.T) {
		var session map[string]any
		getJSON(t, api+"/session", &session)
		assert.Equal(t, false, session["configured"])
		activeID = session["active_conversation_id"].(string)
		require.NotEmpty(t, activeID)
	})

	t.Run("SubmitWithoutCredentialsFails", func(t *testing.T) {
		resp := do(t, http.MethodPost, api+"/conversations/"+activeID+"/messages", `{"content": "Hi"}`)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "event: error")
	})

	t.Run("ConfigureCredentials", func(t *testing.T) {
		payload := fmt.Sprintf(`{"api_key": "sk-test", "base_url": %q}`, backend.URL)
		resp := do(t, http.MethodPost, api+"/session/credentials", payload)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session map[string]any
		getJSON(t, api+"/session", &session)
		assert.Equal(t, true, session["configured"])
	})

	t.Run("CatalogListsModelsAndPersonalities", func(t *testing.T) {
		var cat struct {
			Models        []string `json:"models"`
			Personalities []string `json:"personalities"`
		}
		getJSON(t, api+"/catalog", &cat)
		assert.Contains(t, cat.Models, "Claude Sonnet 4")
		assert.Contains(t, cat.Personalities, "Teacher")
	})

	t.Run("SubmitMessageStreamsReply", func(t *testing.T) {
		resp := do(t, http.MethodPost, api+"/conversations/"+activeID+"/messages", `{"content": "What is 2+2?"}`)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var fragments []string
		foundDone := false
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var chunk struct {
				Content string `json:"content"`
				Done    bool   `json:"done"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &chunk))
			require.Empty(t, chunk.Error)
			if chunk.Done {
				foundDone = true
				break
			}
			fragments = append(fragments, chunk.Content)
		}
		require.NoError(t, scanner.Err())
		assert.True(t, foundDone, "stream must end with a done event")
		assert.Equal(t, "The answer is 4.", strings.Join(fragments, ""))
	})

	t.Run("TranscriptAndTitleAreCommitted", func(t *testing.T) {
		var conv struct {
			Title    string `json:"title"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		getJSON(t, api+"/conversations/active", &conv)
		assert.Equal(t, "What is 2+2?", conv.Title)
		require.Len(t, conv.Messages, 2)
		assert.Equal(t, "user", conv.Messages[0].Role)
		assert.Equal(t, "assistant", conv.Messages[1].Role)
		assert.Equal(t, "The answer is 4.", conv.Messages[1].Content)
	})

	t.Run("UpdateSettings", func(t *testing.T) {
		resp := do(t, http.MethodPut, api+"/conversations/"+activeID+"/settings",
			`{"model": "GPT-4o", "personality": "Teacher", "temperature": 0.3}`)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var conv map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&conv))
		assert.Equal(t, "openai/gpt-4o", conv["model"])
		assert.Equal(t, "Teacher", conv["personality"])
	})

	t.Run("ExportConversation", func(t *testing.T) {
		resp := do(t, http.MethodGet, api+"/conversations/"+activeID+"/export", "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		exportBlob = string(body)
		assert.Contains(t, exportBlob, `"The answer is 4."`)
	})

	t.Run("ImportConversation", func(t *testing.T) {
		resp := do(t, http.MethodPost, api+"/conversations/import", exportBlob)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var conv map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&conv))
		importedID = conv["id"].(string)
		assert.NotEqual(t, activeID, importedID, "an import always gets a fresh id")

		var summaries []map[string]any
		getJSON(t, api+"/conversations", &summaries)
		assert.Len(t, summaries, 2)
	})

	t.Run("ImportRejectsUnknownKeys", func(t *testing.T) {
		blob := strings.Replace(exportBlob, `"title"`, `"titel"`, 1)
		resp := do(t, http.MethodPost, api+"/conversations/import", blob)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("SelectConversation", func(t *testing.T) {
		resp := do(t, http.MethodPut, api+"/conversations/"+activeID+"/select", "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session map[string]any
		getJSON(t, api+"/session", &session)
		assert.Equal(t, activeID, session["active_conversation_id"])
	})

	t.Run("DeleteImportedConversation", func(t *testing.T) {
		resp := do(t, http.MethodDelete, api+"/conversations/"+importedID, "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summaries []map[string]any
		getJSON(t, api+"/conversations", &summaries)
		assert.Len(t, summaries, 1)
	})

	t.Run("LastConversationCannotBeDeleted", func(t *testing.T) {
		resp := do(t, http.MethodDelete, api+"/conversations/"+activeID, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("RestartRestoresArchivedConversations", func(t *testing.T) {
		restarted := newServer(t, dbPath)

		var conv struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		getJSON(t, restarted.URL+"/api/v1/conversations/active", &conv)
		assert.Equal(t, activeID, conv.ID)
		assert.Equal(t, "What is 2+2?", conv.Title)
		require.Len(t, conv.Messages, 2)
		assert.Equal(t, "The answer is 4.", conv.Messages[1].Content)
	})

	t.Run("ClearAllStartsFresh", func(t *testing.T) {
		resp := do(t, http.MethodDelete, api+"/conversations", "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summaries []map[string]any
		getJSON(t, api+"/conversations", &summaries)
		require.Len(t, summaries, 1)
		assert.Equal(t, "New Chat", summaries[0]["title"])
		assert.Zero(t, summaries[0]["message_count"])
	})
}
