package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(chatHandler *ChatHandler) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID) // Injects a unique request ID into the context.
	r.Use(middleware.RealIP)    // Sets the remote address to the real IP from proxy headers.
	r.Use(middleware.Logger)    // Logs the start and end of each request with useful info.
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error.

	// A simple health check endpoint for liveness and readiness probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// All primary API endpoints are grouped under the /api/v1 prefix.
	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON API routes get a request timeout so client
		// connections cannot hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Session ---
			r.Get("/session", chatHandler.GetSession)
			r.Post("/session/credentials", chatHandler.SetCredentials)

			// --- Catalog ---
			r.Get("/catalog", chatHandler.GetCatalog)

			// --- Conversations ---
			r.Get("/conversations", chatHandler.GetConversations)
			r.Post("/conversations", chatHandler.CreateConversation)
			r.Delete("/conversations", chatHandler.ClearAllConversations)
			r.Get("/conversations/active", chatHandler.GetActiveConversation)
			r.Post("/conversations/import", chatHandler.ImportConversation)
			r.Get("/conversations/{conversationID}", chatHandler.GetConversation)
			r.Delete("/conversations/{conversationID}", chatHandler.DeleteConversation)
			r.Put("/conversations/{conversationID}/select", chatHandler.SelectConversation)
			r.Put("/conversations/{conversationID}/settings", chatHandler.UpdateSettings)
			r.Get("/conversations/{conversationID}/export", chatHandler.ExportConversation)
		})

		// The streaming endpoint must NOT have a timeout: it holds the
		// connection open for the duration of the turn.
		r.Group(func(r chi.Router) {
			r.Post("/conversations/{conversationID}/messages", chatHandler.SubmitMessage)
		})
	})

	return r
}
