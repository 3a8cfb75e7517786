package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"kodechat/internal/api"
	"kodechat/internal/catalog"
	"kodechat/internal/config"
	"kodechat/internal/database"
	"kodechat/internal/repository"
	"kodechat/internal/service"
	"kodechat/internal/store"
)

// App wires the core together: database, archive, store, session, services,
// and the HTTP server.
type App struct {
	DB     *sql.DB
	Server *http.Server
}

func New(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Successfully connected to SQLite database.")

	archive := repository.NewSQLiteRepository(db)
	cat := catalog.Default()
	st := store.New(cat, cfg.DefaultTemperature)

	// Restore archived conversations so a restart does not lose history. A
	// fresh database leaves the seeded conversation in place.
	archived, err := archive.ListConversations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load archived conversations: %w", err)
	}
	if len(archived) > 0 {
		st.Restore(archived)
		slog.Info("Restored archived conversations", "count", len(archived))
	}

	session := service.NewSession(cfg.APIBaseURL)
	if cfg.APIKey != "" {
		if err := session.Configure(cfg.APIKey, cfg.APIBaseURL); err != nil {
			return nil, fmt.Errorf("failed to configure session from environment: %w", err)
		}
	}

	chatService := service.NewChatService(st, cat, session, archive)
	chatHandler := api.NewChatHandler(chatService, cat)
	router := api.NewRouter(chatHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	app, err := New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if err := app.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	slog.Info("Starting server", "addr", app.Server.Addr)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
