package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kodechat/internal/model"
)

func setupMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return NewSQLiteRepository(db), mock
}

func sampleConversation() *model.Conversation {
	return &model.Conversation{
		ID:    "conv-1",
		Title: "Hi",
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "Hi"},
			{Role: model.RoleAssistant, Content: "Hello!"},
		},
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Model:       "anthropic/claude-sonnet-4",
		Personality: "Assistant",
		Temperature: 0.7,
	}
}

func TestSQLiteRepository_SaveConversation(t *testing.T) {
	t.Run("upserts the conversation and rewrites its transcript", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		conv := sampleConversation()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO conversations").
			WithArgs(conv.ID, conv.Title, conv.Model, conv.Personality, conv.Temperature, conv.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM messages WHERE conversation_id").
			WithArgs(conv.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO messages").
			WithArgs(conv.ID, 0, model.RoleUser, "Hi").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO messages").
			WithArgs(conv.ID, 1, model.RoleAssistant, "Hello!").
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.SaveConversation(context.Background(), conv))
	})

	t.Run("rolls back when a message insert fails", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		conv := sampleConversation()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO conversations").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM messages WHERE conversation_id").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO messages").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.SaveConversation(context.Background(), conv)
		assert.ErrorContains(t, err, "could not insert message 0")
	})
}

func TestSQLiteRepository_ListConversations(t *testing.T) {
	t.Run("returns conversations with their transcripts in order", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT id, title, model, personality, temperature, created_at").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "model", "personality", "temperature", "created_at"}).
				AddRow("conv-1", "Hi", "anthropic/claude-sonnet-4", "Assistant", 0.7, created).
				AddRow("conv-2", "New Chat", "openai/gpt-4o", "Developer", 0.3, created))
		mock.ExpectQuery("SELECT role, content FROM messages").
			WithArgs("conv-1").
			WillReturnRows(sqlmock.NewRows([]string{"role", "content"}).
				AddRow(model.RoleUser, "Hi").
				AddRow(model.RoleAssistant, "Hello!"))
		mock.ExpectQuery("SELECT role, content FROM messages").
			WithArgs("conv-2").
			WillReturnRows(sqlmock.NewRows([]string{"role", "content"}))

		convs, err := repo.ListConversations(context.Background())
		require.NoError(t, err)
		require.Len(t, convs, 2)

		assert.Equal(t, "conv-1", convs[0].ID)
		assert.Equal(t, []model.Message{
			{Role: model.RoleUser, Content: "Hi"},
			{Role: model.RoleAssistant, Content: "Hello!"},
		}, convs[0].Messages)

		assert.Equal(t, "conv-2", convs[1].ID)
		assert.Empty(t, convs[1].Messages)
		assert.NotNil(t, convs[1].Messages, "an empty transcript is a slice, not nil")
	})

	t.Run("empty archive yields no conversations", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectQuery("SELECT id, title, model, personality, temperature, created_at").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "model", "personality", "temperature", "created_at"}))

		convs, err := repo.ListConversations(context.Background())
		require.NoError(t, err)
		assert.Empty(t, convs)
	})
}

func TestSQLiteRepository_DeleteConversation(t *testing.T) {
	t.Run("deletes an archived conversation", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectExec("DELETE FROM conversations WHERE id").
			WithArgs("conv-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteConversation(context.Background(), "conv-1"))
	})

	t.Run("unknown id yields ErrNotFound", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectExec("DELETE FROM conversations WHERE id").
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteConversation(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteRepository_DeleteAll(t *testing.T) {
	repo, mock := setupMockRepo(t)
	mock.ExpectExec("DELETE FROM conversations").
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.DeleteAll(context.Background()))
}
