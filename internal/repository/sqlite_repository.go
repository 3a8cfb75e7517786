package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kodechat/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a Repository backed by an sqlite database.
func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO conversations (id, title, model, personality, temperature, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			model = excluded.model,
			personality = excluded.personality,
			temperature = excluded.temperature
	`
	if _, err := tx.ExecContext(ctx, upsert,
		conv.ID, conv.Title, conv.Model, conv.Personality, conv.Temperature, conv.CreatedAt,
	); err != nil {
		return fmt.Errorf("could not upsert conversation: %w", err)
	}

	// The transcript is replaced wholesale. Messages are append-only in the
	// store, so this only ever grows the archived transcript.
	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return fmt.Errorf("could not clear archived messages: %w", err)
	}
	insertMsg := "INSERT INTO messages (conversation_id, seq, role, content) VALUES (?, ?, ?, ?)"
	for i, msg := range conv.Messages {
		if _, err := tx.ExecContext(ctx, insertMsg, conv.ID, i, msg.Role, msg.Content); err != nil {
			return fmt.Errorf("could not insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *sqliteRepository) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	query := `
		SELECT id, title, model, personality, temperature, created_at
		FROM conversations
		ORDER BY rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*model.Conversation
	for rows.Next() {
		var conv model.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.Model, &conv.Personality, &conv.Temperature, &conv.CreatedAt); err != nil {
			return nil, err
		}
		conv.Messages = []model.Message{}
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, conv := range convs {
		messages, err := r.getMessages(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		conv.Messages = messages
	}
	return convs, nil
}

func (r *sqliteRepository) getMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	query := "SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY seq ASC"
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteRepository) DeleteConversation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM conversations")
	return err
}
