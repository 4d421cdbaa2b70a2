package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/meydan/database"
)

type sqliteReadStateRepo struct {
	db database.TxQuerier
}

func NewSQLiteReadStateRepo(db database.TxQuerier) ReadStateRepository {
	return &sqliteReadStateRepo{db: db}
}

// Upsert, SQLite'ın ON CONFLICT clause'u ile tek sorguda
// insert-or-update yapar.
func (r *sqliteReadStateRepo) Upsert(ctx context.Context, conversationID, userID, messageID string) error {
	query := `
		INSERT INTO conversation_read_states (conversation_id, user_id, last_read_message_id, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(conversation_id, user_id) DO UPDATE SET
			last_read_message_id = excluded.last_read_message_id,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, conversationID, userID, messageID); err != nil {
		return fmt.Errorf("failed to upsert read state: %w", err)
	}
	return nil
}

func (r *sqliteReadStateRepo) LastRead(ctx context.Context, conversationID, userID string) (*string, error) {
	var messageID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT last_read_message_id FROM conversation_read_states
		 WHERE conversation_id = ? AND user_id = ?`,
		conversationID, userID,
	).Scan(&messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get read state: %w", err)
	}
	if !messageID.Valid {
		return nil, nil
	}
	return &messageID.String, nil
}
