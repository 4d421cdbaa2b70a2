package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

type sqliteMessageRepo struct {
	db database.TxQuerier
}

func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES (?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		message.ConversationID, message.SenderID, message.Content,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *sqliteMessageRepo) GetByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	query := `SELECT id, conversation_id, sender_id, content, created_at
		FROM messages WHERE id = ?`

	msg := &models.ChatMessage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: message", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return msg, nil
}

func (r *sqliteMessageRepo) ListByConversation(ctx context.Context, conversationID, beforeID string, limit int) ([]models.ChatMessage, error) {
	var rows *sql.Rows
	var err error

	// Aynı saniyedeki mesajlar için rowid ikincil sıralama ve cursor
	// anahtarıdır; created_at saniye çözünürlüklü, id'ler rastgele.
	if beforeID == "" {
		query := `SELECT id, conversation_id, sender_id, content, created_at
			FROM messages WHERE conversation_id = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?`
		rows, err = r.db.QueryContext(ctx, query, conversationID, limit)
	} else {
		query := `SELECT id, conversation_id, sender_id, content, created_at
			FROM messages WHERE conversation_id = ?
			AND (created_at, rowid) < (SELECT created_at, rowid FROM messages WHERE id = ?)
			ORDER BY created_at DESC, rowid DESC LIMIT ?`
		rows, err = r.db.QueryContext(ctx, query, conversationID, beforeID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *sqliteMessageRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return requireAffected(result)
}

// LatestByConversations, window function yerine korele subquery ile
// her sohbetin en yeni mesajını çeker.
func (r *sqliteMessageRepo) LatestByConversations(ctx context.Context, conversationIDs []string) (map[string]models.ChatMessage, error) {
	result := make(map[string]models.ChatMessage)
	if len(conversationIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(conversationIDs)-1) + "?"
	args := make([]any, len(conversationIDs))
	for i, id := range conversationIDs {
		args[i] = id
	}

	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at
		FROM messages m
		WHERE m.conversation_id IN (` + placeholders + `)
		AND m.id = (
			SELECT m2.id FROM messages m2
			WHERE m2.conversation_id = m.conversation_id
			ORDER BY m2.created_at DESC, m2.rowid DESC LIMIT 1
		)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan latest message: %w", err)
		}
		result[m.ConversationID] = m
	}
	return result, rows.Err()
}

// CountUnread, okunma imi yoksa sohbetteki tüm yabancı mesajlar
// okunmamış sayılır.
func (r *sqliteMessageRepo) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM messages m
		WHERE m.conversation_id = ?
		AND m.sender_id != ?
		AND m.created_at > COALESCE(
			(SELECT m2.created_at FROM messages m2
			 JOIN conversation_read_states rs
			   ON rs.last_read_message_id = m2.id
			 WHERE rs.conversation_id = ? AND rs.user_id = ?),
			'1970-01-01'
		)`

	var count int
	err := r.db.QueryRowContext(ctx, query, conversationID, userID, conversationID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
