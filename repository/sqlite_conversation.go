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

const conversationColumns = `id, type, name, direct_key, created_by, created_at`

type sqliteConversationRepo struct {
	db database.TxQuerier
}

func NewSQLiteConversationRepo(db database.TxQuerier) ConversationRepository {
	return &sqliteConversationRepo{db: db}
}

func scanConversation(row interface{ Scan(...any) error }, c *models.Conversation) error {
	return row.Scan(&c.ID, &c.Type, &c.Name, &c.DirectKey, &c.CreatedBy, &c.CreatedAt)
}

// Create, direct sohbetlerde partial unique index'e çarparsa
// pkg.ErrAlreadyExists döner: eşzamanlı ilk temas yarışında kaybeden
// taraf bu hatayı görür ve kaydı yeniden okur.
func (r *sqliteConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (type, name, direct_key, created_by)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		conv.Type, conv.Name, conv.DirectKey, conv.CreatedBy,
	).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: direct conversation", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *sqliteConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = ?`

	conv := &models.Conversation{}
	err := scanConversation(r.db.QueryRowContext(ctx, query, id), conv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: conversation", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conv, nil
}

func (r *sqliteConversationRepo) GetDirectByKey(ctx context.Context, directKey string) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE type = 'direct' AND direct_key = ?`

	conv := &models.Conversation{}
	err := scanConversation(r.db.QueryRowContext(ctx, query, directKey), conv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get direct conversation: %w", err)
	}

	return conv, nil
}

func (r *sqliteConversationRepo) AddMember(ctx context.Context, conversationID, userID string) error {
	query := `INSERT OR IGNORE INTO conversation_members (conversation_id, user_id) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, conversationID, userID); err != nil {
		return fmt.Errorf("failed to add conversation member: %w", err)
	}
	return nil
}

func (r *sqliteConversationRepo) RemoveMember(ctx context.Context, conversationID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM conversation_members WHERE conversation_id = ? AND user_id = ?`,
		conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove conversation member: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteConversationRepo) IsMember(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_members WHERE conversation_id = ? AND user_id = ?`,
		conversationID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation membership: %w", err)
	}
	return count > 0, nil
}

func (r *sqliteConversationRepo) MemberIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM conversation_members WHERE conversation_id = ? ORDER BY joined_at`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListForUser, mesajı olmayan sohbetleri de kapsasın diye LEFT JOIN;
// sıralama son mesaja, o da yoksa sohbetin kuruluş zamanına göre.
func (r *sqliteConversationRepo) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `
		SELECT ` + prefixColumns("c", conversationColumns) + `
		FROM conversations c
		JOIN conversation_members cm ON cm.conversation_id = c.id
		LEFT JOIN (
			SELECT conversation_id, MAX(created_at) AS last_at
			FROM messages GROUP BY conversation_id
		) lm ON lm.conversation_id = c.id
		WHERE cm.user_id = ?
		ORDER BY COALESCE(lm.last_at, c.created_at) DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := scanConversation(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *sqliteConversationRepo) MembersByConversations(ctx context.Context, conversationIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(conversationIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(conversationIDs)-1) + "?"
	args := make([]any, len(conversationIDs))
	for i, id := range conversationIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT conversation_id, user_id FROM conversation_members
		 WHERE conversation_id IN (`+placeholders+`) ORDER BY joined_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to batch load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var convID, userID string
		if err := rows.Scan(&convID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		result[convID] = append(result[convID], userID)
	}
	return result, rows.Err()
}

func (r *sqliteConversationRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return requireAffected(result)
}
