package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
)

type sqliteAdminRepo struct {
	db database.TxQuerier
}

func NewSQLiteAdminRepo(db database.TxQuerier) AdminRepository {
	return &sqliteAdminRepo{db: db}
}

// ListUsers, istatistikleri correlated subquery ile tek sorguda toplar.
// Satır başına üç subquery çalışır; admin paneli düşük trafikli olduğu
// için JOIN + GROUP BY karmaşasına değmez.
func (r *sqliteAdminRepo) ListUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url,
			u.is_platform_admin, u.is_suspended, u.status, u.created_at,
			(SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id) AS post_count,
			(SELECT COUNT(*) FROM comments c WHERE c.author_id = u.id) AS comment_count,
			(SELECT COUNT(*) FROM friendships f
				WHERE f.status = 'accepted'
				AND (f.requester_id = u.id OR f.addressee_id = u.id)) AS friend_count
		FROM users u
		ORDER BY u.created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for admin: %w", err)
	}
	defer rows.Close()

	var items []models.AdminUserListItem
	for rows.Next() {
		var it models.AdminUserListItem
		if err := rows.Scan(
			&it.ID, &it.Username, &it.DisplayName, &it.AvatarURL,
			&it.IsPlatformAdmin, &it.IsSuspended, &it.Status, &it.CreatedAt,
			&it.PostCount, &it.CommentCount, &it.FriendCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan admin user row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
