package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

type sqliteBlockRepo struct {
	db database.TxQuerier
}

func NewSQLiteBlockRepo(db database.TxQuerier) BlockRepository {
	return &sqliteBlockRepo{db: db}
}

// Create, INSERT OR IGNORE ile idempotent: aynı engeli iki kez koymak
// hata değildir.
func (r *sqliteBlockRepo) Create(ctx context.Context, blockerID, blockedID string) error {
	query := `INSERT OR IGNORE INTO blocks (blocker_id, blocked_id) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, blockerID, blockedID); err != nil {
		return fmt.Errorf("block create: %w", err)
	}
	return nil
}

func (r *sqliteBlockRepo) Delete(ctx context.Context, blockerID, blockedID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = ? AND blocked_id = ?`, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("block delete: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("block delete rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: block", pkg.ErrNotFound)
	}
	return nil
}

func (r *sqliteBlockRepo) IsBlockedEither(ctx context.Context, userA, userB string) (bool, error) {
	query := `SELECT COUNT(*) FROM blocks
	          WHERE (blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userA, userB, userB, userA).Scan(&count); err != nil {
		return false, fmt.Errorf("block check: %w", err)
	}
	return count > 0, nil
}

func (r *sqliteBlockRepo) ListBlocked(ctx context.Context, blockerID string) ([]models.PublicProfile, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.bio, u.status, u.created_at
		FROM blocks b
		JOIN users u ON u.id = b.blocked_id
		WHERE b.blocker_id = ?
		ORDER BY b.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, blockerID)
	if err != nil {
		return nil, fmt.Errorf("block list: %w", err)
	}
	defer rows.Close()

	profiles := []models.PublicProfile{}
	for rows.Next() {
		var p models.PublicProfile
		if err := rows.Scan(
			&p.ID, &p.Username, &p.DisplayName, &p.AvatarURL, &p.Bio, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("block list scan: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
