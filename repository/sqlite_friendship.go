// FriendshipRepository SQLite implementasyonu.
//
// Arkadaşlık tablosu tek yönlü kayıt tutar (requester → addressee).
// Accepted arkadaş listesi için çift yönlü UNION sorgusu kullanılır;
// karşı tarafın profili JOIN ile FriendshipWithUser DTO'suna eklenir.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

type sqliteFriendshipRepo struct {
	db database.TxQuerier
}

func NewSQLiteFriendshipRepo(db database.TxQuerier) FriendshipRepository {
	return &sqliteFriendshipRepo{db: db}
}

func (r *sqliteFriendshipRepo) Create(ctx context.Context, f *models.Friendship) error {
	query := `INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, f.ID, f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: friend request", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("friendship create: %w", err)
	}
	return nil
}

func (r *sqliteFriendshipRepo) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	query := `SELECT id, requester_id, addressee_id, status, created_at, updated_at
	          FROM friendships WHERE id = ?`

	var f models.Friendship
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: friendship %s", pkg.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("friendship get by id: %w", err)
	}
	return &f, nil
}

func (r *sqliteFriendshipRepo) GetByPair(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	query := `SELECT id, requester_id, addressee_id, status, created_at, updated_at
	          FROM friendships
	          WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`

	var f models.Friendship
	err := r.db.QueryRowContext(ctx, query, userA, userB, userB, userA).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: friendship", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("friendship get by pair: %w", err)
	}
	return &f, nil
}

func (r *sqliteFriendshipRepo) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	query := `SELECT COUNT(*) FROM friendships
	          WHERE status = 'accepted'
	          AND ((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userA, userB, userB, userA).Scan(&count); err != nil {
		return false, fmt.Errorf("friendship are friends: %w", err)
	}
	return count > 0, nil
}

// ListFriends, iki yön için iki SELECT'in UNION'ı:
// 1) requester = me → addressee profili
// 2) addressee = me → requester profili
func (r *sqliteFriendshipRepo) ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, 1 AS outgoing, f.created_at AS created_at,
		       u.id, u.username, u.display_name, u.avatar_url, u.status
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.requester_id = ? AND f.status = 'accepted'

		UNION

		SELECT f.id, f.status, 0 AS outgoing, f.created_at AS created_at,
		       u.id, u.username, u.display_name, u.avatar_url, u.status
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = ? AND f.status = 'accepted'

		ORDER BY created_at DESC
	`

	return r.scanFriendshipList(ctx, query, userID, userID)
}

// ListIncoming, bana gelen bekleyen istekler; gönderen profili JOIN ile gelir.
func (r *sqliteFriendshipRepo) ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, 0 AS outgoing, f.created_at,
		       u.id, u.username, u.display_name, u.avatar_url, u.status
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = ? AND f.status = 'pending'
		ORDER BY f.created_at DESC
	`

	return r.scanFriendshipList(ctx, query, userID)
}

// ListOutgoing, benim gönderdiğim bekleyen istekler.
func (r *sqliteFriendshipRepo) ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, 1 AS outgoing, f.created_at,
		       u.id, u.username, u.display_name, u.avatar_url, u.status
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.requester_id = ? AND f.status = 'pending'
		ORDER BY f.created_at DESC
	`

	return r.scanFriendshipList(ctx, query, userID)
}

func (r *sqliteFriendshipRepo) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	query := `UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("friendship update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("friendship update status rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: friendship %s", pkg.ErrNotFound, id)
	}

	return nil
}

func (r *sqliteFriendshipRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM friendships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("friendship delete: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("friendship delete rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: friendship %s", pkg.ErrNotFound, id)
	}

	return nil
}

// DeleteByPair, kayıt bulunmazsa hata dönmez; engelleme akışı
// "varsa temizle" semantiği ister.
func (r *sqliteFriendshipRepo) DeleteByPair(ctx context.Context, userA, userB string) error {
	query := `DELETE FROM friendships
	          WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`

	if _, err := r.db.ExecContext(ctx, query, userA, userB, userB, userA); err != nil {
		return fmt.Errorf("friendship delete by pair: %w", err)
	}
	return nil
}

func (r *sqliteFriendshipRepo) CountFriends(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM friendships
	          WHERE status = 'accepted' AND (requester_id = ? OR addressee_id = ?)`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("friendship count: %w", err)
	}
	return count, nil
}

// scanFriendshipList, liste sorgularının ortak scan mantığı.
func (r *sqliteFriendshipRepo) scanFriendshipList(ctx context.Context, query string, args ...any) ([]models.FriendshipWithUser, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("friendship list: %w", err)
	}
	defer rows.Close()

	results := []models.FriendshipWithUser{}
	for rows.Next() {
		var fw models.FriendshipWithUser
		var displayName, avatarURL sql.NullString

		if err := rows.Scan(
			&fw.ID, &fw.Status, &fw.Outgoing, &fw.CreatedAt,
			&fw.UserID, &fw.Username, &displayName, &avatarURL, &fw.UserStatus,
		); err != nil {
			return nil, fmt.Errorf("friendship list scan: %w", err)
		}

		if displayName.Valid {
			fw.DisplayName = &displayName.String
		}
		if avatarURL.Valid {
			fw.AvatarURL = &avatarURL.String
		}

		results = append(results, fw)
	}

	return results, rows.Err()
}
