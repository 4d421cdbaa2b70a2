// OTPRepository'nin SQLite implementasyonu.
// Kod plaintext olarak SAKLANMAZ; yalnızca SHA256 hash'i yaşar.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

type sqliteOTPRepo struct {
	db database.TxQuerier
}

func NewSQLiteOTPRepo(db database.TxQuerier) OTPRepository {
	return &sqliteOTPRepo{db: db}
}

func (r *sqliteOTPRepo) Create(ctx context.Context, otp *models.OTP) error {
	query := `INSERT INTO otps (user_id, otp_hash, otp_type, expires_at)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, otp.UserID, otp.OTPHash, otp.OTPType, otp.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}

	return nil
}

func (r *sqliteOTPRepo) GetLatest(ctx context.Context, userID string, otpType models.OTPType) (*models.OTP, error) {
	query := `SELECT id, user_id, otp_hash, otp_type, expires_at, created_at
		FROM otps WHERE user_id = ? AND otp_type = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`

	otp := &models.OTP{}
	err := r.db.QueryRowContext(ctx, query, userID, otpType).Scan(
		&otp.ID, &otp.UserID, &otp.OTPHash, &otp.OTPType, &otp.ExpiresAt, &otp.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest otp: %w", err)
	}

	return otp, nil
}

func (r *sqliteOTPRepo) DeleteByUser(ctx context.Context, userID string, otpType models.OTPType) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE user_id = ? AND otp_type = ?`, userID, otpType)
	if err != nil {
		return fmt.Errorf("failed to delete user's otps: %w", err)
	}
	return nil
}

func (r *sqliteOTPRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected, nil
}
