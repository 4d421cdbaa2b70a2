// PasswordResetRepository interface tanımı.
package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// PasswordResetRepository, şifre sıfırlama token kayıtları.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// GetByTokenHash, SHA256 hash'e göre kaydı bulur.
	// Bulunamazsa pkg.ErrNotFound döner.
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)

	// MarkUsed, başarılı reset sonrası token'ı tek kullanımlık kılar.
	MarkUsed(ctx context.Context, id string) error

	// DeleteByUserID, kullanıcının TÜM reset token'larını siler;
	// yeni token üretmeden önce eskileri düşürmek için.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired, süresi dolmuş token'ları temizler; periyodik
	// bakım job'ı çağırır, silinen satır sayısını döner.
	DeleteExpired(ctx context.Context) (int64, error)

	// GetLatestByUserID, cooldown kontrolü için en yeni token'ı döner.
	// Token yoksa pkg.ErrNotFound döner.
	GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error)
}
