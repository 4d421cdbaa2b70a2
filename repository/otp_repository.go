// OTPRepository interface tanımı.
package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// OTPRepository, e-posta ile gönderilen tek kullanımlık kod kayıtları.
// Hem e-posta doğrulama hem 2FA akışı aynı tabloyu kullanır; otp_type
// ayırır.
type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error

	// GetLatest, kullanıcının verilen türdeki en yeni kodunu döner.
	// Kayıt yoksa pkg.ErrNotFound döner.
	GetLatest(ctx context.Context, userID string, otpType models.OTPType) (*models.OTP, error)

	// DeleteByUser, kullanıcının verilen türdeki TÜM kodlarını siler;
	// başarılı doğrulama sonrası ve yeni kod üretmeden önce çağrılır.
	DeleteByUser(ctx context.Context, userID string, otpType models.OTPType) error

	// DeleteExpired, süresi dolmuş kodları temizler; periyodik bakım
	// job'ı çağırır, silinen satır sayısını döner.
	DeleteExpired(ctx context.Context) (int64, error)
}
