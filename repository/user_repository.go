// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL yazmaz; repository interface'i üzerinden
// çalışır. Interface'in iki getirisi var: mock ile DB'siz test ve
// implementasyondan bağımsız service kodu (Dependency Inversion).
//
// Go'da interface implicit'tir: struct, interface'deki tüm method'ları
// taşıyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// UserRepository, kullanıcı tablosu işlemleri.
//
// context.Context, iptal sinyali ve deadline taşır: client bağlantıyı
// koparırsa devam eden DB sorgusu da durur.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIDs, id kümesi için toplu yükleme. Liste zenginleştirmede
	// N+1 sorgudan kaçınmak için kullanılır.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, userID string, status models.UserStatus) error
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
	UpdateEmail(ctx context.Context, userID string, email *string) error
	// SetVerified, e-posta doğrulama akışının sonucunu yazar.
	SetVerified(ctx context.Context, userID string, verified bool) error
	// SetTwoFA, iki adımlı doğrulamayı açar/kapatır.
	SetTwoFA(ctx context.Context, userID string, enabled bool) error
	SetSuspended(ctx context.Context, userID string, suspended bool) error
	SearchByUsername(ctx context.Context, prefix string, limit int) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	// Delete, kullanıcı satırını siler. FK cascade sessions, reactions
	// gibi bağımlı kayıtları düşürür; sayaç düzeltmeleri service
	// katmanındaki hesap silme akışında yapılır.
	Delete(ctx context.Context, id string) error
}
