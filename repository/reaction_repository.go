package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// ReactionRepository, tepki tablosu işlemleri.
//
// Upsert mantığı (aynı tür no-op, farklı tür overwrite) service
// katmanındadır; repository yalnızca tekil adımları sunar.
type ReactionRepository interface {
	// GetByParentAndUser, kullanıcının entity üzerindeki mevcut tepkisini
	// döner. Tepki yoksa (nil, nil) döner; bu bir hata değildir.
	GetByParentAndUser(ctx context.Context, parent models.ParentRef, userID string) (*models.Reaction, error)
	Create(ctx context.Context, reaction *models.Reaction) error
	// UpdateType, mevcut satırın türünü yerinde değiştirir; satır sayısı
	// ve dolayısıyla sayaç değişmez.
	UpdateType(ctx context.Context, id string, newType models.ReactionType) error
	// Delete, kullanıcının tepkisini kaldırır. Satır yoksa pkg.ErrNotFound.
	Delete(ctx context.Context, parent models.ParentRef, userID string) error
	// GroupByParent, tepkileri {type, count, users} olarak gruplar.
	GroupByParent(ctx context.Context, parent models.ParentRef) ([]models.ReactionGroup, error)
	// GroupByParents, liste zenginleştirme için batch yükleme.
	// N+1 problemini önler: 50 entity için tek IN sorgusu.
	GroupByParents(ctx context.Context, kind models.ParentKind, ids []string) (map[string][]models.ReactionGroup, error)
	CountByParent(ctx context.Context, parent models.ParentRef) (int, error)
	// DeleteByParents, alt ağaç silinirken düğümlerin tepkilerini toplu düşürür.
	DeleteByParents(ctx context.Context, kind models.ParentKind, ids []string) error
	// DeleteByUser, hesap silme akışında kullanıcının tüm tepkilerini
	// düşürür ve sayaçları düzeltilecek ebeveynleri döner.
	DeleteByUser(ctx context.Context, userID string) ([]models.ParentRef, error)
}
