package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// AdminRepository, admin paneline özel okuma sorguları.
// Yazma işlemleri yoktur; moderasyon aksiyonları normal repo'lar
// üzerinden yürür.
type AdminRepository interface {
	// ListUsers, kullanıcı satırlarını içerik istatistikleriyle döner.
	ListUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error)
}
