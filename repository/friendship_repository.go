// FriendshipRepository interface.
package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// FriendshipRepository, arkadaşlık kayıtları.
//
// Sorgu mantığı:
// - Accepted arkadaşlar: requester_id = me OR addressee_id = me (çift yönlü)
// - Gelen istekler: addressee_id = me AND status = 'pending'
// - Giden istekler: requester_id = me AND status = 'pending'
type FriendshipRepository interface {
	// Create, yeni kayıt oluşturur (status = pending). ID'yi service üretir.
	Create(ctx context.Context, friendship *models.Friendship) error

	// GetByID, bulunamazsa pkg.ErrNotFound döner.
	GetByID(ctx context.Context, id string) (*models.Friendship, error)

	// GetByPair, iki kullanıcı arasındaki kaydı yön fark etmeksizin döner.
	// Bulunamazsa pkg.ErrNotFound.
	GetByPair(ctx context.Context, userA, userB string) (*models.Friendship, error)

	// AreFriends, aralarında accepted kayıt var mı. Grup sohbeti
	// kurulumundaki mutual-friend kontrolü kullanır.
	AreFriends(ctx context.Context, userA, userB string) (bool, error)

	ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)

	// UpdateStatus, pending → accepted geçişi için.
	UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error

	// Delete, istek reddetme ve arkadaşlıktan çıkarma için.
	Delete(ctx context.Context, id string) error

	// DeleteByPair, iki kullanıcı arasındaki kaydı yön fark etmeksizin siler.
	// Kayıt yoksa sessizce döner; engelleme akışı "varsa temizle" ister.
	DeleteByPair(ctx context.Context, userA, userB string) error

	CountFriends(ctx context.Context, userID string) (int, error)
}
