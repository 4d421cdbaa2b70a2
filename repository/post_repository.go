package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// PostRepository, gönderi tablosu işlemleri.
//
// Sayaç method'ları atomik SQL increment'leridir; mevcut değeri okuyup
// geri yazmak yoktur. Eşzamanlı iki yorum eklendiğinde ikisi de
// sayaca yansır.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// ListFeed, created_at üzerinden cursor pagination. before boş ise
	// en yeni kayıtlardan başlar.
	ListFeed(ctx context.Context, before string, limit int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error)
	UpdateText(ctx context.Context, id, text string) error
	SetFrozen(ctx context.Context, id string, frozen bool) error
	SetAllowComments(ctx context.Context, id string, allow bool) error
	IncrementComments(ctx context.Context, id string, delta int) error
	IncrementReactions(ctx context.Context, id string, delta int) error
	// RecountReactions, sayacı reactions tablosundaki gerçek satır
	// sayısına eşitler. Tepki silme ve periyodik senkron kullanır.
	RecountReactions(ctx context.Context, id string) error
	// ResyncCounters, tüm sayaçları gerçek satır sayılarına eşitler;
	// periyodik bakım job'ı kullanır, düzeltilen satır sayısını döner.
	ResyncCounters(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	// Search, posts_fts üzerinden tam metin arama yapar.
	Search(ctx context.Context, query string, limit, offset int) ([]models.Post, int, error)
	Count(ctx context.Context) (int, error)
	ListAdmin(ctx context.Context, limit, offset int) ([]models.AdminPostListItem, error)
	IDsByAuthor(ctx context.Context, authorID string) ([]string, error)
	// AddTags, gönderiye etiketlenen kullanıcıları yazar. Aynı kullanıcı
	// ikinci kez eklenirse sessizce yok sayılır (INSERT OR IGNORE).
	AddTags(ctx context.Context, postID string, userIDs []string) error
	// TagsByPosts, verilen gönderiler için etiketlenen kullanıcı
	// id'lerini toplu yükler. Liste zenginleştirme kullanır.
	TagsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error)
}
