package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// CommentRepository, yorum ağacı tablosu işlemleri.
//
// Ağaç gezinmesi repository'de değil service'tedir: ChildIDs tek bir
// seviyenin çocuk id'lerini döner, service bunu work-list ile katman
// katman çağırıp alt ağacı toplar. Recursive SQL yerine bu yaklaşım
// seçildi; adım sayısı ağacın derinliğiyle sınırlı kalır ve her adım
// sıradan bir IN sorgusudur.
type CommentRepository interface {
	Create(ctx context.Context, node *models.CommentNode) error
	GetByID(ctx context.Context, id string) (*models.CommentNode, error)
	// ListByParent, bir post'un veya yorumun doğrudan çocuklarını
	// en yeniden eskiye cursor pagination ile döner.
	ListByParent(ctx context.Context, parent models.ParentRef, before string, limit int) ([]models.CommentNode, error)
	// ChildIDs, verilen yorum id'lerinin doğrudan çocuk id'lerini döner.
	ChildIDs(ctx context.Context, parentIDs []string) ([]string, error)
	// IDsByParent, ebeveynin doğrudan çocuk id'lerini döner
	// (post silme akışının başlangıç kümesi).
	IDsByParent(ctx context.Context, parent models.ParentRef) ([]string, error)
	UpdateText(ctx context.Context, id, text string) error
	SetFrozen(ctx context.Context, id string, frozen bool) error
	IncrementReplies(ctx context.Context, id string, delta int) error
	IncrementReactions(ctx context.Context, id string, delta int) error
	RecountReactions(ctx context.Context, id string) error
	// DeleteByIDs, id kümesini tek DELETE ile düşürür; sayaçlara dokunmaz.
	DeleteByIDs(ctx context.Context, ids []string) error
	// CountByParent, canlı doğrudan çocuk sayısı. Sayaç senkronu kullanır.
	CountByParent(ctx context.Context, parent models.ParentRef) (int, error)
	// RootIDsByAuthor, kullanıcının yazdığı yorumların id'lerini döner
	// (hesap silme akışındaki subtree temizliği için).
	RootIDsByAuthor(ctx context.Context, authorID string) ([]string, error)
	// ResyncCounters, tüm replies_counter ve reaction_counter değerlerini
	// gerçek satır sayılarına eşitler; düzeltilen satır sayısını döner.
	ResyncCounters(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}
