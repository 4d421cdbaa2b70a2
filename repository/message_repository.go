package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// MessageRepository, sohbet mesajları.
//
// ListByConversation cursor-based pagination kullanır: beforeID
// verilirse o mesajdan eski kayıtlar döner. Offset pagination'da yeni
// mesaj gelince sayfa kayar; cursor kararlı sonuç verir.
type MessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByID(ctx context.Context, id string) (*models.ChatMessage, error)
	ListByConversation(ctx context.Context, conversationID, beforeID string, limit int) ([]models.ChatMessage, error)
	Delete(ctx context.Context, id string) error
	// LatestByConversations, sohbet listesi için son mesajların batch
	// yüklemesi: map[convID] → mesaj.
	LatestByConversations(ctx context.Context, conversationIDs []string) (map[string]models.ChatMessage, error)
	// CountUnread, last_read_message_id'den (yoksa baştan) sonra gelen,
	// kullanıcının kendisinin göndermediği mesajları sayar.
	CountUnread(ctx context.Context, conversationID, userID string) (int, error)
}
