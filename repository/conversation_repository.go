package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// ConversationRepository, sohbet ve üyelik tabloları.
//
// Direct sohbetin tekilliği DB'deki partial unique index'e dayanır;
// Create UNIQUE ihlalinde pkg.ErrAlreadyExists döner ve çağıran taraf
// kaydı GetDirectByKey ile bir kez yeniden okur.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// GetDirectByKey, kayıt yoksa (nil, nil) döner; yokluk hata değildir.
	GetDirectByKey(ctx context.Context, directKey string) (*models.Conversation, error)
	// AddMember idempotent'tir (INSERT OR IGNORE).
	AddMember(ctx context.Context, conversationID, userID string) error
	RemoveMember(ctx context.Context, conversationID, userID string) error
	IsMember(ctx context.Context, conversationID, userID string) (bool, error)
	MemberIDs(ctx context.Context, conversationID string) ([]string, error)
	// ListForUser, kullanıcının üye olduğu sohbetleri son mesaj
	// zamanına göre döner.
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	// MembersByConversations, batch üye yüklemesi: map[convID] → userIDs.
	MembersByConversations(ctx context.Context, conversationIDs []string) (map[string][]string, error)
	Delete(ctx context.Context, id string) error
}
