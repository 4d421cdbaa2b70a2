package repository

import "context"

// ReadStateRepository, sohbet başına okuma imi.
type ReadStateRepository interface {
	// Upsert, son okunan mesajı günceller, kayıt yoksa oluşturur.
	Upsert(ctx context.Context, conversationID, userID, messageID string) error
	// LastRead, okunma imi yoksa (nil, nil) döner.
	LastRead(ctx context.Context, conversationID, userID string) (*string, error)
}
