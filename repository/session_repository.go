package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// SessionRepository, refresh token oturumları.
// DeleteExpired periyodik temizlik job'ı tarafından çağrılır ve
// silinen satır sayısını döner (loglama için).
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
