package repository

import (
	"context"

	"github.com/akinalp/meydan/models"
)

// BlockRepository, engelleme kayıtları.
//
// Kayıt tek yönlüdür ama IsBlockedEither iki yönü birden kontrol eder:
// taraflardan biri diğerini engellediyse etkileşim kapalıdır.
type BlockRepository interface {
	// Create idempotent'tir: kayıt zaten varsa sessizce geçer.
	Create(ctx context.Context, blockerID, blockedID string) error
	// Delete, engel yoksa pkg.ErrNotFound döner.
	Delete(ctx context.Context, blockerID, blockedID string) error
	IsBlockedEither(ctx context.Context, userA, userB string) (bool, error)
	ListBlocked(ctx context.Context, blockerID string) ([]models.PublicProfile, error)
}
