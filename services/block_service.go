package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/repository"
)

// BlockService, engelleme iş kuralları.
//
// Engelleme mevcut arkadaşlığı da düşürür; iki işlem tek
// transaction'dadır. Engelin etkisi iki yönlüdür ve diğer service'ler
// IsBlockedEither ile kontrol eder — bu service yalnızca kayıtları
// yönetir.
type BlockService interface {
	// Block idempotent'tir: zaten engelliyse sessizce başarılı döner.
	Block(ctx context.Context, userID, targetID string) error
	// Unblock, engel yoksa ErrNotFound döner.
	Unblock(ctx context.Context, userID, targetID string) error
	ListBlocked(ctx context.Context, userID string) ([]models.PublicProfile, error)
}

type blockService struct {
	db             *sql.DB
	blockRepo      repository.BlockRepository
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
}

func NewBlockService(
	db *sql.DB,
	blockRepo repository.BlockRepository,
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
) BlockService {
	return &blockService{
		db:             db,
		blockRepo:      blockRepo,
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
	}
}

func (s *blockService) Block(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return fmt.Errorf("%w: you cannot block yourself", pkg.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	// Engel kaydı + arkadaşlık temizliği atomik: engel yazılıp
	// arkadaşlık askıda kalmaz.
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		blockRepo := repository.NewSQLiteBlockRepo(tx)
		friendshipRepo := repository.NewSQLiteFriendshipRepo(tx)

		if err := blockRepo.Create(ctx, userID, targetID); err != nil {
			return err
		}
		return friendshipRepo.DeleteByPair(ctx, userID, targetID)
	})
}

func (s *blockService) Unblock(ctx context.Context, userID, targetID string) error {
	return s.blockRepo.Delete(ctx, userID, targetID)
}

func (s *blockService) ListBlocked(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	return s.blockRepo.ListBlocked(ctx, userID)
}
