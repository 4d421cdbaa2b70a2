package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/ws"
)

// ReactionService, tepki iş kuralları.
//
// React bir upsert'tir, toggle değil:
//   - Tepki yoksa → INSERT + sayaç +1
//   - Aynı türde tepki varsa → no-op, ErrAlreadyExists
//   - Farklı türde tepki varsa → tür yerinde değişir, sayaç DEĞİŞMEZ
//
// Sayaç her zaman kullanıcı başına tek satırı sayar; tür değişimi
// satır eklemediği için sayaca dokunmaz.
type ReactionService interface {
	React(ctx context.Context, userID string, parent models.ParentRef, reactionType models.ReactionType) (*models.Reaction, error)
	Unreact(ctx context.Context, userID string, parent models.ParentRef) error
	ListReactions(ctx context.Context, parent models.ParentRef) ([]models.ReactionGroup, error)
}

type reactionService struct {
	db           *sql.DB
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	blockRepo    repository.BlockRepository
	hub          ws.EventPublisher
}

func NewReactionService(
	db *sql.DB,
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	blockRepo repository.BlockRepository,
	hub ws.EventPublisher,
) ReactionService {
	return &reactionService{
		db:           db,
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		blockRepo:    blockRepo,
		hub:          hub,
	}
}

// React, upsert semantiğiyle tepki bırakır.
func (s *reactionService) React(ctx context.Context, userID string, parent models.ParentRef, reactionType models.ReactionType) (*models.Reaction, error) {
	if err := parent.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if !models.ValidReactionType(reactionType) {
		return nil, fmt.Errorf("%w: invalid reaction type: %q", pkg.ErrBadRequest, reactionType)
	}

	authorID, err := s.targetAuthor(ctx, parent)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: %s not found", pkg.ErrNotFound, parent.Kind)
	}

	existing, err := s.reactionRepo.GetByParentAndUser(ctx, parent, userID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.Type == reactionType {
			// Aynı tür tekrar gönderildi; hiçbir şey değişmez.
			return nil, fmt.Errorf("%w: reaction already exists", pkg.ErrAlreadyExists)
		}

		// Tür değişimi satır sayısını korur — sayaç güncellenmez.
		if err := s.reactionRepo.UpdateType(ctx, existing.ID, reactionType); err != nil {
			return nil, err
		}
		existing.Type = reactionType

		s.broadcastUpdate(ctx, parent)
		return existing, nil
	}

	reaction := &models.Reaction{
		UserID: userID,
		Parent: parent,
		Type:   reactionType,
	}

	// INSERT ve sayaç artışı tek transaction: satır yazılıp sayaç
	// artmadan kalmaz. Eşzamanlı çifte INSERT unique index'e takılır;
	// o durumda sayaç da artmamış olur.
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		reactionRepo := repository.NewSQLiteReactionRepo(tx)

		if err := reactionRepo.Create(ctx, reaction); err != nil {
			return err
		}
		return s.incrementCounter(ctx, tx, parent, 1)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastUpdate(ctx, parent)
	return reaction, nil
}

// Unreact, kullanıcının tepkisini kaldırır. Tepki yoksa ErrNotFound.
func (s *reactionService) Unreact(ctx context.Context, userID string, parent models.ParentRef) error {
	if err := parent.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.targetAuthor(ctx, parent); err != nil {
		return err
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		reactionRepo := repository.NewSQLiteReactionRepo(tx)

		if err := reactionRepo.Delete(ctx, parent, userID); err != nil {
			return err
		}
		return s.incrementCounter(ctx, tx, parent, -1)
	})
	if err != nil {
		return err
	}

	s.broadcastUpdate(ctx, parent)
	return nil
}

// ListReactions, {type, count, users} gruplarını döner.
func (s *reactionService) ListReactions(ctx context.Context, parent models.ParentRef) ([]models.ReactionGroup, error) {
	if err := parent.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.targetAuthor(ctx, parent); err != nil {
		return nil, err
	}

	return s.reactionRepo.GroupByParent(ctx, parent)
}

// ─── Private Helpers ───

// targetAuthor, hedef entity'nin varlığını doğrular ve yazarını döner.
func (s *reactionService) targetAuthor(ctx context.Context, parent models.ParentRef) (string, error) {
	switch parent.Kind {
	case models.ParentPost:
		post, err := s.postRepo.GetByID(ctx, parent.ID)
		if err != nil {
			return "", err
		}
		return post.AuthorID, nil
	case models.ParentComment:
		node, err := s.commentRepo.GetByID(ctx, parent.ID)
		if err != nil {
			return "", err
		}
		return node.AuthorID, nil
	default:
		return "", fmt.Errorf("%w: invalid parent kind", pkg.ErrBadRequest)
	}
}

func (s *reactionService) incrementCounter(ctx context.Context, tx *sql.Tx, parent models.ParentRef, delta int) error {
	switch parent.Kind {
	case models.ParentPost:
		return repository.NewSQLitePostRepo(tx).IncrementReactions(ctx, parent.ID, delta)
	case models.ParentComment:
		return repository.NewSQLiteCommentRepo(tx).IncrementReactions(ctx, parent.ID, delta)
	default:
		return fmt.Errorf("invalid parent kind: %q", parent.Kind)
	}
}

func (s *reactionService) broadcastUpdate(ctx context.Context, parent models.ParentRef) {
	if s.hub == nil {
		return
	}

	groups, err := s.reactionRepo.GroupByParent(ctx, parent)
	if err != nil {
		return // broadcast best-effort, asıl işlem zaten commit edildi
	}

	s.hub.BroadcastToAll(ws.Event{
		Op: ws.OpReactionUpdate,
		Data: map[string]any{
			"parent":    parent,
			"reactions": groups,
		},
	})
}
