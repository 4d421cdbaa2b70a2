package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/ws"
)

// AdminService, platform moderasyonu.
//
// Tüm operasyonlar platform admin yetkisi gerektirir; bu kontrolü
// middleware yapar, service çağrıldığında actor'ün admin olduğu
// varsayılır. İstisna: admin'ler birbirine dokunamaz — bir admin'i
// askıya almak veya silmek Forbidden döner, admin yetkisi DB'den
// elle kaldırılmadıkça.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error)
	// SetSuspended, hesabı askıya alır/geri açar. Askıya alınan
	// kullanıcının tüm oturumları düşürülür.
	SetSuspended(ctx context.Context, targetID string, suspended bool) error
	// DeleteUser, kullanıcıyı tüm içeriğiyle birlikte siler
	// (hesap silme akışıyla aynı cascade, şifre doğrulaması olmadan).
	DeleteUser(ctx context.Context, targetID string) error
	ListPosts(ctx context.Context, limit, offset int) ([]models.AdminPostListItem, error)
	// RemovePost ve RemoveComment, içerik moderasyonu; silme
	// semantiği normal silmeyle birebir aynıdır.
	RemovePost(ctx context.Context, postID string) error
	RemoveComment(ctx context.Context, commentID string) error
	GetStats(ctx context.Context) (*AdminStats, error)
}

// AdminStats, admin panel özet sayıları.
type AdminStats struct {
	UserCount    int `json:"user_count"`
	PostCount    int `json:"post_count"`
	CommentCount int `json:"comment_count"`
}

type adminService struct {
	db             *sql.DB
	adminRepo      repository.AdminRepository
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	sessionRepo    repository.SessionRepository
	postService    PostService
	commentService CommentService
	hub            ws.EventPublisher
}

func NewAdminService(
	db *sql.DB,
	adminRepo repository.AdminRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	sessionRepo repository.SessionRepository,
	postService PostService,
	commentService CommentService,
	hub ws.EventPublisher,
) AdminService {
	return &adminService{
		db:             db,
		adminRepo:      adminRepo,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		sessionRepo:    sessionRepo,
		postService:    postService,
		commentService: commentService,
		hub:            hub,
	}
}

func (s *adminService) ListUsers(ctx context.Context, limit, offset int) ([]models.AdminUserListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.adminRepo.ListUsers(ctx, limit, offset)
}

func (s *adminService) SetSuspended(ctx context.Context, targetID string, suspended bool) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsPlatformAdmin {
		return fmt.Errorf("%w: platform admins cannot be suspended", pkg.ErrForbidden)
	}

	if err := s.userRepo.SetSuspended(ctx, targetID, suspended); err != nil {
		return err
	}

	if suspended {
		// Oturumlar düşürülür; access token'lar kısa ömürlü olduğu
		// için kullanıcı en geç token süresi dolunca dışarıda kalır.
		if err := s.sessionRepo.DeleteByUserID(ctx, targetID); err != nil {
			return err
		}
		if s.hub != nil {
			s.hub.BroadcastToUser(targetID, ws.Event{Op: ws.OpAccountSuspend, Data: nil})
		}
	}

	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, targetID string) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsPlatformAdmin {
		return fmt.Errorf("%w: platform admins cannot be deleted", pkg.ErrForbidden)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		userRepo := repository.NewSQLiteUserRepo(tx)
		postRepo := repository.NewSQLitePostRepo(tx)
		commentRepo := repository.NewSQLiteCommentRepo(tx)
		reactionRepo := repository.NewSQLiteReactionRepo(tx)

		parents, err := reactionRepo.DeleteByUser(ctx, targetID)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if err := recountParent(ctx, postRepo, commentRepo, parent); err != nil && !errors.Is(err, pkg.ErrNotFound) {
				return err
			}
		}

		postIDs, err := postRepo.IDsByAuthor(ctx, targetID)
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := deletePostTreeTx(ctx, postRepo, commentRepo, reactionRepo, postID); err != nil {
				return err
			}
		}

		commentIDs, err := commentRepo.RootIDsByAuthor(ctx, targetID)
		if err != nil {
			return err
		}
		for _, commentID := range commentIDs {
			node, err := commentRepo.GetByID(ctx, commentID)
			if errors.Is(err, pkg.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := deleteCommentTreeTx(ctx, postRepo, commentRepo, reactionRepo, node); err != nil {
				return err
			}
		}

		return userRepo.Delete(ctx, targetID)
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserDelete, Data: map[string]any{"id": targetID}})
	}

	return nil
}

func (s *adminService) ListPosts(ctx context.Context, limit, offset int) ([]models.AdminPostListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.ListAdmin(ctx, limit, offset)
}

func (s *adminService) RemovePost(ctx context.Context, postID string) error {
	return s.postService.DeletePostAsAdmin(ctx, postID)
}

func (s *adminService) RemoveComment(ctx context.Context, commentID string) error {
	return s.commentService.DeleteNodeAsAdmin(ctx, commentID)
}

func (s *adminService) GetStats(ctx context.Context) (*AdminStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		UserCount:    users,
		PostCount:    posts,
		CommentCount: comments,
	}, nil
}
