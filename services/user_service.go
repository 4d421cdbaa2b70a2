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
	"golang.org/x/crypto/bcrypt"
)

// UserService, profil ve hesap iş kuralları.
type UserService interface {
	GetMe(ctx context.Context, userID string) (*models.User, error)
	// GetProfile, başka bir kullanıcının public profilini döner.
	// Taraflar arasında engel varsa NotFound.
	GetProfile(ctx context.Context, viewerID, userID string) (*models.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdateCover(ctx context.Context, userID, coverURL string) error
	UpdatePresence(ctx context.Context, userID string, status models.UserStatus) error
	// SearchUsers, username prefix araması. Engelli taraflar sonuçtan elenir.
	SearchUsers(ctx context.Context, viewerID, prefix string, limit int) ([]models.PublicProfile, error)
	// DeleteAccount, şifre doğrulamasının ardından kullanıcıyı ve tüm
	// izlerini kaldırır: gönderiler, yorum ağaçları, tepkiler, oturumlar.
	DeleteAccount(ctx context.Context, userID string, req *models.DeleteAccountRequest) error
}

type userService struct {
	db           *sql.DB
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository
	blockRepo    repository.BlockRepository
	hub          ws.EventPublisher
}

func NewUserService(
	db *sql.DB,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	reactionRepo repository.ReactionRepository,
	blockRepo repository.BlockRepository,
	hub ws.EventPublisher,
) UserService {
	return &userService{
		db:           db,
		userRepo:     userRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		blockRepo:    blockRepo,
		hub:          hub,
	}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, viewerID, userID string) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if viewerID != "" && viewerID != userID {
		blocked, err := s.blockRepo.IsBlockedEither(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
		}
	}

	profile := user.Public()
	return &profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Partial update: yalnızca non-nil alanlar değişir.
	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Language != nil {
		user.Language = *req.Language
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserUpdate, Data: user.Public()})
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.AvatarURL = &avatarURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserUpdate, Data: user.Public()})
	}

	return nil
}

func (s *userService) UpdateCover(ctx context.Context, userID, coverURL string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.CoverURL = &coverURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update cover: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserUpdate, Data: user.Public()})
	}

	return nil
}

func (s *userService) UpdatePresence(ctx context.Context, userID string, status models.UserStatus) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{
			Op:   ws.OpPresence,
			Data: map[string]any{"user_id": userID, "status": status},
		})
	}

	return nil
}

func (s *userService) SearchUsers(ctx context.Context, viewerID, prefix string, limit int) ([]models.PublicProfile, error) {
	if len(prefix) < 2 {
		return nil, fmt.Errorf("%w: search query must be at least 2 characters", pkg.ErrBadRequest)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.userRepo.SearchByUsername(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}

	result := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		if viewerID != "" && u.ID != viewerID {
			blocked, err := s.blockRepo.IsBlockedEither(ctx, viewerID, u.ID)
			if err != nil {
				return nil, err
			}
			if blocked {
				continue
			}
		}
		result = append(result, u.Public())
	}

	return result, nil
}

// DeleteAccount, kullanıcının tüm içeriğini tek transaction'da kaldırır.
//
// Sıra:
//  1. Kullanıcının tepkileri silinir, etkilenen hedeflerin sayaçları
//     yeniden sayılır.
//  2. Kullanıcının gönderileri alt ağaçlarıyla birlikte silinir.
//  3. Kullanıcının başka yerlerdeki yorumları subtree silme kuralıyla
//     (ebeveyn sayacı -1) kaldırılır.
//  4. Kullanıcı satırı silinir; oturumlar, arkadaşlıklar ve sohbet
//     üyelikleri FK cascade ile düşer.
func (s *userService) DeleteAccount(ctx context.Context, userID string, req *models.DeleteAccountRequest) error {
	if req.Password == "" {
		return fmt.Errorf("%w: password is required", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return fmt.Errorf("%w: password is incorrect", pkg.ErrUnauthorized)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		userRepo := repository.NewSQLiteUserRepo(tx)
		postRepo := repository.NewSQLitePostRepo(tx)
		commentRepo := repository.NewSQLiteCommentRepo(tx)
		reactionRepo := repository.NewSQLiteReactionRepo(tx)

		// 1. Tepkiler: silinen her satırın hedefi yeniden sayılır.
		// Hedef bu transaction'ın ilerleyen adımlarında silinecekse
		// recount boşa gider, zararı yok.
		parents, err := reactionRepo.DeleteByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if err := recountParent(ctx, postRepo, commentRepo, parent); err != nil && !errors.Is(err, pkg.ErrNotFound) {
				return err
			}
		}

		// 2. Gönderiler alt ağaçlarıyla birlikte.
		postIDs, err := postRepo.IDsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := deletePostTreeTx(ctx, postRepo, commentRepo, reactionRepo, postID); err != nil {
				return err
			}
		}

		// 3. Başka içeriklerin altındaki yorumlar. Bir kısmı 2. adımda
		// zaten silinmiş olabilir; GetByID ErrNotFound dönerse atlanır.
		commentIDs, err := commentRepo.RootIDsByAuthor(ctx, userID)
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

		// 4. Kullanıcı satırı; bağımlı kayıtlar FK cascade ile düşer.
		return userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserDelete, Data: map[string]any{"id": userID}})
	}

	return nil
}

// ─── Private Helpers ───

func recountParent(ctx context.Context, postRepo repository.PostRepository, commentRepo repository.CommentRepository, parent models.ParentRef) error {
	switch parent.Kind {
	case models.ParentPost:
		return postRepo.RecountReactions(ctx, parent.ID)
	case models.ParentComment:
		return commentRepo.RecountReactions(ctx, parent.ID)
	default:
		return fmt.Errorf("invalid parent kind: %q", parent.Kind)
	}
}

// collectSubtree, work-list ile düğümlerin tüm alt ağaç id'lerini toplar.
func collectSubtree(ctx context.Context, commentRepo repository.CommentRepository, roots []string) ([]string, error) {
	all := append([]string{}, roots...)
	frontier := roots
	for len(frontier) > 0 {
		children, err := commentRepo.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		all = append(all, children...)
		frontier = children
	}
	return all, nil
}

func deletePostTreeTx(ctx context.Context, postRepo repository.PostRepository, commentRepo repository.CommentRepository, reactionRepo repository.ReactionRepository, postID string) error {
	roots, err := commentRepo.IDsByParent(ctx, models.PostParent(postID))
	if err != nil {
		return err
	}

	all, err := collectSubtree(ctx, commentRepo, roots)
	if err != nil {
		return err
	}

	if err := reactionRepo.DeleteByParents(ctx, models.ParentComment, all); err != nil {
		return err
	}
	if err := reactionRepo.DeleteByParents(ctx, models.ParentPost, []string{postID}); err != nil {
		return err
	}
	if err := commentRepo.DeleteByIDs(ctx, all); err != nil {
		return err
	}
	return postRepo.Delete(ctx, postID)
}

func deleteCommentTreeTx(ctx context.Context, postRepo repository.PostRepository, commentRepo repository.CommentRepository, reactionRepo repository.ReactionRepository, node *models.CommentNode) error {
	all, err := collectSubtree(ctx, commentRepo, []string{node.ID})
	if err != nil {
		return err
	}

	if err := reactionRepo.DeleteByParents(ctx, models.ParentComment, all); err != nil {
		return err
	}
	if err := commentRepo.DeleteByIDs(ctx, all); err != nil {
		return err
	}

	// Ebeveyn sayacı yalnızca 1 azalır; ebeveynin kendisi silinmişse
	// (aynı cascade içinde) ErrNotFound yutulur.
	var decErr error
	switch node.Parent.Kind {
	case models.ParentPost:
		decErr = postRepo.IncrementComments(ctx, node.Parent.ID, -1)
	case models.ParentComment:
		decErr = commentRepo.IncrementReplies(ctx, node.Parent.ID, -1)
	default:
		return fmt.Errorf("invalid parent kind: %q", node.Parent.Kind)
	}
	if decErr != nil && !errors.Is(decErr, pkg.ErrNotFound) {
		return decErr
	}
	return nil
}
