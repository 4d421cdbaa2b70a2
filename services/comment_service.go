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

// CommentService, yorum ağacı iş kuralları.
//
// Ağaç yapısı: kök yorumlar bir post'a, reply'ler başka bir yoruma
// bağlanır. Silme işlemi düğümün TÜM alt ağacını düşürür ve yalnızca
// doğrudan ebeveynin sayacını 1 azaltır — torunlar ebeveynin sayacında
// zaten yoktu.
type CommentService interface {
	// AddComment, bir post'un altına kök yorum ekler.
	AddComment(ctx context.Context, userID, postID string, req *models.CreateCommentRequest) (*models.CommentNode, error)
	// AddReply, mevcut bir yorumun altına reply ekler. Ebeveyn
	// donmuşsa sahibi dahil kimse reply ekleyemez.
	AddReply(ctx context.Context, userID, parentCommentID string, req *models.CreateCommentRequest) (*models.CommentNode, error)
	GetComment(ctx context.Context, viewerID, commentID string) (*models.CommentWithAuthor, error)
	// ListByParent, ebeveynin doğrudan çocuklarını author profili ve
	// gruplanmış reaksiyonlarla zenginleştirilmiş döner.
	ListByParent(ctx context.Context, viewerID string, parent models.ParentRef, before string, limit int) ([]models.CommentWithAuthor, error)
	// UpdateText, yorum metnini değiştirir. Yalnızca yazar.
	UpdateText(ctx context.Context, userID, commentID string, req *models.UpdateCommentRequest) (*models.CommentNode, error)
	// SetFrozen, yorumu dondurur/çözer. Yalnızca yazar.
	SetFrozen(ctx context.Context, userID, commentID string, frozen bool) error
	// DeleteNode, yorumu ve tüm alt ağacını siler. Yalnızca yazar.
	DeleteNode(ctx context.Context, userID, commentID string) error
	// DeleteNodeAsAdmin, yazarlık kontrolü olmadan siler; admin
	// moderasyon akışı kullanır.
	DeleteNodeAsAdmin(ctx context.Context, commentID string) error
}

type commentService struct {
	db           *sql.DB // DeleteNode ve ekleme akışları WithTx ister
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	reactionRepo repository.ReactionRepository
	blockRepo    repository.BlockRepository
	hub          ws.EventPublisher
	limiter      *CommentLimiter
}

// CommentLimiter, yorum flood koruması için opsiyonel sarmalayıcı.
// nil bırakılırsa limit uygulanmaz (testlerde kapalı).
type CommentLimiter struct {
	Allow           func(userID string) bool
	CooldownSeconds func(userID string) int
}

func NewCommentService(
	db *sql.DB,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	reactionRepo repository.ReactionRepository,
	blockRepo repository.BlockRepository,
	hub ws.EventPublisher,
	limiter *CommentLimiter,
) CommentService {
	return &commentService{
		db:           db,
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		userRepo:     userRepo,
		reactionRepo: reactionRepo,
		blockRepo:    blockRepo,
		hub:          hub,
		limiter:      limiter,
	}
}

// AddComment, post'a kök yorum ekler.
//
// Sıra önemlidir: önce post yüklenir (NotFound), sonra engel ve durum
// kontrolleri, en son WithTx içinde INSERT + sayaç artışı. Sayaç
// artışı atomik SQL increment'idir; eşzamanlı iki yorum ikisi de
// sayaca yansır.
func (s *commentService) AddComment(ctx context.Context, userID, postID string, req *models.CreateCommentRequest) (*models.CommentNode, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.checkFlood(userID); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Engelli taraflar birbirinin içeriğini görmez; Forbidden yerine
	// NotFound dönerek engel bilgisi sızdırılmaz.
	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, post.AuthorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}

	if post.IsFrozen {
		return nil, fmt.Errorf("%w: post is frozen", pkg.ErrForbidden)
	}
	if !post.AllowComments {
		return nil, fmt.Errorf("%w: comments are disabled on this post", pkg.ErrForbidden)
	}

	node := &models.CommentNode{
		AuthorID: userID,
		Parent:   models.PostParent(postID),
		Text:     req.Text,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		commentRepo := repository.NewSQLiteCommentRepo(tx)
		postRepo := repository.NewSQLitePostRepo(tx)

		if err := commentRepo.Create(ctx, node); err != nil {
			return err
		}
		return postRepo.IncrementComments(ctx, postID, 1)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ws.OpCommentCreate, node)

	return node, nil
}

// AddReply, yoruma reply ekler. Donmuş düğüme reply eklenemez —
// yasak yazarın kendisi için de geçerlidir.
func (s *commentService) AddReply(ctx context.Context, userID, parentCommentID string, req *models.CreateCommentRequest) (*models.CommentNode, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.checkFlood(userID); err != nil {
		return nil, err
	}

	parent, err := s.commentRepo.GetByID(ctx, parentCommentID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, parent.AuthorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: comment not found", pkg.ErrNotFound)
	}

	if parent.IsFrozen {
		return nil, fmt.Errorf("%w: comment is frozen", pkg.ErrForbidden)
	}

	node := &models.CommentNode{
		AuthorID: userID,
		Parent:   models.CommentParent(parentCommentID),
		Text:     req.Text,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		commentRepo := repository.NewSQLiteCommentRepo(tx)

		if err := commentRepo.Create(ctx, node); err != nil {
			return err
		}
		return commentRepo.IncrementReplies(ctx, parentCommentID, 1)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ws.OpCommentCreate, node)

	return node, nil
}

func (s *commentService) GetComment(ctx context.Context, viewerID, commentID string) (*models.CommentWithAuthor, error) {
	node, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		blocked, err := s.blockRepo.IsBlockedEither(ctx, viewerID, node.AuthorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, fmt.Errorf("%w: comment not found", pkg.ErrNotFound)
		}
	}

	author, err := s.userRepo.GetByID(ctx, node.AuthorID)
	if err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.GroupByParent(ctx, models.CommentParent(commentID))
	if err != nil {
		return nil, err
	}

	return &models.CommentWithAuthor{
		CommentNode: *node,
		Author:      author.Public(),
		Reactions:   reactions,
	}, nil
}

// ListByParent, doğrudan çocukları zenginleştirilmiş döner.
// Author profilleri ve reaksiyon grupları batch sorgularla yüklenir —
// 50 yorumluk sayfa için 2 ek sorgu, N+1 değil.
func (s *commentService) ListByParent(ctx context.Context, viewerID string, parent models.ParentRef, before string, limit int) ([]models.CommentWithAuthor, error) {
	if err := parent.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Ebeveynin varlığı doğrulanır; silinmiş post'un yorumları
	// listelenemez.
	if err := s.checkParentExists(ctx, parent); err != nil {
		return nil, err
	}

	nodes, err := s.commentRepo.ListByParent(ctx, parent, before, limit)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return []models.CommentWithAuthor{}, nil
	}

	ids := make([]string, 0, len(nodes))
	authorIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
		authorIDs = append(authorIDs, n.AuthorID)
	}

	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	reactionsByID, err := s.reactionRepo.GroupByParents(ctx, models.ParentComment, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.CommentWithAuthor, 0, len(nodes))
	for _, n := range nodes {
		item := models.CommentWithAuthor{
			CommentNode: n,
			Reactions:   []models.ReactionGroup{},
		}
		if author, ok := authors[n.AuthorID]; ok {
			item.Author = author.Public()
		}
		if groups, ok := reactionsByID[n.ID]; ok {
			item.Reactions = groups
		}
		result = append(result, item)
	}

	return result, nil
}

func (s *commentService) UpdateText(ctx context.Context, userID, commentID string, req *models.UpdateCommentRequest) (*models.CommentNode, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	node, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if node.AuthorID != userID {
		return nil, fmt.Errorf("%w: only the author can edit this comment", pkg.ErrForbidden)
	}

	if err := s.commentRepo.UpdateText(ctx, commentID, req.Text); err != nil {
		return nil, err
	}

	node.Text = req.Text

	s.broadcast(ws.OpCommentUpdate, node)

	return node, nil
}

func (s *commentService) SetFrozen(ctx context.Context, userID, commentID string, frozen bool) error {
	node, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if node.AuthorID != userID {
		return fmt.Errorf("%w: only the author can freeze this comment", pkg.ErrForbidden)
	}

	return s.commentRepo.SetFrozen(ctx, commentID, frozen)
}

// DeleteNode, yorumu ve alt ağacını siler.
func (s *commentService) DeleteNode(ctx context.Context, userID, commentID string) error {
	node, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if node.AuthorID != userID {
		return fmt.Errorf("%w: only the author can delete this comment", pkg.ErrForbidden)
	}

	return s.deleteSubtree(ctx, node)
}

// DeleteNodeAsAdmin, yazarlık kontrolü atlanır; çağıranın admin
// olduğunu handler/middleware garanti eder.
func (s *commentService) DeleteNodeAsAdmin(ctx context.Context, commentID string) error {
	node, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	return s.deleteSubtree(ctx, node)
}

// deleteSubtree, düğüm + alt ağaç silme çekirdeği.
//
// Alt ağaç recursion ile değil work-list ile toplanır: her turda bir
// SEVİYENİN çocuk id'leri tek IN sorgusuyla gelir, frontier onlarla
// değiştirilir. Derin zincirlerde stack taşma riski yoktur ve sorgu
// sayısı ağaç derinliğiyle sınırlıdır.
//
// Tüm adımlar tek transaction'dadır: toplama, reaksiyon temizliği,
// DELETE ve ebeveyn sayacının -1 düzeltmesi ya hep ya hiç çalışır.
// Ebeveyn sayacı yalnızca 1 azalır — silinen torunlar ebeveynin
// doğrudan çocuğu değildi, sayaçta da yoktular.
func (s *commentService) deleteSubtree(ctx context.Context, node *models.CommentNode) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		commentRepo := repository.NewSQLiteCommentRepo(tx)
		reactionRepo := repository.NewSQLiteReactionRepo(tx)
		postRepo := repository.NewSQLitePostRepo(tx)

		all := []string{node.ID}
		frontier := []string{node.ID}

		for len(frontier) > 0 {
			children, err := commentRepo.ChildIDs(ctx, frontier)
			if err != nil {
				return err
			}
			all = append(all, children...)
			frontier = children
		}

		if err := reactionRepo.DeleteByParents(ctx, models.ParentComment, all); err != nil {
			return err
		}

		if err := commentRepo.DeleteByIDs(ctx, all); err != nil {
			return err
		}

		switch node.Parent.Kind {
		case models.ParentPost:
			return postRepo.IncrementComments(ctx, node.Parent.ID, -1)
		case models.ParentComment:
			return commentRepo.IncrementReplies(ctx, node.Parent.ID, -1)
		default:
			return fmt.Errorf("invalid parent kind: %q", node.Parent.Kind)
		}
	})
	if err != nil {
		return err
	}

	s.broadcast(ws.OpCommentDelete, map[string]any{
		"id":     node.ID,
		"parent": node.Parent,
	})

	return nil
}

// ─── Private Helpers ───

func (s *commentService) checkFlood(userID string) error {
	if s.limiter == nil || s.limiter.Allow(userID) {
		return nil
	}
	wait := s.limiter.CooldownSeconds(userID)
	return fmt.Errorf("%w: you're commenting too fast, wait %d second(s)", pkg.ErrBadRequest, wait)
}

func (s *commentService) checkParentExists(ctx context.Context, parent models.ParentRef) error {
	switch parent.Kind {
	case models.ParentPost:
		_, err := s.postRepo.GetByID(ctx, parent.ID)
		return err
	case models.ParentComment:
		_, err := s.commentRepo.GetByID(ctx, parent.ID)
		return err
	default:
		return fmt.Errorf("%w: invalid parent kind", pkg.ErrBadRequest)
	}
}

func (s *commentService) broadcast(op string, data any) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToAll(ws.Event{Op: op, Data: data})
}
