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

// PostService, gönderi iş kuralları.
type PostService interface {
	CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, viewerID, postID string) (*models.PostWithAuthor, error)
	// GetFeed, tüm gönderileri en yeniden eskiye cursor pagination ile
	// döner. Engellenen/engelleyen kullanıcıların gönderileri elenir.
	GetFeed(ctx context.Context, viewerID, before string, limit int) ([]models.PostWithAuthor, error)
	ListByAuthor(ctx context.Context, viewerID, authorID string, limit int) ([]models.PostWithAuthor, error)
	UpdateText(ctx context.Context, userID, postID string, req *models.UpdatePostRequest) (*models.Post, error)
	// SetFrozen, gönderiyi dondurur/çözer; donmuş gönderiye yorum
	// eklenemez. Yalnızca yazar.
	SetFrozen(ctx context.Context, userID, postID string, frozen bool) error
	SetAllowComments(ctx context.Context, userID, postID string, allow bool) error
	// DeletePost, gönderiyi, altındaki tüm yorum ağacını ve hepsinin
	// reaksiyonlarını siler. Yalnızca yazar.
	DeletePost(ctx context.Context, userID, postID string) error
	// DeletePostAsAdmin, yazarlık kontrolü olmadan aynı temizliği yapar.
	DeletePostAsAdmin(ctx context.Context, postID string) error
	// Search, FTS5 indeksi üzerinden tam metin arama.
	Search(ctx context.Context, query string, limit, offset int) ([]models.PostWithAuthor, int, error)
}

type postService struct {
	db             *sql.DB
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	reactionRepo   repository.ReactionRepository
	userRepo       repository.UserRepository
	blockRepo      repository.BlockRepository
	friendshipRepo repository.FriendshipRepository
	hub            ws.EventPublisher
}

func NewPostService(
	db *sql.DB,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	reactionRepo repository.ReactionRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	friendshipRepo repository.FriendshipRepository,
	hub ws.EventPublisher,
) PostService {
	return &postService{
		db:             db,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		reactionRepo:   reactionRepo,
		userRepo:       userRepo,
		blockRepo:      blockRepo,
		friendshipRepo: friendshipRepo,
		hub:            hub,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.validateTags(ctx, userID, req.Tags); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:      userID,
		Text:          req.Text,
		AllowComments: true,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if len(req.Tags) > 0 {
		if err := s.postRepo.AddTags(ctx, post.ID, req.Tags); err != nil {
			return nil, err
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpPostCreate, Data: post})
	}

	return post, nil
}

func (s *postService) GetPost(ctx context.Context, viewerID, postID string) (*models.PostWithAuthor, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		blocked, err := s.blockRepo.IsBlockedEither(ctx, viewerID, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
		}
	}

	author, err := s.userRepo.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.GroupByParent(ctx, models.PostParent(postID))
	if err != nil {
		return nil, err
	}

	tags, err := s.loadTagProfiles(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &models.PostWithAuthor{
		Post:      *post,
		Author:    author.Public(),
		Reactions: reactions,
		Tags:      tags,
	}, nil
}

func (s *postService) GetFeed(ctx context.Context, viewerID, before string, limit int) ([]models.PostWithAuthor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	posts, err := s.postRepo.ListFeed(ctx, before, limit)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, viewerID, posts)
}

func (s *postService) ListByAuthor(ctx context.Context, viewerID, authorID string, limit int) ([]models.PostWithAuthor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Profil sayfasında engel maskesi: taraflardan biri diğerini
	// engellediyse profil boş değil, NotFound döner.
	if viewerID != "" && viewerID != authorID {
		blocked, err := s.blockRepo.IsBlockedEither(ctx, viewerID, authorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
		}
	}

	posts, err := s.postRepo.ListByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, viewerID, posts)
}

func (s *postService) UpdateText(ctx context.Context, userID, postID string, req *models.UpdatePostRequest) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, fmt.Errorf("%w: only the author can edit this post", pkg.ErrForbidden)
	}

	if err := s.postRepo.UpdateText(ctx, postID, req.Text); err != nil {
		return nil, err
	}
	post.Text = req.Text

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpPostUpdate, Data: post})
	}

	return post, nil
}

func (s *postService) SetFrozen(ctx context.Context, userID, postID string, frozen bool) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return fmt.Errorf("%w: only the author can freeze this post", pkg.ErrForbidden)
	}

	return s.postRepo.SetFrozen(ctx, postID, frozen)
}

func (s *postService) SetAllowComments(ctx context.Context, userID, postID string, allow bool) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return fmt.Errorf("%w: only the author can change comment settings", pkg.ErrForbidden)
	}

	return s.postRepo.SetAllowComments(ctx, postID, allow)
}

func (s *postService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return fmt.Errorf("%w: only the author can delete this post", pkg.ErrForbidden)
	}

	return s.deletePostCascade(ctx, postID)
}

func (s *postService) DeletePostAsAdmin(ctx context.Context, postID string) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.deletePostCascade(ctx, postID)
}

func (s *postService) Search(ctx context.Context, query string, limit, offset int) ([]models.PostWithAuthor, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	posts, total, err := s.postRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	enriched, err := s.enrich(ctx, "", posts)
	if err != nil {
		return nil, 0, err
	}

	return enriched, total, nil
}

// ─── Private Helpers ───

// deletePostCascade, gönderiyi ve altındaki her şeyi tek transaction'da
// düşürür. Yorum ağacı work-list ile katman katman toplanır: frontier
// önce kök yorumlar, sonra her turda bir alt seviye.
func (s *postService) deletePostCascade(ctx context.Context, postID string) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		postRepo := repository.NewSQLitePostRepo(tx)
		commentRepo := repository.NewSQLiteCommentRepo(tx)
		reactionRepo := repository.NewSQLiteReactionRepo(tx)

		roots, err := commentRepo.IDsByParent(ctx, models.PostParent(postID))
		if err != nil {
			return err
		}

		all := append([]string{}, roots...)
		frontier := roots
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
		if err := reactionRepo.DeleteByParents(ctx, models.ParentPost, []string{postID}); err != nil {
			return err
		}
		if err := commentRepo.DeleteByIDs(ctx, all); err != nil {
			return err
		}

		return postRepo.Delete(ctx, postID)
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastToAll(ws.Event{Op: ws.OpPostDelete, Data: map[string]any{"id": postID}})
	}

	return nil
}

// validateTags, etiketlenecek kullanıcıların hepsinin var olduğunu ve
// yazarın kabul edilmiş arkadaşı olduğunu doğrular. Tek geçersiz
// etiket tüm isteği düşürür.
func (s *postService) validateTags(ctx context.Context, authorID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	users, err := s.userRepo.GetByIDs(ctx, tags)
	if err != nil {
		return err
	}
	if len(users) != len(tags) {
		return fmt.Errorf("%w: invalid tags", pkg.ErrBadRequest)
	}

	for _, tagged := range tags {
		if tagged == authorID {
			return fmt.Errorf("%w: invalid tags", pkg.ErrBadRequest)
		}
		friends, err := s.friendshipRepo.AreFriends(ctx, authorID, tagged)
		if err != nil {
			return err
		}
		if !friends {
			return fmt.Errorf("%w: invalid tags", pkg.ErrBadRequest)
		}
	}

	return nil
}

// loadTagProfiles, tek gönderinin etiketlerini profil olarak döner.
func (s *postService) loadTagProfiles(ctx context.Context, postID string) ([]models.PublicProfile, error) {
	tagsByPost, err := s.postRepo.TagsByPosts(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	tagIDs := tagsByPost[postID]
	if len(tagIDs) == 0 {
		return nil, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.PublicProfile, 0, len(tagIDs))
	for _, id := range tagIDs {
		if u, ok := users[id]; ok {
			profiles = append(profiles, u.Public())
		}
	}
	return profiles, nil
}

// enrich, post listesini author profilleri ve reaksiyon gruplarıyla
// zenginleştirir; viewerID doluysa engelli yazarların gönderileri
// listeden elenir.
func (s *postService) enrich(ctx context.Context, viewerID string, posts []models.Post) ([]models.PostWithAuthor, error) {
	if len(posts) == 0 {
		return []models.PostWithAuthor{}, nil
	}

	var blockedAuthors map[string]bool
	if viewerID != "" {
		blockedAuthors = make(map[string]bool)
		for _, p := range posts {
			if p.AuthorID == viewerID {
				continue
			}
			if _, seen := blockedAuthors[p.AuthorID]; seen {
				continue
			}
			blocked, err := s.blockRepo.IsBlockedEither(ctx, viewerID, p.AuthorID)
			if err != nil {
				return nil, err
			}
			blockedAuthors[p.AuthorID] = blocked
		}
	}

	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		if blockedAuthors != nil && blockedAuthors[p.AuthorID] {
			continue
		}
		ids = append(ids, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
	}

	tagsByID, err := s.postRepo.TagsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Yazarlar ve etiketlenenler tek toplu sorguda yüklenir.
	lookupIDs := authorIDs
	for _, tagIDs := range tagsByID {
		lookupIDs = append(lookupIDs, tagIDs...)
	}

	users, err := s.userRepo.GetByIDs(ctx, lookupIDs)
	if err != nil {
		return nil, err
	}

	reactionsByID, err := s.reactionRepo.GroupByParents(ctx, models.ParentPost, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.PostWithAuthor, 0, len(posts))
	for _, p := range posts {
		if blockedAuthors != nil && blockedAuthors[p.AuthorID] {
			continue
		}
		item := models.PostWithAuthor{
			Post:      p,
			Reactions: []models.ReactionGroup{},
		}
		if author, ok := users[p.AuthorID]; ok {
			item.Author = author.Public()
		}
		if groups, ok := reactionsByID[p.ID]; ok {
			item.Reactions = groups
		}
		for _, tagID := range tagsByID[p.ID] {
			if u, ok := users[tagID]; ok {
				item.Tags = append(item.Tags, u.Public())
			}
		}
		result = append(result, item)
	}

	return result, nil
}
