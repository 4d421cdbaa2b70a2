package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

const postColumns = `id, author_id, text, comments_counter, reaction_counter,
	is_frozen, allow_comments, created_at, updated_at`

type sqlitePostRepo struct {
	db database.TxQuerier
}

func NewSQLitePostRepo(db database.TxQuerier) PostRepository {
	return &sqlitePostRepo{db: db}
}

func scanPost(row interface{ Scan(...any) error }, p *models.Post) error {
	return row.Scan(
		&p.ID, &p.AuthorID, &p.Text, &p.CommentsCounter, &p.ReactionCounter,
		&p.IsFrozen, &p.AllowComments, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *sqlitePostRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, text)
		VALUES (?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, post.AuthorID, post.Text).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	// FTS index'ini aynı yazımda besle. Trigger kullanmıyoruz;
	// migration runner trigger body'lerindeki ';' ile başa çıkamaz.
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO posts_fts (post_id, text) VALUES (?, ?)`,
		post.ID, post.Text,
	); err != nil {
		return fmt.Errorf("failed to index post: %w", err)
	}

	return nil
}

func (r *sqlitePostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

	post := &models.Post{}
	err := scanPost(r.db.QueryRowContext(ctx, query, id), post)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: post", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// ListFeed, cursor pagination: before verilmişse o kayıttan eski
// kayıtlar döner. Offset pagination'a göre kayıt eklenince sayfa kaymaz.
//
// created_at saniye çözünürlüklüdür, id'ler ise rastgele — aynı saniyede
// yazılan satırlar için tek başına sıralama anahtarı olamazlar. rowid
// ekleme sırasına göre monoton arttığından hem ikincil sıralama anahtarı
// hem de cursor karşılaştırmasının parçasıdır.
func (r *sqlitePostRepo) ListFeed(ctx context.Context, before string, limit int) ([]models.Post, error) {
	var rows *sql.Rows
	var err error

	if before == "" {
		query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, rowid DESC LIMIT ?`
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		query := `SELECT ` + postColumns + ` FROM posts
			WHERE (created_at, rowid) < (SELECT created_at, rowid FROM posts WHERE id = ?)
			ORDER BY created_at DESC, rowid DESC LIMIT ?`
		rows, err = r.db.QueryContext(ctx, query, before, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *sqlitePostRepo) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE author_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

func (r *sqlitePostRepo) UpdateText(ctx context.Context, id, text string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET text = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("failed to update post text: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE posts_fts SET text = ? WHERE post_id = ?`, text, id); err != nil {
		return fmt.Errorf("failed to reindex post: %w", err)
	}
	return nil
}

func (r *sqlitePostRepo) SetFrozen(ctx context.Context, id string, frozen bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE posts SET is_frozen = ? WHERE id = ?`, frozen, id)
	if err != nil {
		return fmt.Errorf("failed to set post frozen: %w", err)
	}
	return requireAffected(result)
}

func (r *sqlitePostRepo) SetAllowComments(ctx context.Context, id string, allow bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE posts SET allow_comments = ? WHERE id = ?`, allow, id)
	if err != nil {
		return fmt.Errorf("failed to set post allow_comments: %w", err)
	}
	return requireAffected(result)
}

// IncrementComments, sayacı atomik günceller. Negatif delta'da MAX(0, ...)
// guard'ı sayaç altına düşmeyi engeller.
func (r *sqlitePostRepo) IncrementComments(ctx context.Context, id string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET comments_counter = MAX(0, comments_counter + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to increment comments counter: %w", err)
	}
	return requireAffected(result)
}

func (r *sqlitePostRepo) IncrementReactions(ctx context.Context, id string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET reaction_counter = MAX(0, reaction_counter + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to increment reaction counter: %w", err)
	}
	return requireAffected(result)
}

func (r *sqlitePostRepo) RecountReactions(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET reaction_counter = (
			SELECT COUNT(*) FROM reactions WHERE parent_kind = 'post' AND parent_id = posts.id
		) WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to recount post reactions: %w", err)
	}
	return requireAffected(result)
}

// ResyncCounters, iki sayacı da gerçek satır sayılarına eşitler;
// yalnızca sapmış satırlara dokunur ve değişen satır sayısını döner.
// comments_counter kök yorumları sayar (parent_kind = 'post').
func (r *sqlitePostRepo) ResyncCounters(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET
			comments_counter = (
				SELECT COUNT(*) FROM comments c
				WHERE c.parent_kind = 'post' AND c.parent_id = posts.id
			),
			reaction_counter = (
				SELECT COUNT(*) FROM reactions rx
				WHERE rx.parent_kind = 'post' AND rx.parent_id = posts.id
			)
		WHERE comments_counter != (
			SELECT COUNT(*) FROM comments c
			WHERE c.parent_kind = 'post' AND c.parent_id = posts.id
		) OR reaction_counter != (
			SELECT COUNT(*) FROM reactions rx
			WHERE rx.parent_kind = 'post' AND rx.parent_id = posts.id
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to resync post counters: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected, nil
}

func (r *sqlitePostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts_fts WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("failed to deindex post: %w", err)
	}
	return nil
}

// Search, FTS5 MATCH sorgusu. Kullanıcı girdisi tırnaklanarak
// MATCH syntax'ının (AND, OR, NEAR) enjeksiyonu engellenir.
func (r *sqlitePostRepo) Search(ctx context.Context, query string, limit, offset int) ([]models.Post, int, error) {
	sanitized := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts_fts WHERE posts_fts MATCH ?`, sanitized,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixColumns("p", postColumns)+`
		FROM posts_fts f
		JOIN posts p ON p.id = f.post_id
		WHERE posts_fts MATCH ?
		ORDER BY bm25(posts_fts)
		LIMIT ? OFFSET ?`, sanitized, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *sqlitePostRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *sqlitePostRepo) ListAdmin(ctx context.Context, limit, offset int) ([]models.AdminPostListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.author_id, u.username, p.text, p.comments_counter,
			p.reaction_counter, p.is_frozen, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.rowid DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for admin: %w", err)
	}
	defer rows.Close()

	var items []models.AdminPostListItem
	for rows.Next() {
		var it models.AdminPostListItem
		if err := rows.Scan(
			&it.ID, &it.AuthorID, &it.AuthorUsername, &it.Text,
			&it.CommentsCounter, &it.ReactionCounter, &it.IsFrozen, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan admin post row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin post rows: %w", err)
	}
	return items, nil
}

func (r *sqlitePostRepo) IDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM posts WHERE author_id = ?`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list post ids by author: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post ids: %w", err)
	}
	return ids, nil
}

func (r *sqlitePostRepo) AddTags(ctx context.Context, postID string, userIDs []string) error {
	for _, userID := range userIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_tags (post_id, user_id) VALUES (?, ?)`,
			postID, userID,
		); err != nil {
			return fmt.Errorf("failed to tag user on post: %w", err)
		}
	}
	return nil
}

// TagsByPosts, IN (...) ile tek sorguda toplu yükleme yapar.
// Etiketi olmayan gönderi map'te yer almaz, hata değildir.
func (r *sqlitePostRepo) TagsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(postIDs)-1) + "?"
	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, user_id FROM post_tags WHERE post_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan post tag row: %w", err)
		}
		result[postID] = append(result[postID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post tag rows: %w", err)
	}

	return result, nil
}

// requireAffected, UPDATE/DELETE sonucunda satır etkilenmediyse
// ErrNotFound'a çevirir.
func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// prefixColumns, "a, b, c" kolon listesine tablo alias'ı ekler: "p.a, p.b, p.c".
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
