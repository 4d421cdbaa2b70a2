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

const commentColumns = `id, author_id, parent_kind, parent_id, text,
	replies_counter, reaction_counter, is_frozen, created_at, updated_at`

type sqliteCommentRepo struct {
	db database.TxQuerier
}

func NewSQLiteCommentRepo(db database.TxQuerier) CommentRepository {
	return &sqliteCommentRepo{db: db}
}

func scanComment(row interface{ Scan(...any) error }, c *models.CommentNode) error {
	return row.Scan(
		&c.ID, &c.AuthorID, &c.Parent.Kind, &c.Parent.ID, &c.Text,
		&c.RepliesCounter, &c.ReactionCounter, &c.IsFrozen,
		&c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *sqliteCommentRepo) Create(ctx context.Context, node *models.CommentNode) error {
	query := `
		INSERT INTO comments (author_id, parent_kind, parent_id, text)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		node.AuthorID, node.Parent.Kind, node.Parent.ID, node.Text,
	).Scan(&node.ID, &node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *sqliteCommentRepo) GetByID(ctx context.Context, id string) (*models.CommentNode, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`

	node := &models.CommentNode{}
	err := scanComment(r.db.QueryRowContext(ctx, query, id), node)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: comment", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return node, nil
}

func (r *sqliteCommentRepo) ListByParent(ctx context.Context, parent models.ParentRef, before string, limit int) ([]models.CommentNode, error) {
	var rows *sql.Rows
	var err error

	// Aynı saniyede yazılan kardeşler için created_at tek başına sıralama
	// anahtarı olamaz; rowid ikincil anahtar olarak hem sıralamada hem de
	// cursor karşılaştırmasında kullanılır ki sayfa geçişinde satır kaçmasın.
	if before == "" {
		query := `SELECT ` + commentColumns + ` FROM comments
			WHERE parent_kind = ? AND parent_id = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?`
		rows, err = r.db.QueryContext(ctx, query, parent.Kind, parent.ID, limit)
	} else {
		query := `SELECT ` + commentColumns + ` FROM comments
			WHERE parent_kind = ? AND parent_id = ?
			AND (created_at, rowid) < (SELECT created_at, rowid FROM comments WHERE id = ?)
			ORDER BY created_at DESC, rowid DESC LIMIT ?`
		rows, err = r.db.QueryContext(ctx, query, parent.Kind, parent.ID, before, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var nodes []models.CommentNode
	for rows.Next() {
		var c models.CommentNode
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		nodes = append(nodes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return nodes, nil
}

// ChildIDs, tek seviyenin çocuklarını IN sorgusuyla döner.
// Work-list silme akışının yapı taşıdır.
func (r *sqliteCommentRepo) ChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(parentIDs)-1) + "?"
	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		args[i] = id
	}

	query := `SELECT id FROM comments WHERE parent_kind = 'comment' AND parent_id IN (` + placeholders + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get child comment ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan comment id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment ids: %w", err)
	}

	return ids, nil
}

// IDsByParent, ebeveynin doğrudan çocuk id'lerini sayfalamasız döner.
// Post silme akışı kök yorumları buradan toplar.
func (r *sqliteCommentRepo) IDsByParent(ctx context.Context, parent models.ParentRef) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM comments WHERE parent_kind = ? AND parent_id = ?`, parent.Kind, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment ids by parent: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan comment id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment ids: %w", err)
	}
	return ids, nil
}

func (r *sqliteCommentRepo) UpdateText(ctx context.Context, id, text string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET text = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("failed to update comment text: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteCommentRepo) SetFrozen(ctx context.Context, id string, frozen bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE comments SET is_frozen = ? WHERE id = ?`, frozen, id)
	if err != nil {
		return fmt.Errorf("failed to set comment frozen: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteCommentRepo) IncrementReplies(ctx context.Context, id string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET replies_counter = MAX(0, replies_counter + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to increment replies counter: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteCommentRepo) IncrementReactions(ctx context.Context, id string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET reaction_counter = MAX(0, reaction_counter + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to increment reaction counter: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteCommentRepo) RecountReactions(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE comments SET reaction_counter = (
			SELECT COUNT(*) FROM reactions WHERE parent_kind = 'comment' AND parent_id = comments.id
		) WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to recount comment reactions: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteCommentRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	return nil
}

func (r *sqliteCommentRepo) CountByParent(ctx context.Context, parent models.ParentRef) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE parent_kind = ? AND parent_id = ?`,
		parent.Kind, parent.ID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (r *sqliteCommentRepo) RootIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM comments WHERE author_id = ?`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment ids by author: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan comment id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment ids: %w", err)
	}
	return ids, nil
}

// ResyncCounters, iki sayacı da gerçek satır sayılarına eşitler.
// Tek UPDATE, yalnızca sapmış satırlara dokunur; değişen satır sayısı
// döner ki job sapma görüldüğünde loglayabilsin.
func (r *sqliteCommentRepo) ResyncCounters(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE comments SET
			replies_counter = (
				SELECT COUNT(*) FROM comments c
				WHERE c.parent_kind = 'comment' AND c.parent_id = comments.id
			),
			reaction_counter = (
				SELECT COUNT(*) FROM reactions rx
				WHERE rx.parent_kind = 'comment' AND rx.parent_id = comments.id
			)
		WHERE replies_counter != (
			SELECT COUNT(*) FROM comments c
			WHERE c.parent_kind = 'comment' AND c.parent_id = comments.id
		) OR reaction_counter != (
			SELECT COUNT(*) FROM reactions rx
			WHERE rx.parent_kind = 'comment' AND rx.parent_id = comments.id
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to resync comment counters: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected, nil
}

func (r *sqliteCommentRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}
