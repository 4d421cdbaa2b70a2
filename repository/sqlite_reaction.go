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

type sqliteReactionRepo struct {
	db database.TxQuerier
}

func NewSQLiteReactionRepo(db database.TxQuerier) ReactionRepository {
	return &sqliteReactionRepo{db: db}
}

// GetByParentAndUser, satır yoksa (nil, nil) döner: "tepki yok" normal
// bir durumdur, error taksonomisine girmez.
func (r *sqliteReactionRepo) GetByParentAndUser(ctx context.Context, parent models.ParentRef, userID string) (*models.Reaction, error) {
	query := `
		SELECT id, parent_kind, parent_id, user_id, type, created_at
		FROM reactions
		WHERE parent_kind = ? AND parent_id = ? AND user_id = ?`

	reaction := &models.Reaction{}
	err := r.db.QueryRowContext(ctx, query, parent.Kind, parent.ID, userID).Scan(
		&reaction.ID, &reaction.Parent.Kind, &reaction.Parent.ID,
		&reaction.UserID, &reaction.Type, &reaction.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}

	return reaction, nil
}

func (r *sqliteReactionRepo) Create(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (parent_kind, parent_id, user_id, type)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reaction.Parent.Kind, reaction.Parent.ID, reaction.UserID, reaction.Type,
	).Scan(&reaction.ID, &reaction.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reaction", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create reaction: %w", err)
	}

	return nil
}

func (r *sqliteReactionRepo) UpdateType(ctx context.Context, id string, newType models.ReactionType) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reactions SET type = ? WHERE id = ?`, newType, id)
	if err != nil {
		return fmt.Errorf("failed to update reaction type: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteReactionRepo) Delete(ctx context.Context, parent models.ParentRef, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE parent_kind = ? AND parent_id = ? AND user_id = ?`,
		parent.Kind, parent.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: reaction", pkg.ErrNotFound)
	}
	return nil
}

// GroupByParent, GROUP BY type + GROUP_CONCAT(user_id) ile gruplanmış
// görünüm döner: [{type: "like", count: 3, users: ["u1","u2","u3"]}].
func (r *sqliteReactionRepo) GroupByParent(ctx context.Context, parent models.ParentRef) ([]models.ReactionGroup, error) {
	query := `
		SELECT type, COUNT(*) as count, GROUP_CONCAT(user_id) as users
		FROM reactions
		WHERE parent_kind = ? AND parent_id = ?
		GROUP BY type
		ORDER BY MIN(created_at) ASC`

	rows, err := r.db.QueryContext(ctx, query, parent.Kind, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to group reactions: %w", err)
	}
	defer rows.Close()

	return scanReactionGroups(rows)
}

func (r *sqliteReactionRepo) GroupByParents(ctx context.Context, kind models.ParentKind, ids []string) (map[string][]models.ReactionGroup, error) {
	result := make(map[string][]models.ReactionGroup)
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	args = append(args, kind)
	for _, id := range ids {
		args = append(args, id)
	}

	query := `
		SELECT parent_id, type, COUNT(*) as count, GROUP_CONCAT(user_id) as users
		FROM reactions
		WHERE parent_kind = ? AND parent_id IN (` + placeholders + `)
		GROUP BY parent_id, type
		ORDER BY parent_id, MIN(created_at) ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group reactions by parents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, usersStr string
		var rtype models.ReactionType
		var count int
		if err := rows.Scan(&parentID, &rtype, &count, &usersStr); err != nil {
			return nil, fmt.Errorf("failed to scan reaction group: %w", err)
		}

		result[parentID] = append(result[parentID], models.ReactionGroup{
			Type:  rtype,
			Count: count,
			Users: strings.Split(usersStr, ","),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction rows: %w", err)
	}

	return result, nil
}

func (r *sqliteReactionRepo) CountByParent(ctx context.Context, parent models.ParentRef) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reactions WHERE parent_kind = ? AND parent_id = ?`,
		parent.Kind, parent.ID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reactions: %w", err)
	}
	return count, nil
}

func (r *sqliteReactionRepo) DeleteByParents(ctx context.Context, kind models.ParentKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	args = append(args, kind)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE parent_kind = ? AND parent_id IN (`+placeholders+`)`,
		args...); err != nil {
		return fmt.Errorf("failed to delete reactions by parents: %w", err)
	}
	return nil
}

// DeleteByUser, önce etkilenen ebeveynleri toplar, sonra siler;
// çağıran taraf dönen referansların sayaçlarını düzeltir.
func (r *sqliteReactionRepo) DeleteByUser(ctx context.Context, userID string) ([]models.ParentRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT parent_kind, parent_id FROM reactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reactions: %w", err)
	}
	defer rows.Close()

	var parents []models.ParentRef
	for rows.Next() {
		var p models.ParentRef
		if err := rows.Scan(&p.Kind, &p.ID); err != nil {
			return nil, fmt.Errorf("failed to scan reaction parent: %w", err)
		}
		parents = append(parents, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction parents: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to delete user reactions: %w", err)
	}

	return parents, nil
}

func scanReactionGroups(rows *sql.Rows) ([]models.ReactionGroup, error) {
	var groups []models.ReactionGroup
	for rows.Next() {
		var usersStr string
		var rtype models.ReactionType
		var count int
		if err := rows.Scan(&rtype, &count, &usersStr); err != nil {
			return nil, fmt.Errorf("failed to scan reaction group: %w", err)
		}

		groups = append(groups, models.ReactionGroup{
			Type:  rtype,
			Count: count,
			Users: strings.Split(usersStr, ","),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction rows: %w", err)
	}

	if groups == nil {
		groups = []models.ReactionGroup{}
	}

	return groups, nil
}
