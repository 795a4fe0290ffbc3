package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

// CommentRepositoryInterface reads host comments and their metadata.
type CommentRepositoryInterface interface {
	Get(ctx context.Context, id int64) (*model.Comment, error)
	GetMeta(ctx context.Context, commentID int64, key string) (string, error)
	GetMetaMap(ctx context.Context, commentID int64, keys []string) (map[string]string, error)
	SaveMeta(ctx context.Context, commentID int64, values map[string]string) error
}

type CommentRepository struct {
	DB *sqlx.DB

	meta       db.Table
	get        string
	getMeta    string
	updateMeta string
	insertMeta string
}

func NewCommentRepository(conn *sqlx.DB, s db.Schema) *CommentRepository {
	return &CommentRepository{
		DB:   conn,
		meta: s.CommentMeta,
		get: fmt.Sprintf(`
			SELECT comment_id, comment_post_id, comment_approved
			FROM %s WHERE comment_id=$1`, s.Comments),
		getMeta: fmt.Sprintf(`
			SELECT meta_value FROM %s
			WHERE comment_id=$1 AND meta_key=$2
			ORDER BY meta_id LIMIT 1`, s.CommentMeta),
		updateMeta: fmt.Sprintf(`UPDATE %s SET meta_value=$1 WHERE comment_id=$2 AND meta_key=$3`, s.CommentMeta),
		insertMeta: fmt.Sprintf(`INSERT INTO %s (comment_id, meta_key, meta_value) VALUES ($1, $2, $3)`, s.CommentMeta),
	}
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	if err := r.DB.GetContext(ctx, &c, r.get, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetMeta returns "" when the key is not set.
func (r *CommentRepository) GetMeta(ctx context.Context, commentID int64, key string) (string, error) {
	var v sql.NullString
	if err := r.DB.GetContext(ctx, &v, r.getMeta, commentID, key); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return v.String, nil
}

func (r *CommentRepository) GetMetaMap(ctx context.Context, commentID int64, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	query, args, err := build(r.DB, fmt.Sprintf(`
		SELECT meta_key, meta_value FROM %s
		WHERE comment_id = ? AND meta_key IN (?)
		ORDER BY meta_id`, r.meta), []interface{}{commentID, keys})
	if err != nil {
		return nil, err
	}

	rows := []struct {
		Key   string         `db:"meta_key"`
		Value sql.NullString `db:"meta_value"`
	}{}
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, seen := out[row.Key]; !seen {
			out[row.Key] = row.Value.String
		}
	}
	return out, nil
}

// SaveMeta upserts all values in one transaction.
func (r *CommentRepository) SaveMeta(ctx context.Context, commentID int64, values map[string]string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin meta tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		res, err := tx.ExecContext(ctx, r.updateMeta, values[key], commentID, key)
		if err != nil {
			return fmt.Errorf("update meta %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, r.insertMeta, commentID, key, values[key]); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit meta tx: %w", err)
	}
	return nil
}

var _ CommentRepositoryInterface = (*CommentRepository)(nil)
