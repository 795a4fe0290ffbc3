package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

type PostRepositoryInterface interface {
	Get(ctx context.Context, id int64) (*model.Post, error)
	Search(ctx context.Context, term string, postTypes []string, limit int) ([]*model.Post, error)
}

type PostRepository struct {
	DB *sqlx.DB

	posts db.Table
	get   string
}

func NewPostRepository(conn *sqlx.DB, s db.Schema) *PostRepository {
	return &PostRepository{
		DB:    conn,
		posts: s.Posts,
		get: fmt.Sprintf(`
			SELECT id, post_type, post_title, post_name, post_status, post_date
			FROM %s WHERE id=$1`, s.Posts),
	}
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	if err := r.DB.GetContext(ctx, &p, r.get, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Search returns published posts of the given types whose id, title or slug
// contains term. An empty term matches every post.
func (r *PostRepository) Search(ctx context.Context, term string, postTypes []string, limit int) ([]*model.Post, error) {
	posts := []*model.Post{}
	if len(postTypes) == 0 {
		return posts, nil
	}
	query, args, err := r.searchQuery(term, postTypes, limit)
	if err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) searchQuery(term string, postTypes []string, limit int) (string, []interface{}, error) {
	w := &where{}
	w.add("post_type IN (?)", postTypes)
	w.add("post_status = ?", model.PostStatusPublish)
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + escapeLike(term) + "%"
		w.add("(CAST(id AS TEXT) = ? OR post_title ILIKE ? OR post_name ILIKE ?)", term, like, like)
	}
	query := fmt.Sprintf(`
		SELECT id, post_type, post_title, post_name, post_status, post_date
		FROM %s%s
		ORDER BY post_date DESC, id DESC
		LIMIT ?`, r.posts, w)
	return build(r.DB, query, append(w.args, limit))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ PostRepositoryInterface = (*PostRepository)(nil)
