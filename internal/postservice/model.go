package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("a post with this slug already exists")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// UniqueViolation is a helper function to check if the error is a unique
// constraint error on the named constraint.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *PostModel) insert(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO blog_posts (title, slug, published_at, description, keywords, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := m.db.QueryRowContext(ctx, query, p.Title, p.Slug, p.PublishedAt, p.Description, p.Keywords, p.Content).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case UniqueViolation(err, "blog_posts_slug_key") || UniqueViolation(err, "idx_blog_posts_slug"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) getBySlug(ctx context.Context, slug string) (*Post, error) {
	query := `
		SELECT slug, title, published_at, description, keywords, content, created_at, updated_at
		FROM blog_posts
		WHERE slug = $1`

	row := m.db.QueryRowContext(ctx, query, slug)

	var post Post
	err := row.Scan(&post.Slug, &post.Title, &post.PublishedAt, &post.Description, &post.Keywords, &post.Content, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &post, nil
}

// update replaces every field except the slug, which identifies the row and is
// never regenerated. updated_at is maintained by the table trigger.
func (m *PostModel) update(ctx context.Context, slug string, title string, publishedAt time.Time, description, keywords *string, content string) error {
	query := `
		UPDATE blog_posts
		SET title = $1, published_at = $2, description = $3, keywords = $4, content = $5
		WHERE slug = $6
		RETURNING slug`

	var updated string
	err := m.db.QueryRowContext(ctx, query, title, publishedAt, description, keywords, content, slug).Scan(&updated)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) delete(ctx context.Context, slug string) error {
	query := `
		DELETE FROM blog_posts
		WHERE slug = $1`

	res, err := m.db.ExecContext(ctx, query, slug)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *PostModel) count(ctx context.Context) (int, error) {
	var total int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// list returns a page of posts sorted by published_at descending. The slug is
// the tiebreaker so that pages stay stable when posts share a timestamp.
func (m *PostModel) list(ctx context.Context, limit, offset int) ([]Post, error) {
	query := `
		SELECT slug, title, published_at, content
		FROM blog_posts
		ORDER BY published_at DESC, slug ASC
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		err := rows.Scan(&post.Slug, &post.Title, &post.PublishedAt, &post.Content)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
