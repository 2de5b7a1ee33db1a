package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/repairdesk/repairdesk-api/internal/models"
)

// BlogRepository persists the append-only blog feed.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository constructs the repository.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// Create inserts a new blog post and assigns its id.
func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO blog_posts (author_username, title, content, created_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		post.AuthorUsername,
		post.Title,
		post.Content,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return fmt.Errorf("create blog post: %w", err)
	}
	return nil
}

// List returns the full feed newest first.
func (r *BlogRepository) List(ctx context.Context) ([]models.BlogPost, error) {
	const query = `SELECT id, author_username, title, content, created_at
	FROM blog_posts ORDER BY created_at DESC, id DESC`
	var posts []models.BlogPost
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return posts, nil
}
