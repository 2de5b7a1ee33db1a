package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/repairdesk/repairdesk-api/internal/models"
)

// FeedbackRepository persists feedback rows. No uniqueness constraint:
// a request may accumulate multiple feedback entries.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a new feedback row and assigns its id.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO feedback (requester_username, request_id, comment, rating, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		feedback.RequesterUsername,
		feedback.RequestID,
		feedback.Comment,
		feedback.Rating,
		feedback.CreatedAt,
	).Scan(&feedback.ID); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// ListByRequest returns feedback rows for a request in insertion order.
func (r *FeedbackRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.Feedback, error) {
	const query = `SELECT id, requester_username, request_id, comment, rating, created_at
	FROM feedback WHERE request_id = $1 ORDER BY id ASC`
	var rows []models.Feedback
	if err := r.db.SelectContext(ctx, &rows, query, requestID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return rows, nil
}
