package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/repairdesk/repairdesk-api/internal/models"
)

// TrainingRepository persists training requests. Rows are terminal on
// insert: there is no status and no update path.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository constructs the repository.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// Create inserts a new training request and assigns its id.
func (r *TrainingRepository) Create(ctx context.Context, request *models.TrainingRequest) error {
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO training_requests
	(requester_username, name, employee_no, station, designation, training_slot, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		request.RequesterUsername,
		request.Name,
		request.EmployeeNo,
		request.Station,
		request.Designation,
		request.TrainingSlot,
		request.CreatedAt,
	).Scan(&request.ID); err != nil {
		return fmt.Errorf("create training request: %w", err)
	}
	return nil
}

// List returns training requests in insertion order, optionally scoped to a
// requester.
func (r *TrainingRepository) List(ctx context.Context, requesterUsername string) ([]models.TrainingRequest, error) {
	const base = `SELECT id, requester_username, name, employee_no, station, designation, training_slot, created_at
	FROM training_requests`

	var requests []models.TrainingRequest
	if requesterUsername != "" {
		if err := r.db.SelectContext(ctx, &requests, base+" WHERE requester_username = $1 ORDER BY id ASC", requesterUsername); err != nil {
			return nil, fmt.Errorf("list training requests: %w", err)
		}
		return requests, nil
	}
	if err := r.db.SelectContext(ctx, &requests, base+" ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("list training requests: %w", err)
	}
	return requests, nil
}
