package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/repairdesk/repairdesk-api/internal/models"
)

// RequestRepository persists repair requests. The store owns identity
// assignment and durable status; every mutation is a single auto-committed
// statement.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new repair request and assigns its id.
func (r *RequestRepository) Create(ctx context.Context, request *models.RepairRequest) error {
	if request.Status == "" {
		request.Status = models.StatusPending
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO repair_requests
	(requester_username, reporter_name, employee_no, station, department, material_name, material_code, quantity, defect_description, priority, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		request.RequesterUsername,
		request.ReporterName,
		request.EmployeeNo,
		request.Station,
		request.Department,
		request.MaterialName,
		request.MaterialCode,
		request.Quantity,
		request.DefectDescription,
		request.Priority,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	).Scan(&request.ID); err != nil {
		return fmt.Errorf("create repair request: %w", err)
	}
	return nil
}

// GetByID fetches a repair request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.RepairRequest, error) {
	const query = `SELECT id, requester_username, reporter_name, employee_no, station, department,
       material_name, material_code, quantity, defect_description, priority, status, created_at, updated_at
	FROM repair_requests WHERE id = $1`
	var request models.RepairRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns repair requests matching the filter in insertion order.
func (r *RequestRepository) List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 2)
	builder.WriteString(`SELECT id, requester_username, reporter_name, employee_no, station, department,
       material_name, material_code, quantity, defect_description, priority, status, created_at, updated_at
	FROM repair_requests`)

	conditions := make([]string, 0, 2)
	if filter.RequesterUsername != "" {
		args = append(args, filter.RequesterUsername)
		conditions = append(conditions, fmt.Sprintf("requester_username = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY id ASC")

	var requests []models.RepairRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list repair requests: %w", err)
	}
	return requests, nil
}

// Complete transitions a request from PENDING to COMPLETED. The conditional
// update is the serialization point for concurrent admins: zero affected
// rows means the row is absent or no longer pending, reported as
// sql.ErrNoRows for the caller to classify against a fresh read.
func (r *RequestRepository) Complete(ctx context.Context, id int64, completedAt time.Time) error {
	query := fmt.Sprintf(
		"UPDATE repair_requests SET status = '%s', updated_at = $2 WHERE id = $1 AND status = '%s'",
		models.StatusCompleted,
		models.StatusPending,
	)
	result, err := r.db.ExecContext(ctx, query, id, completedAt)
	if err != nil {
		return fmt.Errorf("complete repair request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check complete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
