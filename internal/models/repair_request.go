package models

import "time"

// RequestStatus is the repair request lifecycle state. PENDING is the initial
// state, COMPLETED is terminal; the only legal transition is PENDING to COMPLETED.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusCompleted RequestStatus = "COMPLETED"
)

// RequestPriority is a stored label; it does not drive any scheduling.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "LOW"
	PriorityMedium RequestPriority = "MEDIUM"
	PriorityHigh   RequestPriority = "HIGH"
)

// Valid reports whether the priority is one of the closed set.
func (p RequestPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// RepairRequest represents a persisted equipment-repair request. Records are
// historical and never deleted.
type RepairRequest struct {
	ID                int64           `db:"id" json:"id"`
	RequesterUsername string          `db:"requester_username" json:"requester_username"`
	ReporterName      string          `db:"reporter_name" json:"reporter_name"`
	EmployeeNo        string          `db:"employee_no" json:"employee_no"`
	Station           string          `db:"station" json:"station"`
	Department        string          `db:"department" json:"department"`
	MaterialName      string          `db:"material_name" json:"material_name"`
	MaterialCode      string          `db:"material_code" json:"material_code"`
	Quantity          int             `db:"quantity" json:"quantity"`
	DefectDescription string          `db:"defect_description" json:"defect_description"`
	Priority          RequestPriority `db:"priority" json:"priority"`
	Status            RequestStatus   `db:"status" json:"status"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// RepairRequestFilter narrows request listings.
type RepairRequestFilter struct {
	RequesterUsername string
	Status            RequestStatus
}
