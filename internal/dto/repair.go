package dto

import "github.com/repairdesk/repairdesk-api/internal/models"

// CreateRepairRequest is the submission payload for a repair request.
type CreateRepairRequest struct {
	ReporterName      string `json:"reporter_name" validate:"required"`
	EmployeeNo        string `json:"employee_no" validate:"required"`
	Station           string `json:"station" validate:"required"`
	Department        string `json:"department" validate:"required"`
	MaterialName      string `json:"material_name" validate:"required"`
	MaterialCode      string `json:"material_code" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,min=1"`
	DefectDescription string `json:"defect_description" validate:"required"`
	Priority          string `json:"priority" validate:"required,priority"`
}

// CreateTrainingRequest is the submission payload for a training request.
type CreateTrainingRequest struct {
	Name         string `json:"name" validate:"required"`
	EmployeeNo   string `json:"employee_no" validate:"required"`
	Station      string `json:"station" validate:"required"`
	Designation  string `json:"designation" validate:"required"`
	TrainingSlot string `json:"training_slot" validate:"required"`
}

// CreateFeedback is the payload rating a completed repair request.
type CreateFeedback struct {
	RequestID int64  `json:"request_id"`
	Comment   string `json:"comment" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
}

// RepairRequestQuery narrows admin request listings.
type RepairRequestQuery struct {
	Status    models.RequestStatus
	Requester string
}
