package models

import "time"

// TrainingRequest is a creation-only record: it has no status and no
// lifecycle beyond existing.
type TrainingRequest struct {
	ID                int64     `db:"id" json:"id"`
	RequesterUsername string    `db:"requester_username" json:"requester_username"`
	Name              string    `db:"name" json:"name"`
	EmployeeNo        string    `db:"employee_no" json:"employee_no"`
	Station           string    `db:"station" json:"station"`
	Designation       string    `db:"designation" json:"designation"`
	TrainingSlot      string    `db:"training_slot" json:"training_slot"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
