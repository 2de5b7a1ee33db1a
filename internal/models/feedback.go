package models

import "time"

// Feedback is a post-service rating tied to a completed repair request.
// Multiple feedback rows per request are allowed.
type Feedback struct {
	ID                int64     `db:"id" json:"id"`
	RequesterUsername string    `db:"requester_username" json:"requester_username"`
	RequestID         int64     `db:"request_id" json:"request_id"`
	Comment           string    `db:"comment" json:"comment"`
	Rating            int       `db:"rating" json:"rating"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
