package models

import "time"

// BlogPost is an append-only success-story entry. The feed is read newest
// first and has no lifecycle beyond creation.
type BlogPost struct {
	ID             int64     `db:"id" json:"id"`
	AuthorUsername string    `db:"author_username" json:"author_username"`
	Title          string    `db:"title" json:"title"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
