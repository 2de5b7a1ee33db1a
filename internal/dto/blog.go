package dto

// CreateBlogPost is the payload for publishing a blog entry.
type CreateBlogPost struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}
