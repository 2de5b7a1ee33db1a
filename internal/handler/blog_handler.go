package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
	"github.com/repairdesk/repairdesk-api/pkg/response"
)

type blogService interface {
	Post(ctx context.Context, principal models.Principal, req dto.CreateBlogPost) (*models.BlogPost, error)
	List(ctx context.Context) ([]models.BlogPost, error)
}

// BlogHandler exposes the success-story feed.
type BlogHandler struct {
	service blogService
}

// NewBlogHandler constructs the handler.
func NewBlogHandler(service blogService) *BlogHandler {
	return &BlogHandler{service: service}
}

// Post godoc
// @Summary Publish a blog post
// @Tags Blog
// @Accept json
// @Produce json
// @Param payload body dto.CreateBlogPost true "Blog payload"
// @Success 201 {object} response.Envelope
// @Router /blog [post]
func (h *BlogHandler) Post(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateBlogPost
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid blog payload"))
		return
	}
	post, err := h.service.Post(c.Request.Context(), claims.Principal(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// List godoc
// @Summary List the blog feed, newest first
// @Tags Blog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blog [get]
func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts)
}
