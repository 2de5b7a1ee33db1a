package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
)

const blogFeedCacheKey = "blog:feed"

type blogStore interface {
	Create(ctx context.Context, post *models.BlogPost) error
	List(ctx context.Context) ([]models.BlogPost, error)
}

type blogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// BlogService manages the append-only success-story feed. Any authenticated
// role may post; there is no moderation.
type BlogService struct {
	repo      blogStore
	cache     blogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlogService constructs the service. A nil cache disables caching.
func NewBlogService(repo blogStore, cache blogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Post publishes a new blog entry authored by the principal.
func (s *BlogService) Post(ctx context.Context, principal models.Principal, req dto.CreateBlogPost) (*models.BlogPost, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and content are required")
	}
	post := &models.BlogPost{
		AuthorUsername: principal.Username,
		Title:          req.Title,
		Content:        req.Content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create blog post")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, blogFeedCacheKey); err != nil {
			s.logger.Warn("failed to invalidate blog feed cache", zap.Error(err))
		}
	}
	return post, nil
}

// List returns the full feed newest first, through the cache when enabled.
// Cache failures fall back to the store and never fail the read.
func (s *BlogService) List(ctx context.Context) ([]models.BlogPost, error) {
	if s.cache != nil {
		var cached []models.BlogPost
		err := s.cache.Get(ctx, blogFeedCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("blog feed cache lookup failed", zap.Error(err))
		}
	}

	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blog posts")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, blogFeedCacheKey, posts, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache blog feed", zap.Error(err))
		}
	}
	return posts, nil
}
