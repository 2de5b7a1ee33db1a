package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
)

type blogRepoStub struct {
	nextID int64
	posts  []models.BlogPost
	lists  int
}

func (r *blogRepoStub) Create(ctx context.Context, post *models.BlogPost) error {
	r.nextID++
	post.ID = r.nextID
	post.CreatedAt = time.Now().UTC()
	// Feed is newest first.
	r.posts = append([]models.BlogPost{*post}, r.posts...)
	return nil
}

func (r *blogRepoStub) List(ctx context.Context) ([]models.BlogPost, error) {
	r.lists++
	return append([]models.BlogPost(nil), r.posts...), nil
}

type blogCacheStub struct {
	entries map[string][]models.BlogPost
	deletes int
}

func newBlogCacheStub() *blogCacheStub {
	return &blogCacheStub{entries: make(map[string][]models.BlogPost)}
}

func (c *blogCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	posts, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*[]models.BlogPost) = posts
	return nil
}

func (c *blogCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = value.([]models.BlogPost)
	return nil
}

func (c *blogCacheStub) Delete(ctx context.Context, key string) error {
	c.deletes++
	delete(c.entries, key)
	return nil
}

func TestBlogPostValidation(t *testing.T) {
	svc := NewBlogService(&blogRepoStub{}, nil, 0, nil, nil)

	cases := []dto.CreateBlogPost{
		{Title: "", Content: "body"},
		{Title: "title", Content: ""},
	}
	for _, req := range cases {
		_, err := svc.Post(context.Background(), alice, req)
		requireKind(t, err, appErrors.ErrValidation)
	}
}

func TestBlogFeedNewestFirst(t *testing.T) {
	svc := NewBlogService(&blogRepoStub{}, nil, 0, nil, nil)

	// Admins may post too.
	for _, post := range []struct {
		author  models.Principal
		title   string
		content string
	}{
		{alice, "Line restored", "Sensor-A replaced and calibrated."},
		{bob, "Maintenance window", "Friday downtime for station ST-2."},
	} {
		created, err := svc.Post(context.Background(), post.author, dto.CreateBlogPost{Title: post.title, Content: post.content})
		require.NoError(t, err)
		require.Equal(t, post.author.Username, created.AuthorUsername)
	}

	feed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, "Maintenance window", feed[0].Title)
	require.Equal(t, "Line restored", feed[1].Title)
}

func TestBlogFeedCache(t *testing.T) {
	repo := &blogRepoStub{}
	cache := newBlogCacheStub()
	svc := NewBlogService(repo, cache, time.Minute, nil, nil)

	_, err := svc.Post(context.Background(), alice, dto.CreateBlogPost{Title: "first", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, 1, cache.deletes)

	// First read misses and fills the cache; second read is served from it.
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.lists)

	// Posting invalidates, so the next read hits the store again.
	_, err = svc.Post(context.Background(), bob, dto.CreateBlogPost{Title: "second", Content: "body"})
	require.NoError(t, err)

	feed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.lists)
	require.Len(t, feed, 2)
	require.Equal(t, "second", feed[0].Title)
}
