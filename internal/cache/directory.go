package cache

import (
	"context"
	"strconv"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

// cachedDirectory decorates a Directory with the result caches. Only
// non-empty successful lookups are memoized: failures and empty results
// always go back upstream, so a transient outage never sticks for a TTL.
type cachedDirectory struct {
	inner models.Directory
	res   *Results
}

// Directory wraps a directory backend so every read goes through the
// result caches. GetVideoByID is deliberately uncached; single-video
// lookups happen once per subscribe command.
func Directory(inner models.Directory, res *Results) models.Directory {
	return &cachedDirectory{inner: inner, res: res}
}

func (c *cachedDirectory) GetInfo() models.DirectoryInfo { return c.inner.GetInfo() }

func (c *cachedDirectory) SearchVideos(ctx context.Context, keyword, order string, pageSize int) ([]models.VideoRecord, error) {
	kind := KindVideo
	if order == models.OrderNewest {
		kind = KindCreator
	}
	if hit, ok := c.res.Videos.Get(kind, keyword); ok {
		return hit, nil
	}
	results, err := c.inner.SearchVideos(ctx, keyword, order, pageSize)
	if err == nil && len(results) > 0 {
		c.res.Videos.Put(kind, keyword, results)
	}
	return results, err
}

func (c *cachedDirectory) SearchCreators(ctx context.Context, keyword string) ([]models.CreatorRecord, error) {
	if hit, ok := c.res.Creators.Get(KindUser, keyword); ok {
		return hit, nil
	}
	results, err := c.inner.SearchCreators(ctx, keyword)
	if err == nil && len(results) > 0 {
		c.res.Creators.Put(KindUser, keyword, results)
	}
	return results, err
}

func (c *cachedDirectory) GetCreatorRecentVideos(ctx context.Context, creatorID int64, pageSize int) ([]models.VideoRecord, error) {
	key := strconv.FormatInt(creatorID, 10)
	if hit, ok := c.res.Videos.Get(KindSpace, key); ok {
		return hit, nil
	}
	results, err := c.inner.GetCreatorRecentVideos(ctx, creatorID, pageSize)
	if err == nil && len(results) > 0 {
		c.res.Videos.Put(KindSpace, key, results)
	}
	return results, err
}

func (c *cachedDirectory) GetVideoByID(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	return c.inner.GetVideoByID(ctx, videoID)
}
