package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

// countingDirectory records how often each upstream method is hit.
type countingDirectory struct {
	searches int
	spaces   int
	fail     bool
}

func (d *countingDirectory) GetInfo() models.DirectoryInfo {
	return models.DirectoryInfo{ID: "counting", Name: "Counting"}
}

func (d *countingDirectory) SearchVideos(ctx context.Context, keyword, order string, pageSize int) ([]models.VideoRecord, error) {
	d.searches++
	if d.fail {
		return nil, errors.New("upstream down")
	}
	return []models.VideoRecord{{ID: "BV1", Author: keyword}}, nil
}

func (d *countingDirectory) SearchCreators(ctx context.Context, keyword string) ([]models.CreatorRecord, error) {
	return nil, nil
}

func (d *countingDirectory) GetCreatorRecentVideos(ctx context.Context, creatorID int64, pageSize int) ([]models.VideoRecord, error) {
	d.spaces++
	return []models.VideoRecord{{ID: "BV2", AuthorID: creatorID}}, nil
}

func (d *countingDirectory) GetVideoByID(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	return nil, nil
}

func TestCachedDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("Repeated searches hit upstream once", func(t *testing.T) {
		upstream := &countingDirectory{}
		d := Directory(upstream, NewResults(3*time.Minute))

		for i := 0; i < 3; i++ {
			if _, err := d.SearchVideos(ctx, "acme", models.OrderNewest, 5); err != nil {
				t.Fatalf("SearchVideos failed: %v", err)
			}
		}
		if upstream.searches != 1 {
			t.Errorf("Upstream searched %d times, want 1", upstream.searches)
		}
	})

	t.Run("Orderings do not share entries", func(t *testing.T) {
		upstream := &countingDirectory{}
		d := Directory(upstream, NewResults(3*time.Minute))

		d.SearchVideos(ctx, "acme", models.OrderNewest, 5)
		d.SearchVideos(ctx, "acme", models.OrderRelevance, 5)
		if upstream.searches != 2 {
			t.Errorf("Expected both orderings to reach upstream, got %d calls", upstream.searches)
		}
	})

	t.Run("Errors are not cached", func(t *testing.T) {
		upstream := &countingDirectory{fail: true}
		d := Directory(upstream, NewResults(3*time.Minute))

		d.SearchVideos(ctx, "acme", models.OrderNewest, 5)
		upstream.fail = false
		results, err := d.SearchVideos(ctx, "acme", models.OrderNewest, 5)
		if err != nil || len(results) != 1 {
			t.Errorf("Recovered upstream should serve results, got %v, %v", results, err)
		}
	})

	t.Run("Upload listings cached by creator ID", func(t *testing.T) {
		upstream := &countingDirectory{}
		d := Directory(upstream, NewResults(3*time.Minute))

		d.GetCreatorRecentVideos(ctx, 42, 5)
		d.GetCreatorRecentVideos(ctx, 42, 5)
		d.GetCreatorRecentVideos(ctx, 43, 5)
		if upstream.spaces != 2 {
			t.Errorf("Upstream hit %d times, want 2 (one per creator)", upstream.spaces)
		}
	})
}
