// A mock directory for development and testing purposes. It simulates
// searching and fetching from the real platform without making network
// calls, and lets tests publish videos or rename creators on the fly.
package mockbili

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
)

// ErrUnavailable is returned by every method while the mock is switched
// into its "upstream down" mode.
var ErrUnavailable = errors.New("mockbili: upstream unavailable")

type MockDirectory struct {
	mu          sync.Mutex
	creators    map[int64]models.CreatorRecord
	videos      map[int64][]models.VideoRecord // newest first
	unavailable bool
}

func New() *MockDirectory {
	d := &MockDirectory{
		creators: make(map[int64]models.CreatorRecord),
		videos:   make(map[int64][]models.VideoRecord),
	}
	d.seed()
	return d
}

func (d *MockDirectory) seed() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		mid := 1000 + i
		name := fmt.Sprintf("Creator %d", i)
		d.creators[mid] = models.CreatorRecord{ID: mid, Name: name, Fans: 10000 * i}
		for j := 3; j >= 1; j-- {
			d.videos[mid] = append(d.videos[mid], models.VideoRecord{
				ID:          fmt.Sprintf("BVmock%04d%02d", mid, j),
				Title:       fmt.Sprintf("%s upload %d", name, j),
				Author:      name,
				AuthorID:    mid,
				PublishedAt: base.Add(time.Duration(j) * time.Hour),
				Plays:       int64(100 * j),
			})
		}
		sort.Slice(d.videos[mid], func(a, b int) bool {
			return d.videos[mid][a].PublishedAt.After(d.videos[mid][b].PublishedAt)
		})
	}
}

func (d *MockDirectory) GetInfo() models.DirectoryInfo {
	return models.DirectoryInfo{ID: "mockbili", Name: "Mockbili"}
}

func (d *MockDirectory) SearchVideos(ctx context.Context, keyword, order string, pageSize int) ([]models.VideoRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unavailable {
		return nil, ErrUnavailable
	}

	needle := util.NormalizeName(keyword)
	var results []models.VideoRecord
	for _, vids := range d.videos {
		for _, v := range vids {
			if strings.Contains(util.NormalizeName(v.Title), needle) ||
				util.NormalizeName(v.Author) == needle {
				results = append(results, v)
			}
		}
	}
	if order == models.OrderNewest {
		sort.Slice(results, func(a, b int) bool {
			return results[a].PublishedAt.After(results[b].PublishedAt)
		})
	} else {
		sort.Slice(results, func(a, b int) bool { return results[a].Plays > results[b].Plays })
	}
	if pageSize > 0 && len(results) > pageSize {
		results = results[:pageSize]
	}
	return results, nil
}

func (d *MockDirectory) SearchCreators(ctx context.Context, keyword string) ([]models.CreatorRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unavailable {
		return nil, ErrUnavailable
	}

	needle := util.NormalizeName(keyword)
	var results []models.CreatorRecord
	for _, c := range d.creators {
		if strings.Contains(util.NormalizeName(c.Name), needle) {
			results = append(results, c)
		}
	}
	sort.Slice(results, func(a, b int) bool { return results[a].Fans > results[b].Fans })
	return results, nil
}

func (d *MockDirectory) GetCreatorRecentVideos(ctx context.Context, creatorID int64, pageSize int) ([]models.VideoRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unavailable {
		return nil, ErrUnavailable
	}

	vids := d.videos[creatorID]
	out := make([]models.VideoRecord, len(vids))
	copy(out, vids)
	if pageSize > 0 && len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func (d *MockDirectory) GetVideoByID(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unavailable {
		return nil, ErrUnavailable
	}

	for _, vids := range d.videos {
		for _, v := range vids {
			if v.ID == videoID {
				found := v
				return &found, nil
			}
		}
	}
	return nil, nil
}

// --- test hooks ---

// PublishVideo adds a video at the head of a creator's upload list.
func (d *MockDirectory) PublishVideo(creatorID int64, v models.VideoRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v.Author == "" {
		v.Author = d.creators[creatorID].Name
	}
	v.AuthorID = creatorID
	d.videos[creatorID] = append([]models.VideoRecord{v}, d.videos[creatorID]...)
}

// RenameCreator changes a creator's display name on all future results.
func (d *MockDirectory) RenameCreator(creatorID int64, newName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.creators[creatorID]
	c.Name = newName
	d.creators[creatorID] = c
	for i := range d.videos[creatorID] {
		d.videos[creatorID][i].Author = newName
	}
}

// SetUnavailable toggles the simulated upstream outage.
func (d *MockDirectory) SetUnavailable(down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unavailable = down
}
