package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

// scriptedDirectory serves canned responses so each resolution path can
// be exercised in isolation.
type scriptedDirectory struct {
	creators []models.CreatorRecord
	uploads  map[int64][]models.VideoRecord
	videos   []models.VideoRecord
}

func (d *scriptedDirectory) GetInfo() models.DirectoryInfo {
	return models.DirectoryInfo{ID: "scripted", Name: "Scripted"}
}

func (d *scriptedDirectory) SearchVideos(ctx context.Context, keyword, order string, pageSize int) ([]models.VideoRecord, error) {
	return d.videos, nil
}

func (d *scriptedDirectory) SearchCreators(ctx context.Context, keyword string) ([]models.CreatorRecord, error) {
	return d.creators, nil
}

func (d *scriptedDirectory) GetCreatorRecentVideos(ctx context.Context, creatorID int64, pageSize int) ([]models.VideoRecord, error) {
	return d.uploads[creatorID], nil
}

func (d *scriptedDirectory) GetVideoByID(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	return nil, nil
}

func TestResolveExactCreator(t *testing.T) {
	dir := &scriptedDirectory{
		creators: []models.CreatorRecord{
			{ID: 99, Name: "Acme Fanclub"},
			{ID: 42, Name: "Acme"},
		},
		uploads: map[int64][]models.VideoRecord{
			42: {{ID: "BV1", Author: "Acme", AuthorID: 42, PublishedAt: time.Now()}},
		},
	}
	r := New(dir, true)

	res, err := r.Resolve(context.Background(), "  ACME ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != MatchExact {
		t.Fatalf("Expected MatchExact, got %v", res.Kind)
	}
	if res.CreatorID != 42 || res.CreatorName != "Acme" {
		t.Errorf("Matched wrong creator: %+v", res)
	}
	if res.Video == nil || res.Video.ID != "BV1" {
		t.Errorf("Expected newest upload BV1, got %+v", res.Video)
	}
}

func TestResolveAuthorFilteredFallback(t *testing.T) {
	dir := &scriptedDirectory{
		videos: []models.VideoRecord{
			{ID: "BVx", Author: "Someone Else", AuthorID: 7},
			{ID: "BVy", Author: "acme", AuthorID: 42},
		},
	}
	r := New(dir, true)

	res, err := r.Resolve(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != MatchExact || res.Video == nil || res.Video.ID != "BVy" {
		t.Errorf("Expected exact match on author-filtered candidate, got %+v", res)
	}
}

func TestResolveNumericQuery(t *testing.T) {
	dir := &scriptedDirectory{
		videos: []models.VideoRecord{
			{ID: "BVx", Author: "Whoever", AuthorID: 42},
		},
	}
	r := New(dir, true)

	res, err := r.Resolve(context.Background(), "42")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != MatchExact || res.CreatorID != 42 {
		t.Errorf("Numeric query should match on author ID, got %+v", res)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	dir := &scriptedDirectory{
		videos: []models.VideoRecord{
			{ID: "BVtop", Author: "Almost Acme", AuthorID: 7},
		},
	}

	t.Run("Fallback enabled surfaces a hint", func(t *testing.T) {
		res, err := New(dir, true).Resolve(context.Background(), "Acme")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if res.Kind != MatchAmbiguous || res.Video == nil || res.Video.ID != "BVtop" {
			t.Errorf("Expected ambiguous top-ranked hint, got %+v", res)
		}
	})

	t.Run("Fallback disabled reports no match", func(t *testing.T) {
		res, err := New(dir, false).Resolve(context.Background(), "Acme")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if res.Kind != MatchNone {
			t.Errorf("Expected MatchNone with fallback disabled, got %+v", res)
		}
	})
}

func TestResolveNoMatch(t *testing.T) {
	r := New(&scriptedDirectory{}, true)
	res, err := r.Resolve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != MatchNone {
		t.Errorf("Expected MatchNone, got %+v", res)
	}
}

func TestClassifyRename(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
		want RenameKind
	}{
		{"Identical", "Acme", "Acme", RenameUnchanged},
		{"Case only", "Acme", "ACME", RenameUnchanged},
		{"Whitespace only", " Acme ", "Acme", RenameUnchanged},
		{"Small edit", "Acme Official", "Acme 0fficial", RenameChanged},
		{"Complete replacement", "Acme", "zzqqyyxx88", RenameSuspicious},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyRename(c.old, c.new); got != c.want {
				t.Errorf("ClassifyRename(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
			}
		})
	}
}
