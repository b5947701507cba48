package models

import "context"

// Search orderings understood by the video directory.
const (
	OrderRelevance = "totalrank"
	OrderNewest    = "pubdate"
)

// DirectoryInfo contains static information about a directory backend.
type DirectoryInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory is the capability the video platform exposes to us. The
// upstream is unreliable: every method may come back empty (stale cache,
// no exact match, upstream error swallowed by the client) and callers must
// treat an empty result as "nothing found", never as a reason to fail.
type Directory interface {
	GetInfo() DirectoryInfo

	// SearchVideos runs a keyword search, ordered by order (OrderRelevance
	// or OrderNewest), returning at most pageSize records.
	SearchVideos(ctx context.Context, keyword, order string, pageSize int) ([]VideoRecord, error)

	// SearchCreators searches creator accounts by name.
	SearchCreators(ctx context.Context, keyword string) ([]CreatorRecord, error)

	// GetCreatorRecentVideos lists a creator's uploads, newest first.
	GetCreatorRecentVideos(ctx context.Context, creatorID int64, pageSize int) ([]VideoRecord, error)

	// GetVideoByID looks up a single video. A nil record with a nil error
	// means the directory does not know the ID.
	GetVideoByID(ctx context.Context, videoID string) (*VideoRecord, error)
}
