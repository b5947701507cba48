package models

import "time"

// VideoRecord is the platform's metadata for a single video. Records are
// read-only snapshots of what the directory returned; only the ID of the
// most recently delivered video is ever persisted.
type VideoRecord struct {
	ID           string    `json:"id"` // bvid, e.g. "BV1xx411c7mD"
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	AuthorID     int64     `json:"author_id"` // mid, 0 when the endpoint omits it
	PublishedAt  time.Time `json:"published_at"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Plays        int64     `json:"plays"`
}

// CreatorRecord is one account returned by a creator search.
type CreatorRecord struct {
	ID        int64  `json:"id"` // mid
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Fans      int64  `json:"fans"`
}

// Notification is the event emitted once per newly confirmed video. The
// chat transport consumes these; nothing here is persisted.
type Notification struct {
	GroupID      string    `json:"group_id"`
	Creator      string    `json:"creator"`
	Title        string    `json:"title"`
	PublishedAt  time.Time `json:"published_at"`
	Link         string    `json:"link"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}
