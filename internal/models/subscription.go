package models

import "time"

// Subscription is one creator watched by one subscriber group.
//
// CreatorKey is the canonical index key: the creator's display name at
// subscribe time, trimmed and case-folded. The stable numeric creator ID,
// when the directory could supply one, lives in CreatorID and is preferred
// for fetching and attribution; the key itself never changes on rename.
type Subscription struct {
	GroupID       string    `json:"group_id"`
	CreatorKey    string    `json:"creator_key"`
	CreatorID     int64     `json:"creator_id,omitempty"`
	DisplayName   string    `json:"display_name"`
	LastVideoID   string    `json:"last_vid"`
	LastCheckedAt time.Time `json:"last_check"`
}
