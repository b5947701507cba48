package cache

import (
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

// Results bundles the per-type caches the resolver and watcher share.
// One instance is built at startup and injected; nothing global.
type Results struct {
	Videos   *Cache[[]models.VideoRecord]
	Creators *Cache[[]models.CreatorRecord]
}

// NewResults creates the result caches with a shared TTL.
func NewResults(ttl time.Duration) *Results {
	return &Results{
		Videos:   New[[]models.VideoRecord](ttl),
		Creators: New[[]models.CreatorRecord](ttl),
	}
}

// Sweep clears expired entries from both caches.
func (r *Results) Sweep() int {
	return r.Videos.Sweep() + r.Creators.Sweep()
}
