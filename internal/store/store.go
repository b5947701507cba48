// To handle all watch-list persistence. This is our data access layer,
// keeping the on-disk format and its migrations separate from business logic.

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
)

var (
	ErrAlreadyWatching = errors.New("already watching this creator")
	ErrNotWatching     = errors.New("not watching this creator")
)

const currentVersion = 2

// record is the persisted per-creator value. Field names are stable; the
// loader tolerates unknown fields so older and newer builds can share a file.
type record struct {
	DisplayName   string    `json:"display_name"`
	CreatorID     int64     `json:"creator_id,omitempty"`
	LastVideoID   string    `json:"last_vid"`
	LastCheckedAt time.Time `json:"last_check"`
}

type fileLayout struct {
	Version int                          `json:"version"`
	Groups  map[string]map[string]record `json:"groups"`
}

// legacyRecord is the value of the pre-versioning layout, which keyed
// creators by their numeric ID and kept the name inside the value, with
// unix-second check timestamps.
type legacyRecord struct {
	Name      string `json:"name"`
	LastVid   string `json:"last_vid"`
	LastCheck int64  `json:"last_check"`
}

// Store is the durable mapping of (group, creator) to watch state. The
// source of truth is the groups map and its file on disk; the name index
// is a derived cache and is never persisted.
type Store struct {
	mu     sync.Mutex
	path   string
	groups map[string]map[string]models.Subscription
	// group -> normalized display name -> creator key, for O(1) removal
	// by whatever name the subscriber remembers.
	names map[string]map[string]string
}

// New creates a Store persisting to the given file path. Call Load before use.
func New(path string) *Store {
	return &Store{
		path:   path,
		groups: make(map[string]map[string]models.Subscription),
		names:  make(map[string]map[string]string),
	}
}

// Load reads persisted state. A missing file starts empty; an unparseable
// file is logged and also starts empty, never failing startup. When the
// file is in the legacy creator-ID-keyed layout it is migrated to the
// current form and written back immediately, so migration runs once.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Watch list %s could not be read (%v), starting empty", s.path, err)
		}
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		log.Printf("Watch list %s is not valid JSON (%v), starting empty", s.path, err)
		return nil
	}

	if _, versioned := probe["version"]; versioned {
		var layout fileLayout
		if err := json.Unmarshal(raw, &layout); err != nil {
			log.Printf("Watch list %s has an unreadable layout (%v), starting empty", s.path, err)
			return nil
		}
		s.install(layout.Groups)
		return nil
	}

	// Legacy layout: {"<group>": {"<numeric creator id>": {"name": ...}}}
	var legacy map[string]map[string]legacyRecord
	if err := json.Unmarshal(raw, &legacy); err != nil {
		log.Printf("Watch list %s matches no known layout (%v), starting empty", s.path, err)
		return nil
	}
	migrated := migrateLegacy(legacy)
	s.install(migrated)
	log.Printf("Migrated legacy watch list %s (%d groups)", s.path, len(migrated))
	s.persistLocked()
	return nil
}

// migrateLegacy re-keys every record by normalized display name. When two
// creators in a group share a name, the later one keeps a suffix derived
// from its discarded numeric key so nothing is lost.
func migrateLegacy(legacy map[string]map[string]legacyRecord) map[string]map[string]record {
	groups := make(map[string]map[string]record, len(legacy))
	for groupID, creators := range legacy {
		out := make(map[string]record, len(creators))

		// Map iteration order is random; sort the old keys so collisions
		// resolve the same way on every run.
		oldKeys := make([]string, 0, len(creators))
		for k := range creators {
			oldKeys = append(oldKeys, k)
		}
		sort.Strings(oldKeys)

		for _, oldKey := range oldKeys {
			rec := creators[oldKey]
			key := util.NormalizeName(rec.Name)
			if key == "" {
				key = oldKey
			}
			if _, taken := out[key]; taken {
				key = key + "#" + oldKey
			}
			creatorID, _ := strconv.ParseInt(oldKey, 10, 64)
			var lastCheck time.Time
			if rec.LastCheck > 0 {
				lastCheck = time.Unix(rec.LastCheck, 0).UTC()
			}
			out[key] = record{
				DisplayName:   rec.Name,
				CreatorID:     creatorID,
				LastVideoID:   rec.LastVid,
				LastCheckedAt: lastCheck,
			}
		}
		groups[groupID] = out
	}
	return groups
}

// install replaces in-memory state from a persisted layout and rebuilds
// the name index. Caller holds the lock.
func (s *Store) install(groups map[string]map[string]record) {
	s.groups = make(map[string]map[string]models.Subscription, len(groups))
	s.names = make(map[string]map[string]string, len(groups))
	for groupID, creators := range groups {
		// Sorted keys keep the name index deterministic when migrated
		// collisions ("acme" and "acme#43") share a display name.
		keys := make([]string, 0, len(creators))
		for key := range creators {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			rec := creators[key]
			s.insertLocked(models.Subscription{
				GroupID:       groupID,
				CreatorKey:    key,
				CreatorID:     rec.CreatorID,
				DisplayName:   rec.DisplayName,
				LastVideoID:   rec.LastVideoID,
				LastCheckedAt: rec.LastCheckedAt,
			})
		}
	}
}

func (s *Store) insertLocked(sub models.Subscription) {
	if s.groups[sub.GroupID] == nil {
		s.groups[sub.GroupID] = make(map[string]models.Subscription)
		s.names[sub.GroupID] = make(map[string]string)
	}
	s.groups[sub.GroupID][sub.CreatorKey] = sub
	if norm := util.NormalizeName(sub.DisplayName); norm != "" {
		// When colliding display names compete for the index slot, the
		// unsuffixed key wins so name lookups hit the original entry.
		cur, ok := s.names[sub.GroupID][norm]
		if !ok || (strings.Contains(cur, "#") && !strings.Contains(sub.CreatorKey, "#")) {
			s.names[sub.GroupID][norm] = sub.CreatorKey
		}
	}
}

// Add inserts a new subscription and persists. The creator key defaults
// to the normalized display name when the caller leaves it empty.
func (s *Store) Add(sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.CreatorKey == "" {
		sub.CreatorKey = util.NormalizeName(sub.DisplayName)
	}
	if _, exists := s.groups[sub.GroupID][sub.CreatorKey]; exists {
		return ErrAlreadyWatching
	}
	s.insertLocked(sub)
	s.persistLocked()
	return nil
}

// Remove deletes a subscription identified either by its creator key or by
// a display name in any casing, and returns the removed key.
func (s *Store) Remove(groupID, identifier string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creators := s.groups[groupID]
	if creators == nil {
		return "", ErrNotWatching
	}

	key := identifier
	if _, ok := creators[key]; !ok {
		key = util.NormalizeName(identifier)
	}
	if _, ok := creators[key]; !ok {
		key = s.names[groupID][util.NormalizeName(identifier)]
	}
	sub, ok := creators[key]
	if !ok {
		return "", ErrNotWatching
	}

	delete(creators, key)
	norm := util.NormalizeName(sub.DisplayName)
	// Colliding display names share one index slot; only clear it when it
	// points at the entry being removed, and hand it to a surviving
	// collider so name-based removal keeps working.
	if s.names[groupID][norm] == key {
		delete(s.names[groupID], norm)
		for otherKey, other := range creators {
			if util.NormalizeName(other.DisplayName) == norm {
				s.names[groupID][norm] = otherKey
				break
			}
		}
	}
	if len(creators) == 0 {
		delete(s.groups, groupID)
		delete(s.names, groupID)
	}
	s.persistLocked()
	return key, nil
}

// UpdateLastSeen records a delivered video and, when the creator renamed,
// the new display name. Racing against a concurrent Remove is expected:
// updating a subscription that no longer exists is a no-op, not an error.
func (s *Store) UpdateLastSeen(groupID, creatorKey, videoID, displayName string, checkedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.groups[groupID][creatorKey]
	if !ok {
		return
	}
	sub.LastVideoID = videoID
	sub.LastCheckedAt = checkedAt
	if displayName != "" && displayName != sub.DisplayName {
		delete(s.names[groupID], util.NormalizeName(sub.DisplayName))
		sub.DisplayName = displayName
		s.names[groupID][util.NormalizeName(displayName)] = creatorKey
	}
	s.groups[groupID][creatorKey] = sub
	s.persistLocked()
}

// TouchChecked updates only the last-checked timestamp. No-op when the
// subscription is gone.
func (s *Store) TouchChecked(groupID, creatorKey string, checkedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.groups[groupID][creatorKey]
	if !ok {
		return
	}
	sub.LastCheckedAt = checkedAt
	s.groups[groupID][creatorKey] = sub
	s.persistLocked()
}

// Get returns one subscription by group and creator key.
func (s *Store) Get(groupID, creatorKey string) (models.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.groups[groupID][creatorKey]
	return sub, ok
}

// ListGroup returns a sorted snapshot of one group's subscriptions.
func (s *Store) ListGroup(groupID string) []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []models.Subscription
	for _, sub := range s.groups[groupID] {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatorKey < subs[j].CreatorKey })
	return subs
}

// ListAll returns a sorted snapshot of every subscription.
func (s *Store) ListAll() []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []models.Subscription
	for _, creators := range s.groups {
		for _, sub := range creators {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].GroupID != subs[j].GroupID {
			return subs[i].GroupID < subs[j].GroupID
		}
		return subs[i].CreatorKey < subs[j].CreatorKey
	})
	return subs
}

// persistLocked writes the whole store to disk before the mutating call
// returns, so a crash loses at most the in-flight mutation. A failed write
// is logged and the store keeps serving from memory. Caller holds the lock.
func (s *Store) persistLocked() {
	layout := fileLayout{Version: currentVersion, Groups: make(map[string]map[string]record, len(s.groups))}
	for groupID, creators := range s.groups {
		out := make(map[string]record, len(creators))
		for key, sub := range creators {
			out[key] = record{
				DisplayName:   sub.DisplayName,
				CreatorID:     sub.CreatorID,
				LastVideoID:   sub.LastVideoID,
				LastCheckedAt: sub.LastCheckedAt,
			}
		}
		layout.Groups[groupID] = out
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		log.Printf("Failed to encode watch list: %v", err)
		return
	}

	err = retry.Do(
		func() error { return writeFileAtomic(s.path, data) },
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
	)
	if err != nil {
		log.Printf("Failed to persist watch list to %s (continuing in memory): %v", s.path, err)
	}
}

// writeFileAtomic writes via a temp file and rename so readers never see
// a torn file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
