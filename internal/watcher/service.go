// Package watcher runs the periodic reconcile pass: for every watched
// creator, fetch their newest attributable upload, decide whether it is
// genuinely new, and emit exactly one notification when it is.
package watcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/resolver"
	"github.com/duoshoumiao/bilibilisearch/internal/store"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
)

const fetchPageSize = 5

// Notifier receives one event per confirmed new video. The websocket hub
// implements it; tests substitute a recorder.
type Notifier interface {
	Publish(models.Notification)
}

// Service holds the dependencies for the reconcile pass.
type Service struct {
	st       *store.Store
	dir      models.Directory // cache-wrapped
	notifier Notifier

	// fetchDelay spaces out upstream requests between subscriptions so a
	// long watch list doesn't look like a scraper burst.
	fetchDelay time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a watcher service.
func New(st *store.Store, dir models.Directory, notifier Notifier, fetchDelay time.Duration) *Service {
	return &Service{
		st:         st,
		dir:        dir,
		notifier:   notifier,
		fetchDelay: fetchDelay,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// CheckAll reconciles every subscription sequentially. One creator's
// failure never aborts the rest of the pass; the only concurrency bound
// that matters here is keeping at most one upstream request in flight.
func (s *Service) CheckAll(ctx context.Context) {
	subs := s.st.ListAll()
	if len(subs) == 0 {
		return
	}
	log.Printf("Running watch reconcile pass over %d subscriptions...", len(subs))

	checked, notified := 0, 0
	for i, sub := range subs {
		if i > 0 {
			s.sleep(s.fetchDelay)
		}
		if ctx.Err() != nil {
			log.Printf("Reconcile pass cancelled after %d subscriptions", checked)
			return
		}
		didNotify, err := s.CheckOne(ctx, sub)
		if err != nil {
			log.Printf("Watch check failed for '%s' in group %s: %v", sub.DisplayName, sub.GroupID, err)
			continue
		}
		checked++
		if didNotify {
			notified++
		}
	}
	log.Printf("Finished reconcile pass: %d checked, %d notified.", checked, notified)
}

// CheckOne reconciles a single subscription and reports whether a
// notification fired. On error the stored state is untouched; the
// subscription is simply retried on the next pass.
func (s *Service) CheckOne(ctx context.Context, sub models.Subscription) (bool, error) {
	latest, err := s.latestFor(ctx, sub)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, fmt.Errorf("no attributable upload found")
	}

	now := s.now()
	newName := s.renamedTo(sub, latest.Author)

	if latest.ID == sub.LastVideoID {
		// Nothing new; record the attempt (and any rename) and move on.
		s.recordNoChange(sub, newName, now)
		return false, nil
	}

	// A fresh subscription (empty LastVideoID) gets no special treatment:
	// the publish-time guard below decides, so an upload newer than the
	// last check is announced on the very first pass. Subscribing
	// baselines LastCheckedAt, which keeps old uploads quiet.
	if !latest.PublishedAt.After(sub.LastCheckedAt) {
		// A different ID but an old publish time: the directory handed us
		// a stale or relisted record. Never regress onto it.
		s.recordNoChange(sub, newName, now)
		return false, nil
	}

	displayName := sub.DisplayName
	if newName != "" {
		displayName = newName
	}
	s.notifier.Publish(models.Notification{
		GroupID:      sub.GroupID,
		Creator:      displayName,
		Title:        latest.Title,
		PublishedAt:  latest.PublishedAt,
		Link:         util.VideoLink(latest.ID),
		ThumbnailURL: latest.ThumbnailURL,
	})
	s.st.UpdateLastSeen(sub.GroupID, sub.CreatorKey, latest.ID, newName, now)
	return true, nil
}

// recordNoChange stamps the check and persists a rename observed on an
// otherwise unchanged subscription. LastVideoID is kept as it was.
func (s *Service) recordNoChange(sub models.Subscription, newName string, now time.Time) {
	if newName != "" {
		s.st.UpdateLastSeen(sub.GroupID, sub.CreatorKey, sub.LastVideoID, newName, now)
	} else {
		s.st.TouchChecked(sub.GroupID, sub.CreatorKey, now)
	}
}

// latestFor fetches the newest upload attributable to the subscribed
// creator. A record by anyone else is never accepted, no matter how well
// it matched the search keywords.
func (s *Service) latestFor(ctx context.Context, sub models.Subscription) (*models.VideoRecord, error) {
	if sub.CreatorID > 0 {
		videos, err := s.dir.GetCreatorRecentVideos(ctx, sub.CreatorID, fetchPageSize)
		if err != nil {
			return nil, err
		}
		if v := s.pickAttributable(sub, videos); v != nil {
			return v, nil
		}
	}

	// No creator ID on file, or the space listing came back empty; fall
	// back to a newest-first keyword search filtered by author.
	videos, err := s.dir.SearchVideos(ctx, sub.DisplayName, models.OrderNewest, fetchPageSize)
	if err != nil {
		return nil, err
	}
	return s.pickAttributable(sub, videos), nil
}

func (s *Service) pickAttributable(sub models.Subscription, videos []models.VideoRecord) *models.VideoRecord {
	for i := range videos {
		if s.attributable(sub, &videos[i]) {
			return &videos[i]
		}
	}
	return nil
}

func (s *Service) attributable(sub models.Subscription, v *models.VideoRecord) bool {
	if sub.CreatorID > 0 && v.AuthorID > 0 {
		return v.AuthorID == sub.CreatorID
	}
	return util.NormalizeName(v.Author) == util.NormalizeName(sub.DisplayName)
}

// renamedTo reports the new display name when the creator renamed, or ""
// when the stored name still stands.
func (s *Service) renamedTo(sub models.Subscription, observed string) string {
	if observed == "" {
		return ""
	}
	switch resolver.ClassifyRename(sub.DisplayName, observed) {
	case resolver.RenameUnchanged:
		return ""
	case resolver.RenameSuspicious:
		log.Printf("Warning: creator '%s' (group %s) now appears as '%s'; name barely resembles the old one",
			sub.DisplayName, sub.GroupID, observed)
	}
	return observed
}
