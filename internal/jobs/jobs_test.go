package jobs_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/cache"
	"github.com/duoshoumiao/bilibilisearch/internal/directory/mockbili"
	"github.com/duoshoumiao/bilibilisearch/internal/jobs"
	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/notify"
	"github.com/duoshoumiao/bilibilisearch/internal/store"
	"github.com/duoshoumiao/bilibilisearch/internal/watcher"
)

// setupJobContext builds a context with a real store, mock directory and
// watcher wired together, the way the server does at startup.
func setupJobContext(t *testing.T) *fakeJobContext {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "watchlist.json"))
	if err := st.Load(); err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}
	hub := notify.NewHub()
	go hub.Run()

	dir := mockbili.New()
	ctx := newFakeContext()
	ctx.st = st
	ctx.results = cache.NewResults(time.Minute)
	ctx.hub = hub
	ctx.dir = dir
	ctx.wt = watcher.New(st, dir, hub, 0)
	ctx.jobMgr = jobs.NewManager(ctx)
	jobs.RegisterDefaults(ctx.jobMgr)
	return ctx
}

func TestWatchReconcileJob(t *testing.T) {
	ctx := setupJobContext(t)
	ctx.st.Add(models.Subscription{GroupID: "g1", DisplayName: "Creator 1", CreatorID: 1001})

	if err := ctx.jobMgr.RunJob(jobs.JobWatchReconcile, ctx); err != nil {
		t.Fatalf("Failed to run job: %v", err)
	}

	// The job runs asynchronously; poll until it has baselined the
	// subscription or we give up.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sub, ok := ctx.st.Get("g1", "creator 1")
		if ok && sub.LastVideoID != "" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected reconcile job to record a last-seen video")
}

func TestCacheSweepJob(t *testing.T) {
	ctx := setupJobContext(t)
	ctx.results.Videos.Put(cache.KindVideo, "stale", nil)

	if err := ctx.jobMgr.RunJob(jobs.JobCacheSweep, ctx); err != nil {
		t.Fatalf("Failed to run job: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, s := range ctx.jobMgr.GetStatus() {
			if s.Name == jobs.JobCacheSweep && s.Status == "success" {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected cache sweep job to finish successfully")
}
