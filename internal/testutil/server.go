// A NEW file to hold a shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/duoshoumiao/bilibilisearch/internal/api"
	"github.com/duoshoumiao/bilibilisearch/internal/config"
	"github.com/duoshoumiao/bilibilisearch/internal/core"
	"github.com/duoshoumiao/bilibilisearch/internal/directory/mockbili"
	"github.com/duoshoumiao/bilibilisearch/internal/store"
)

// SetupTestApp builds a core.App backed by a temp-file store and the mock
// directory. The cache TTL is zero so every lookup reaches the mock.
func SetupTestApp(t *testing.T) (*core.App, *mockbili.MockDirectory) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Data.Path = filepath.Join(t.TempDir(), "watchlist.json")
	cfg.Watch.FallbackFirstResult = true

	st := store.New(cfg.Data.Path)
	if err := st.Load(); err != nil {
		t.Fatalf("Failed to load test store: %v", err)
	}

	dir := mockbili.New()
	app := core.NewWithDirectory(cfg, st, dir, "test")
	go app.Hub().Run()
	return app, dir
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *core.App, *mockbili.MockDirectory) {
	t.Helper()
	app, dir := SetupTestApp(t)
	return api.NewServer(app), app, dir
}
