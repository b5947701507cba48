package core

import (
	"fmt"
	"log"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/cache"
	"github.com/duoshoumiao/bilibilisearch/internal/config"
	"github.com/duoshoumiao/bilibilisearch/internal/directory"
	"github.com/duoshoumiao/bilibilisearch/internal/jobs"
	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/notify"
	"github.com/duoshoumiao/bilibilisearch/internal/store"
	"github.com/duoshoumiao/bilibilisearch/internal/watcher"
)

// App holds the core components of the application that are shared
// between the server and the background jobs. It implements
// jobs.JobContext.
type App struct {
	cfg     *config.Config
	st      *store.Store
	results *cache.Results
	hub     *notify.Hub
	dir     models.Directory
	wt      *watcher.Service
	jobMgr  *jobs.JobManager
	version string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, loading the watch list from disk, and wiring the
// directory, cache, hub and job manager together.
func New(version string) (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	st := store.New(cfg.Data.Path)
	if err := st.Load(); err != nil {
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}

	dir, ok := directory.Get(cfg.Directory.ID)
	if !ok {
		return nil, fmt.Errorf("directory %q is not registered", cfg.Directory.ID)
	}

	app := NewWithDirectory(cfg, st, dir, version)
	log.Println("Core application setup complete.")
	return app, nil
}

// NewWithDirectory builds an App around an already-constructed directory
// backend, wiring the result cache, hub, watcher and job manager. Tests
// use it to swap in the mock directory.
func NewWithDirectory(cfg *config.Config, st *store.Store, dir models.Directory, version string) *App {
	results := cache.NewResults(time.Duration(cfg.Cache.TTL) * time.Minute)
	cached := cache.Directory(dir, results)
	hub := notify.NewHub()

	app := &App{
		cfg:     cfg,
		st:      st,
		results: results,
		hub:     hub,
		dir:     cached,
		wt:      watcher.New(st, cached, hub, time.Duration(cfg.Watch.FetchDelay)*time.Second),
		version: version,
	}
	app.jobMgr = jobs.NewManager(app)
	jobs.RegisterDefaults(app.jobMgr)
	return app
}

func (a *App) Config() *config.Config       { return a.cfg }
func (a *App) Store() *store.Store          { return a.st }
func (a *App) Cache() *cache.Results        { return a.results }
func (a *App) Hub() *notify.Hub             { return a.hub }
func (a *App) Directory() models.Directory  { return a.dir }
func (a *App) Watcher() *watcher.Service    { return a.wt }
func (a *App) JobManager() *jobs.JobManager { return a.jobMgr }
func (a *App) Version() string              { return a.version }
