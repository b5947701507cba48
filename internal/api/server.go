// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/core"
	"github.com/duoshoumiao/bilibilisearch/internal/notify"
	"github.com/duoshoumiao/bilibilisearch/internal/resolver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds the dependencies for our API.
type Server struct {
	app      *core.App
	resolver *resolver.Resolver
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:      app,
		resolver: resolver.New(app.Directory(), app.Config().Watch.FallbackFirstResult),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleGetVersion)
		r.Get("/health", s.handleHealth)

		// Ad-hoc lookups
		r.Get("/search", s.handleSearchVideos)
		r.Get("/creators/resolve", s.handleResolveCreator)

		// Watch list management
		r.Get("/watches", s.handleListAllWatches)
		r.Post("/watches/recheck", s.handleRecheckAll)
		r.Route("/groups/{groupID}/watches", func(r chi.Router) {
			r.Get("/", s.handleListGroupWatches)
			r.Post("/", s.handleAddWatch)
			r.Post("/link", s.handleAddWatchByLink)
			r.Delete("/{identifier}", s.handleRemoveWatch)
		})

		// Background job visibility
		r.Get("/jobs", s.handleGetJobsStatus)
	})

	// WebSocket route for the notification feed
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		notify.ServeWs(s.app.Hub(), w, r)
	})

	return r
}
