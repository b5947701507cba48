package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/api"
	"github.com/duoshoumiao/bilibilisearch/internal/config"
	"github.com/duoshoumiao/bilibilisearch/internal/core"
	"github.com/duoshoumiao/bilibilisearch/internal/directory"
	"github.com/duoshoumiao/bilibilisearch/internal/directory/bilibili"
	"github.com/duoshoumiao/bilibilisearch/internal/directory/mockbili"
	"github.com/duoshoumiao/bilibilisearch/internal/jobs"
)

const version = "0.1.0"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// The directory backends are registered before core setup so the
	// configured one can be looked up by ID.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal error loading configuration: %v", err)
	}
	directory.Register(bilibili.New(
		bilibili.WithBaseURL(cfg.Directory.BaseURL),
		bilibili.WithSpaceURL(cfg.Directory.SpaceURL),
		bilibili.WithCookie(cfg.Directory.Cookie),
		bilibili.WithTimeout(time.Duration(cfg.Directory.Timeout)*time.Second),
	))
	directory.Register(mockbili.New())

	// Initialize the core application components
	app, err := core.New(version)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}

	// Start the notification hub and the background job scheduler.
	go app.Hub().Run()
	jobs.StartJobs(app)

	// Kick off one reconcile pass at startup so a restart doesn't wait a
	// full interval before catching up.
	go func() {
		if err := app.JobManager().RunJob(jobs.JobWatchReconcile, app); err != nil {
			log.Printf("Startup reconcile could not start: %v", err)
		}
	}()

	// Setup the API server
	server := api.NewServer(app)
	addr := fmt.Sprintf(":%d", app.Config().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
