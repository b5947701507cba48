package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job names as they appear in the manager and the API.
const (
	JobWatchReconcile = "watch-reconcile"
	JobCacheSweep     = "cache-sweep"
)

// RegisterDefaults wires up the standard background jobs.
func RegisterDefaults(jm *JobManager) {
	jm.Register(JobWatchReconcile, func(ctx JobContext) {
		ctx.Watcher().CheckAll(context.Background())
	})
	jm.Register(JobCacheSweep, func(ctx JobContext) {
		if n := ctx.Cache().Sweep(); n > 0 {
			log.Printf("Cache sweep evicted %d expired entries.", n)
		}
	})
}

// StartJobs starts the background job scheduler.
func StartJobs(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startWatchReconcileJob(s, app)
	startCacheSweepJob(s, app)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
}

func startWatchReconcileJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().Watch.Interval
	if interval == 0 {
		log.Println("Watch interval is 0, scheduled reconciliation is disabled.")
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", JobWatchReconcile, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", JobWatchReconcile)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(JobWatchReconcile, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", JobWatchReconcile, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", JobWatchReconcile, err)
	}
}

func startCacheSweepJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().Cache.SweepInterval
	if interval == 0 {
		log.Println("Cache sweep interval is 0, scheduled sweep is disabled.")
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", JobCacheSweep, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		err := app.JobManager().RunJob(JobCacheSweep, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", JobCacheSweep, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", JobCacheSweep, err)
	}
}
