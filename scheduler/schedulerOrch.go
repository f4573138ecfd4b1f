package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"picksBot/models"
	"picksBot/scheduler/scheduler_jobs"
	"picksBot/services/metrics"
	"picksBot/services/pickService"
	"picksBot/services/postService"
	"picksBot/services/realtime"
	"picksBot/services/store"
)

// Jobs are the collaborators the cron jobs run against.
type Jobs struct {
	Store     store.Store
	Games     scheduler_jobs.EventSource
	Hub       *realtime.Hub
	Picks     *pickService.Service
	Posts     *postService.Service
	Metrics   *metrics.Metrics
	OnSettled func(models.Post)
}

func SetupCron(jobs Jobs) (*cron.Cron, error) {
	cronService := cron.New(cron.WithSeconds())

	var errs []error
	add := func(spec string, job func()) {
		if _, err := cronService.AddFunc(spec, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spec, err))
		}
	}

	// Every 5 seconds, the change stream
	add("*/5 * * * * *", jobs.Hub.Run)

	// Every 10 minutes, grade finished games
	add("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		err := scheduler_jobs.CheckPickResults(ctx, jobs.Store, jobs.Games, jobs.Metrics, jobs.OnSettled)
		if err != nil {
			slog.Error("pick settlement failed", "error", err)
		}
	})

	// Every minute, drop idle builder sessions and feed views
	add("0 * * * * *", func() {
		jobs.Picks.CleanupSessions()
		if removed := jobs.Posts.Views().Cleanup(time.Now()); removed > 0 {
			slog.Info("idle feed views closed", "count", removed)
		}
	})

	if len(errs) > 0 {
		for _, err := range errs {
			jobs.Store.LogError(context.Background(), models.ErrorLog{Source: "cron", Message: err.Error()})
		}
		return nil, errs[0]
	}

	cronService.Start()
	return cronService, nil
}
