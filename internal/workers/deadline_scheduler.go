package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/tasks"
)

// StartDeadlineScheduler runs a periodic check (every minute) and, when the
// configured cron schedule fires, enqueues close tasks for active jobs whose
// deadline has passed
func StartDeadlineScheduler(client *asynq.Client, db *gorm.DB, schedule string, logger zerolog.Logger) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		logger.Error().Err(err).Str("schedule", schedule).Msg("Invalid sweep schedule - deadline sweep disabled")
		return
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then on the cron schedule
	sweepExpiredJobs(client, db, logger)
	next := sched.Next(time.Now())

	for range ticker.C {
		if time.Now().Before(next) {
			continue
		}
		sweepExpiredJobs(client, db, logger)
		next = sched.Next(time.Now())
	}
}

func sweepExpiredJobs(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	var jobs []models.Job
	err := db.Where("status = ? AND deadline IS NOT NULL AND deadline < ?",
		models.JobStatusActive, time.Now()).Find(&jobs).Error
	if err != nil {
		logger.Error().Err(err).Msg("Failed to query expired jobs")
		return
	}

	if len(jobs) == 0 {
		logger.Debug().Msg("No expired jobs")
		return
	}

	logger.Info().Int("count", len(jobs)).Msg("Enqueueing close tasks for expired jobs")

	for _, job := range jobs {
		task, err := tasks.NewJobCloseTask(job.ID)
		if err != nil {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to build close task")
			continue
		}
		if _, err := client.Enqueue(task); err != nil {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to enqueue close task")
		}
	}
}
