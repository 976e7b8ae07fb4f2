package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/tasks"
)

// HandleJobClose closes a job whose deadline has passed and notifies the
// employer. A job already closed (e.g. manually) is left alone.
func HandleJobClose(ctx context.Context, t *asynq.Task, client *asynq.Client, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseJobClosePayload(t)
	if err != nil {
		return err
	}

	var job models.Job
	if err := db.WithContext(ctx).Where("id = ?", payload.JobID).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("job_id", payload.JobID).Msg("Job vanished before close")
			return nil
		}
		return fmt.Errorf("failed to find job: %w", err)
	}

	if job.Status == models.JobStatusClosed {
		return nil
	}

	now := time.Now()
	if err := db.Model(&job).Updates(map[string]interface{}{
		"status":    models.JobStatusClosed,
		"closed_at": &now,
	}).Error; err != nil {
		return fmt.Errorf("failed to close job: %w", err)
	}

	logger.Info().Str("job_id", job.ID).Msg("Job closed by deadline sweep")

	notifyTask, err := tasks.NewNotificationDeliverTask(job.EmployerID, tasks.KindJobClosed,
		fmt.Sprintf("Your job %q reached its deadline and was closed", job.Title))
	if err != nil {
		return err
	}
	if _, err := client.Enqueue(notifyTask); err != nil {
		logger.Warn().Err(err).Msg("Failed to enqueue job-closed notification")
	}

	return nil
}
