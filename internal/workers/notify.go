package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/tasks"
)

// HandleNotificationDeliver persists a notification row for the target user
func HandleNotificationDeliver(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseNotificationPayload(t)
	if err != nil {
		return err
	}

	// The target user may have been deleted since the event was enqueued;
	// that is not worth a retry
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", payload.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if count == 0 {
		logger.Warn().Str("user_id", payload.UserID).Msg("Dropping notification for unknown user")
		return nil
	}

	notification := &models.Notification{
		UserID: payload.UserID,
		Kind:   payload.Kind,
		Body:   payload.Body,
	}
	if err := db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	logger.Info().
		Str("notification_id", notification.ID).
		Str("user_id", payload.UserID).
		Str("kind", payload.Kind).
		Msg("Notification delivered")

	return nil
}
