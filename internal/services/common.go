package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

// notFound turns gorm.ErrRecordNotFound into apperror.ErrNotFound and leaves
// every other error untouched.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), apperror.ErrNotFound)
	}
	return err
}

// activityLog appends to the activity log without ever failing the caller.
type activityLog struct {
	repo repositories.ActivityRepository
}

func newActivityLog(repo repositories.ActivityRepository) activityLog {
	if repo == nil {
		repo = repositories.NopActivityRepository{}
	}
	return activityLog{repo: repo}
}

func (a activityLog) record(ctx context.Context, profileID uint, kind string, targetID uint, summary string) {
	err := a.repo.Record(ctx, &models.Activity{
		ProfileID: profileID,
		Kind:      kind,
		TargetID:  targetID,
		Summary:   summary,
	})
	if err != nil {
		logger.Warn("failed to record activity",
			zap.Uint("profile_id", profileID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

// notify creates a notification unless the actor is the recipient.
func notify(ctx context.Context, repo repositories.NotificationRepository, n *models.Notification) error {
	if n.ActorID == n.RecipientID {
		return nil
	}
	return repo.CreateNotification(ctx, n)
}
