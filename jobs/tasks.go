package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gatewarden/gatewarden/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTokenPurge is the task type for the refresh token expiry sweep.
	TaskTokenPurge = "tokens:purge"
)

// TokenPurger deletes refresh tokens past their expiry.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// NewTokenPurgeTask constructs an Asynq task. The sweep carries no payload.
func NewTokenPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskTokenPurge, nil)
}

// NewTokenPurgeHandler builds the handler for TaskTokenPurge tasks. Expired
// tokens are also rejected whenever presented; the sweep removes rows that
// would otherwise sit in storage forever.
func NewTokenPurgeHandler(purger TokenPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("token_purge")
		deleted, err := purger.PurgeExpiredTokens(ctx)
		if err != nil {
			logger.Error("token purge", slog.Any("error", err))
			return tracker.End(err)
		}
		metrics.AddPurgedTokens(deleted)
		if deleted > 0 {
			logger.Info("token purge", slog.Int64("deleted", deleted))
		}
		return tracker.End(nil)
	}
}
