package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/service"
)

// RecomputeWorker runs the batch recomputation on a cron schedule. The batch
// itself is idempotent, so a run overlapping a manual trigger is harmless.
type RecomputeWorker struct {
	recompute *service.RecomputeService
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewRecomputeWorker builds the scheduled worker. schedule accepts standard
// cron expressions and descriptors such as "@hourly".
func NewRecomputeWorker(recompute *service.RecomputeService, schedule string, logger *zap.Logger) *RecomputeWorker {
	return &RecomputeWorker{
		recompute: recompute,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the job and starts the scheduler.
func (w *RecomputeWorker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		if _, err := w.recompute.Run(context.Background(), service.RecomputeFilter{}); err != nil {
			w.logger.Error("scheduled sla recompute failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("sla recompute scheduled", zap.String("schedule", w.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (w *RecomputeWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// RegisterNotificationHandlers subscribes the notification service to the
// SLA event stream.
func RegisterNotificationHandlers(dispatcher events.Dispatcher, notifications *service.NotificationService) {
	if notifications == nil {
		return
	}
	notifications.Register(dispatcher)
}
