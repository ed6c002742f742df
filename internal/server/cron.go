package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
)

// jobTimeout bounds one scheduled run.
const jobTimeout = 5 * time.Minute

// Schedule holds the cron expressions of the recurring jobs. An empty
// expression disables its job.
type Schedule struct {
	Summary string
	Batch   string
	Commit  bool
}

// NewScheduler registers the summary and batch jobs for today's JST date.
// The caller starts and stops the returned cron.
func NewScheduler(svc *pipeline.Service, logger *zap.Logger, sched Schedule) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()

	if sched.Summary != "" {
		_, err := c.AddFunc(sched.Summary, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			logger.Info("Running scheduled summary job...")
			res, err := svc.GetDailySummary(ctx, svc.Today(), sched.Commit, scraper.DefaultPages)
			if err != nil {
				logger.Error("Cron job failed", zap.String("job", pipeline.JobSummary), zap.Error(err))
				return
			}
			logger.Info("Cron job completed",
				zap.String("job", pipeline.JobSummary),
				zap.String("write_status", res.WriteStatus),
				zap.String("error", res.Error),
				zap.Strings("errors", res.Errors))
		})
		if err != nil {
			return nil, fmt.Errorf("summary schedule %q: %w", sched.Summary, err)
		}
	}

	if sched.Batch != "" {
		_, err := c.AddFunc(sched.Batch, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			logger.Info("Running scheduled batch job...")
			_, res, err := svc.Batch(ctx, svc.Today(), "", sched.Commit)
			if err != nil {
				logger.Error("Cron job failed", zap.String("job", pipeline.JobBatch), zap.Error(err))
				return
			}
			logger.Info("Cron job completed",
				zap.String("job", pipeline.JobBatch),
				zap.String("result", res.Result),
				zap.Int("rows", len(res.UpdatedRows)))
		})
		if err != nil {
			return nil, fmt.Errorf("batch schedule %q: %w", sched.Batch, err)
		}
	}

	return c, nil
}
