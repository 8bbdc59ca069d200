package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/balcao-pos/backend/pkg/logger"
)

const defaultPrintJobRetention = 30 * 24 * time.Hour

type printJobCleaner interface {
	DeletePrintedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteFailedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrintJobRetentionJobParams configure the print queue cleanup.
type PrintJobRetentionJobParams struct {
	Logger    *logger.Logger
	PrintRepo printJobCleaner
	Retention time.Duration
}

// NewPrintJobRetentionJob builds the job that drops settled print jobs older
// than the retention window. Queued jobs are never touched.
func NewPrintJobRetentionJob(params PrintJobRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.PrintRepo == nil {
		return nil, fmt.Errorf("print job repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultPrintJobRetention
	}
	return &printJobRetentionJob{
		logg:      params.Logger,
		printRepo: params.PrintRepo,
		retention: retention,
		now:       time.Now,
	}, nil
}

type printJobRetentionJob struct {
	logg      *logger.Logger
	printRepo printJobCleaner
	retention time.Duration
	now       func() time.Time
}

func (j *printJobRetentionJob) Name() string { return "print-job-retention" }

func (j *printJobRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	var errs []error
	printed, err := j.printRepo.DeletePrintedBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete printed jobs: %w", err))
	}
	failed, err := j.printRepo.DeleteFailedBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete failed jobs: %w", err))
	}
	if combined := multierr.Combine(errs...); combined != nil {
		return combined
	}

	if printed+failed > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{"printed": printed, "failed": failed})
		j.logg.Info(logCtx, "print job retention complete")
	}
	return nil
}
