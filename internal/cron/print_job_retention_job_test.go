package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/balcao-pos/backend/pkg/logger"
)

type cleanerStub struct {
	printedErr error
	failedErr  error

	printedCutoffs []time.Time
	failedCutoffs  []time.Time
}

func (c *cleanerStub) DeletePrintedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	c.printedCutoffs = append(c.printedCutoffs, cutoff)
	return 2, c.printedErr
}

func (c *cleanerStub) DeleteFailedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	c.failedCutoffs = append(c.failedCutoffs, cutoff)
	return 1, c.failedErr
}

func TestPrintJobRetentionJobRun(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	cleaner := &cleanerStub{}
	job, err := NewPrintJobRetentionJob(PrintJobRetentionJobParams{
		Logger:    logg,
		PrintRepo: cleaner,
		Retention: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if got := job.Name(); got != "print-job-retention" {
		t.Fatalf("name = %q", got)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(cleaner.printedCutoffs) != 1 || len(cleaner.failedCutoffs) != 1 {
		t.Fatalf("cleanup calls: printed=%d failed=%d", len(cleaner.printedCutoffs), len(cleaner.failedCutoffs))
	}
	cutoff := cleaner.printedCutoffs[0]
	if since := time.Since(cutoff); since < 23*time.Hour || since > 25*time.Hour {
		t.Fatalf("cutoff %s not one retention window back", cutoff)
	}
}

func TestPrintJobRetentionJobRun_aggregatesErrors(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	cleaner := &cleanerStub{
		printedErr: errors.New("printed delete failed"),
		failedErr:  errors.New("failed delete failed"),
	}
	job, err := NewPrintJobRetentionJob(PrintJobRetentionJobParams{Logger: logg, PrintRepo: cleaner})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected error")
	}
	// Both cleanups still ran despite the first one failing.
	if len(cleaner.failedCutoffs) != 1 {
		t.Fatalf("failed cleanup ran %d times, want 1", len(cleaner.failedCutoffs))
	}
}
