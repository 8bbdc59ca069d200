package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/balcao-pos/backend/pkg/logger"
)

type intentExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// IntentExpiryJobParams configure the intent expiry sweep.
type IntentExpiryJobParams struct {
	Logger  *logger.Logger
	Intents intentExpirer
}

// NewIntentExpiryJob builds the sweep that moves pending intents past their
// expiry into the expired status. The sweep has no side effects beyond the
// status row: expired intents never held stock, so there is nothing to
// release. Races with a terminal callback resolve at the conditional update.
func NewIntentExpiryJob(params IntentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Intents == nil {
		return nil, fmt.Errorf("intent service required")
	}
	return &intentExpiryJob{
		logg:    params.Logger,
		intents: params.Intents,
		now:     time.Now,
	}, nil
}

type intentExpiryJob struct {
	logg    *logger.Logger
	intents intentExpirer
	now     func() time.Time
}

func (j *intentExpiryJob) Name() string { return "intent-expiry" }

func (j *intentExpiryJob) Run(ctx context.Context) error {
	count, err := j.intents.ExpireDue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire intents: %w", err)
	}
	if count > 0 {
		logCtx := j.logg.WithField(ctx, "count", count)
		j.logg.Info(logCtx, "expired abandoned intents")
	}
	return nil
}
