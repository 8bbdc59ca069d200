package terminal

import (
	"context"

	"github.com/balcao-pos/backend/pkg/db/models"
	"github.com/balcao-pos/backend/pkg/logger"
)

// Dispatcher hands a freshly created intent to the payment terminal. The
// wire protocol to the physical device is owned by the vendor integration;
// from the issuer's perspective the handoff is fire-and-forget and the
// terminal eventually reports an outcome through the results webhook,
// at-least-once.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent *models.PaymentIntent) error
}

// LogDispatcher records the handoff and nothing else. It stands in wherever
// the real vendor integration is not wired (dev, tests, merchants whose
// terminal pushes results on its own).
type LogDispatcher struct {
	logg *logger.Logger
}

// NewLogDispatcher builds the logging dispatcher.
func NewLogDispatcher(logg *logger.Logger) *LogDispatcher {
	return &LogDispatcher{logg: logg}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, intent *models.PaymentIntent) error {
	if d.logg == nil || intent == nil {
		return nil
	}
	ctx = d.logg.WithFields(ctx, map[string]any{
		"intent_id":    intent.ID,
		"method":       intent.Method,
		"amount_cents": intent.AmountCents,
	})
	d.logg.Info(ctx, "intent dispatched to terminal")
	return nil
}
