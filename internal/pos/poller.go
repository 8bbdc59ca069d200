package pos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/pkg/logger"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollDeadline = 120 * time.Second
)

// PollState says how a polling session ended.
type PollState string

const (
	// PollResolved means a terminal intent status was observed.
	PollResolved PollState = "resolved"
	// PollTimedOut means the deadline passed with the intent still pending.
	// The intent itself is untouched and may resolve later on the server.
	PollTimedOut PollState = "timed_out"
	// PollStopped means the operator stopped watching. Only the loop is
	// canceled, never the intent or the terminal.
	PollStopped PollState = "stopped"
)

// PollResult carries the last observed view and how the session ended.
type PollResult struct {
	State PollState
	View  *intents.IntentView
}

// PollerOptions tunes one polling session.
type PollerOptions struct {
	Interval time.Duration
	Deadline time.Duration
	Logger   *logger.Logger
}

// Poller reconciles the client's picture of one intent with the server by
// querying on a fixed cadence until a terminal status, the deadline, or a
// stop. It is purely observational and makes no decision itself. One poller
// serves exactly one intent.
type Poller struct {
	client   StatusClient
	interval time.Duration
	deadline time.Duration
	logg     *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPoller builds a poller for a single outstanding intent.
func NewPoller(client StatusClient, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = defaultPollInterval
	}
	if opts.Deadline <= 0 {
		opts.Deadline = defaultPollDeadline
	}
	return &Poller{
		client:   client,
		interval: opts.Interval,
		deadline: opts.Deadline,
		logg:     opts.Logger,
	}
}

// Run polls until resolution, timeout, or stop, and blocks the calling
// goroutine. The deadline clock starts at the first query. Failed queries are
// transient: the loop keeps its cadence and only the deadline bounds retries.
func (p *Poller) Run(ctx context.Context, intentID uuid.UUID) *PollResult {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	started := time.Now()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastView *intents.IntentView
	for {
		view, err := p.client.GetIntent(ctx, intentID)
		if err != nil {
			if ctx.Err() != nil {
				return &PollResult{State: PollStopped, View: lastView}
			}
			if p.logg != nil {
				p.logg.Warn(p.logg.WithIntentID(ctx, intentID.String()), "intent poll failed, retrying")
			}
		} else {
			lastView = view
			if view.Status.IsTerminal() {
				return &PollResult{State: PollResolved, View: view}
			}
		}

		if time.Since(started) >= p.deadline {
			return &PollResult{State: PollTimedOut, View: lastView}
		}

		select {
		case <-ctx.Done():
			return &PollResult{State: PollStopped, View: lastView}
		case <-ticker.C:
		}
	}
}

// Stop cancels the polling loop and nothing else. Terminal processing on the
// server cannot be aborted from here.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
