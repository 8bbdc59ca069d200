package pos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/logger"
)

// CartLine is one line of the pre-confirmation cart. UnitPriceCents is the
// display price; the server recomputes the charged amount from the catalog.
type CartLine struct {
	ProductID      uuid.UUID
	Qty            int
	UnitPriceCents int
}

// ReceiptPrinter is an optional capability: when present, approved payments
// get their receipt printed from the counter.
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, saleID uuid.UUID) error
}

// OutcomeListener is an optional capability notified when a payment resolves,
// times out, or is aborted.
type OutcomeListener interface {
	PaymentResolved(outcome PaymentOutcome)
}

// PaymentOutcome is what one submission ended in.
type PaymentOutcome struct {
	State      DisplayState
	View       *intents.IntentView
	SaleID     *uuid.UUID
	PrintJobID *uuid.UUID
	TotalCents int
}

// CoordinatorParams wires a coordinator.
type CoordinatorParams struct {
	Client     Client
	MerchantID uuid.UUID
	Poll       PollerOptions
	Printer    ReceiptPrinter  // optional
	Listener   OutcomeListener // optional
	Logger     *logger.Logger
}

// Coordinator owns the cart and the submission protocol: it snapshots the
// cart at submission, enforces single-flight so repeated taps cannot double
// charge, clears the cart only on approval, and preserves it verbatim on any
// other outcome so the operator can retry without re-entry.
type Coordinator struct {
	client     Client
	merchantID uuid.UUID
	poll       PollerOptions
	printer    ReceiptPrinter
	listener   OutcomeListener
	logg       *logger.Logger

	flight sync.Mutex // held for the whole of one submission

	mu       sync.Mutex
	cart     []CartLine
	current  *Poller
	inFlight bool
}

// NewCoordinator builds a coordinator for one counter.
func NewCoordinator(params CoordinatorParams) (*Coordinator, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client required")
	}
	if params.MerchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	return &Coordinator{
		client:     params.Client,
		merchantID: params.MerchantID,
		poll:       params.Poll,
		printer:    params.Printer,
		listener:   params.Listener,
		logg:       params.Logger,
	}, nil
}

// AddLine appends a line to the cart, merging quantity into an existing line
// for the same product. Not allowed while a payment is outstanding: what is
// on screen must match what is being charged.
func (c *Coordinator) AddLine(productID uuid.UUID, qty, unitPriceCents int) error {
	if productID == uuid.Nil || qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart lines need a product id and a positive quantity")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment in flight")
	}
	for i := range c.cart {
		if c.cart[i].ProductID == productID {
			c.cart[i].Qty += qty
			return nil
		}
	}
	c.cart = append(c.cart, CartLine{ProductID: productID, Qty: qty, UnitPriceCents: unitPriceCents})
	return nil
}

// RemoveLine drops the line for the given product, if present.
func (c *Coordinator) RemoveLine(productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment in flight")
	}
	for i := range c.cart {
		if c.cart[i].ProductID == productID {
			c.cart = append(c.cart[:i], c.cart[i+1:]...)
			return nil
		}
	}
	return nil
}

// Cart returns a copy of the current cart lines in order.
func (c *Coordinator) Cart() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartLine, len(c.cart))
	copy(out, c.cart)
	return out
}

// CartTotalCents returns the display total of the current cart.
func (c *Coordinator) CartTotalCents() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, line := range c.cart {
		total += line.UnitPriceCents * line.Qty
	}
	return total
}

// ClearCart empties the cart, refusing while a payment is outstanding.
func (c *Coordinator) ClearCart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment in flight")
	}
	c.cart = nil
	return nil
}

// Submit snapshots the cart, creates an intent for it, and polls until the
// payment resolves, times out, or is aborted. Only an approved outcome clears
// the cart. At most one submission may be outstanding at a time.
func (c *Coordinator) Submit(ctx context.Context, method enums.PaymentMethod) (*PaymentOutcome, error) {
	if !c.flight.TryLock() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already in flight")
	}
	defer c.flight.Unlock()

	c.mu.Lock()
	if len(c.cart) == 0 {
		c.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	snapshot := make([]CartLine, len(c.cart))
	copy(snapshot, c.cart)
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.current = nil
		c.mu.Unlock()
	}()

	items := make([]intents.CreateItem, 0, len(snapshot))
	for _, line := range snapshot {
		items = append(items, intents.CreateItem{ProductID: line.ProductID, Qty: line.Qty})
	}

	view, err := c.client.CreateIntent(ctx, c.merchantID, method.String(), items)
	if err != nil {
		return nil, err
	}

	poller := NewPoller(c.client, c.poll)
	c.mu.Lock()
	c.current = poller
	c.mu.Unlock()

	started := time.Now()
	res := poller.Run(ctx, view.ID)

	outcome := c.resolve(ctx, res, time.Since(started))
	if c.listener != nil {
		c.listener.PaymentResolved(*outcome)
	}
	return outcome, nil
}

func (c *Coordinator) resolve(ctx context.Context, res *PollResult, elapsed time.Duration) *PaymentOutcome {
	deadline := c.poll.Deadline
	if deadline <= 0 {
		deadline = defaultPollDeadline
	}
	state := Present(res.View, elapsed, deadline)
	if res.State == PollTimedOut && state == DisplayAwaiting {
		state = DisplayTimeout
	}

	outcome := &PaymentOutcome{State: state, View: res.View}
	if state != DisplayApproved {
		// Cart stays exactly as submitted so the operator can retry.
		return outcome
	}

	outcome.SaleID = res.View.SaleID
	outcome.PrintJobID = res.View.PrintJobID
	outcome.TotalCents = res.View.AmountCents

	c.mu.Lock()
	c.cart = nil
	c.mu.Unlock()

	if c.printer != nil && outcome.SaleID != nil {
		if err := c.printer.PrintReceipt(ctx, *outcome.SaleID); err != nil && c.logg != nil {
			c.logg.Warn(ctx, "receipt print failed")
		}
	}
	return outcome
}

// Abort stops watching the outstanding payment. The server-side intent and
// the terminal keep going; only the local loop ends.
func (c *Coordinator) Abort() {
	c.mu.Lock()
	poller := c.current
	c.mu.Unlock()
	if poller != nil {
		poller.Stop()
	}
}
