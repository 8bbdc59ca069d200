package pos

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

type printerStub struct {
	mu      sync.Mutex
	printed []uuid.UUID
}

func (p *printerStub) PrintReceipt(_ context.Context, saleID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printed = append(p.printed, saleID)
	return nil
}

type listenerStub struct {
	mu       sync.Mutex
	outcomes []PaymentOutcome
}

func (l *listenerStub) PaymentResolved(outcome PaymentOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, outcome)
}

func newTestCoordinator(t *testing.T, client Client, printer ReceiptPrinter, listener OutcomeListener) *Coordinator {
	t.Helper()

	coord, err := NewCoordinator(CoordinatorParams{
		Client:     client,
		MerchantID: uuid.New(),
		Poll:       PollerOptions{Interval: time.Millisecond, Deadline: 50 * time.Millisecond},
		Printer:    printer,
		Listener:   listener,
	})
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	return coord
}

func TestCoordinator_approvedClearsCart(t *testing.T) {
	t.Parallel()

	intentID := uuid.New()
	saleID := uuid.New()
	jobID := uuid.New()
	approved := &intents.IntentView{
		ID:          intentID,
		Status:      enums.IntentStatusApproved,
		AmountCents: 700,
		SaleID:      &saleID,
		PrintJobID:  &jobID,
	}
	client := &scriptedClient{
		intent: &intents.IntentView{ID: intentID, Status: enums.IntentStatusPending},
		script: []func() (*intents.IntentView, error){
			pendingResponse(intentID),
			terminalResponse(approved),
		},
	}
	printer := &printerStub{}
	listener := &listenerStub{}
	coord := newTestCoordinator(t, client, printer, listener)

	productID := uuid.New()
	if err := coord.AddLine(productID, 2, 350); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	outcome, err := coord.Submit(context.Background(), enums.PaymentMethodPix)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.State != DisplayApproved {
		t.Fatalf("state = %s, want %s", outcome.State, DisplayApproved)
	}
	if outcome.SaleID == nil || *outcome.SaleID != saleID {
		t.Fatalf("sale id = %v, want %s", outcome.SaleID, saleID)
	}
	if outcome.TotalCents != 700 {
		t.Fatalf("total = %d, want 700", outcome.TotalCents)
	}
	if got := coord.Cart(); len(got) != 0 {
		t.Fatalf("cart not cleared after approval: %+v", got)
	}
	if len(printer.printed) != 1 || printer.printed[0] != saleID {
		t.Fatalf("printer got %v", printer.printed)
	}
	if len(listener.outcomes) != 1 || listener.outcomes[0].State != DisplayApproved {
		t.Fatalf("listener got %+v", listener.outcomes)
	}
	if !reflect.DeepEqual(client.created, []intents.CreateItem{{ProductID: productID, Qty: 2}}) {
		t.Fatalf("submitted items %+v", client.created)
	}
}

func TestCoordinator_declinedPreservesCart(t *testing.T) {
	t.Parallel()

	intentID := uuid.New()
	declined := &intents.IntentView{ID: intentID, Status: enums.IntentStatusDeclined}
	client := &scriptedClient{
		intent: &intents.IntentView{ID: intentID, Status: enums.IntentStatusPending},
		script: []func() (*intents.IntentView, error){terminalResponse(declined)},
	}
	coord := newTestCoordinator(t, client, nil, nil)

	if err := coord.AddLine(uuid.New(), 1, 350); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := coord.AddLine(uuid.New(), 3, 200); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	before := coord.Cart()

	outcome, err := coord.Submit(context.Background(), enums.PaymentMethodCredit)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.State != DisplayDeclined {
		t.Fatalf("state = %s, want %s", outcome.State, DisplayDeclined)
	}
	if after := coord.Cart(); !reflect.DeepEqual(before, after) {
		t.Fatalf("cart changed across a declined payment: %+v vs %+v", before, after)
	}
}

func TestCoordinator_timeoutPreservesCart(t *testing.T) {
	t.Parallel()

	intentID := uuid.New()
	client := &scriptedClient{
		intent: &intents.IntentView{ID: intentID, Status: enums.IntentStatusPending},
		script: []func() (*intents.IntentView, error){pendingResponse(intentID)},
	}
	coord := newTestCoordinator(t, client, nil, nil)

	if err := coord.AddLine(uuid.New(), 2, 350); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	before := coord.Cart()

	outcome, err := coord.Submit(context.Background(), enums.PaymentMethodPix)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.State != DisplayTimeout {
		t.Fatalf("state = %s, want %s", outcome.State, DisplayTimeout)
	}
	if after := coord.Cart(); !reflect.DeepEqual(before, after) {
		t.Fatalf("cart changed across a timeout: %+v vs %+v", before, after)
	}
}

func TestCoordinator_singleFlight(t *testing.T) {
	t.Parallel()

	intentID := uuid.New()
	client := &scriptedClient{
		intent: &intents.IntentView{ID: intentID, Status: enums.IntentStatusPending},
		script: []func() (*intents.IntentView, error){pendingResponse(intentID)},
	}
	coord, err := NewCoordinator(CoordinatorParams{
		Client:     client,
		MerchantID: uuid.New(),
		Poll:       PollerOptions{Interval: 2 * time.Millisecond, Deadline: time.Minute},
	})
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	if err := coord.AddLine(uuid.New(), 1, 100); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = coord.Submit(context.Background(), enums.PaymentMethodPix)
	}()

	time.Sleep(10 * time.Millisecond)

	_, err = coord.Submit(context.Background(), enums.PaymentMethodPix)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for concurrent submit, got %v", err)
	}
	if err := coord.AddLine(uuid.New(), 1, 100); err == nil {
		t.Fatal("cart mutation allowed while payment in flight")
	}

	coord.Abort()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submit did not return after abort")
	}
}

func TestCoordinator_createErrorPreservesCart(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{createErr: errors.New("api unavailable")}
	coord := newTestCoordinator(t, client, nil, nil)

	if err := coord.AddLine(uuid.New(), 1, 100); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	before := coord.Cart()

	if _, err := coord.Submit(context.Background(), enums.PaymentMethodPix); err == nil {
		t.Fatal("expected create error")
	}
	if after := coord.Cart(); !reflect.DeepEqual(before, after) {
		t.Fatalf("cart changed across a failed create: %+v vs %+v", before, after)
	}
	if _, err := coord.Submit(context.Background(), enums.PaymentMethodPix); err == nil {
		t.Fatal("expected create error on retry")
	}
}

func TestCoordinator_emptyCart(t *testing.T) {
	t.Parallel()

	coord := newTestCoordinator(t, &scriptedClient{}, nil, nil)
	_, err := coord.Submit(context.Background(), enums.PaymentMethodPix)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCoordinator_addLineMergesQuantities(t *testing.T) {
	t.Parallel()

	coord := newTestCoordinator(t, &scriptedClient{}, nil, nil)
	productID := uuid.New()
	if err := coord.AddLine(productID, 1, 350); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := coord.AddLine(productID, 2, 350); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	cart := coord.Cart()
	if len(cart) != 1 || cart[0].Qty != 3 {
		t.Fatalf("cart = %+v, want one line with qty 3", cart)
	}
	if got := coord.CartTotalCents(); got != 1050 {
		t.Fatalf("total = %d, want 1050", got)
	}
}
