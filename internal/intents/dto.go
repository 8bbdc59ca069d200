package intents

import (
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/pkg/db/models"
	"github.com/balcao-pos/backend/pkg/enums"
)

// CreateItem is one requested cart line. Quantity only; the unit price is
// always resolved server-side from the catalog.
type CreateItem struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateInput captures a validated intent creation request.
type CreateInput struct {
	Method enums.PaymentMethod
	Items  []CreateItem
}

// TerminalResult is one outcome delivery from the payment terminal.
type TerminalResult struct {
	Outcome enums.TerminalOutcome
	Reason  string
}

// IntentView is the read projection served to pollers. It carries everything
// a client needs to converge and nothing it could misuse.
type IntentView struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.IntentStatus  `json:"status"`
	Method        enums.PaymentMethod `json:"paymentMethod"`
	AmountCents   int                 `json:"amountCents"`
	SaleID        *uuid.UUID          `json:"saleId"`
	PrintJobID    *uuid.UUID          `json:"printJobId"`
	FailureReason *string             `json:"failureReason"`
	CreatedAt     time.Time           `json:"createdAt"`
	ExpiresAt     time.Time           `json:"expiresAt"`
}

// NewIntentView projects a persisted intent onto the polling view.
func NewIntentView(intent *models.PaymentIntent) *IntentView {
	if intent == nil {
		return nil
	}
	return &IntentView{
		ID:            intent.ID,
		Status:        intent.Status,
		Method:        intent.Method,
		AmountCents:   intent.AmountCents,
		SaleID:        intent.SaleID,
		PrintJobID:    intent.PrintJobID,
		FailureReason: intent.FailureReason,
		CreatedAt:     intent.CreatedAt,
		ExpiresAt:     intent.ExpiresAt,
	}
}
