package intents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcao-pos/backend/internal/catalog"
	"github.com/balcao-pos/backend/internal/printing"
	"github.com/balcao-pos/backend/internal/sales"
	"github.com/balcao-pos/backend/internal/terminal"
	"github.com/balcao-pos/backend/pkg/db/models"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the intent issuer: it owns creation, the read projection and
// every state transition, including the atomic finalize on approval.
type Service interface {
	Create(ctx context.Context, merchantID uuid.UUID, input CreateInput) (*IntentView, error)
	Get(ctx context.Context, id uuid.UUID) (*IntentView, error)
	ApplyTerminalResult(ctx context.Context, id uuid.UUID, result TerminalResult) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// ServiceParams wires the issuer's collaborators.
type ServiceParams struct {
	Tx          txRunner
	Repo        Repository
	CatalogRepo catalog.Repository
	SalesRepo   sales.Repository
	PrintRepo   printing.Repository
	Dispatcher  terminal.Dispatcher
	Logger      *logger.Logger

	IntentTTL          time.Duration
	AllowNegativeStock bool
}

type service struct {
	tx          txRunner
	repo        Repository
	catalogRepo catalog.Repository
	salesRepo   sales.Repository
	printRepo   printing.Repository
	dispatcher  terminal.Dispatcher
	logg        *logger.Logger

	intentTTL     time.Duration
	allowNegative bool
}

const defaultIntentTTL = 15 * time.Minute

// NewService builds the intent issuer.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("intent repository required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.SalesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.PrintRepo == nil {
		return nil, fmt.Errorf("print job repository required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("terminal dispatcher required")
	}
	if params.IntentTTL <= 0 {
		params.IntentTTL = defaultIntentTTL
	}
	return &service{
		tx:            params.Tx,
		repo:          params.Repo,
		catalogRepo:   params.CatalogRepo,
		salesRepo:     params.SalesRepo,
		printRepo:     params.PrintRepo,
		dispatcher:    params.Dispatcher,
		logg:          params.Logger,
		intentTTL:     params.IntentTTL,
		allowNegative: params.AllowNegativeStock,
	}, nil
}

// Create validates the request against the live catalog, persists the intent
// with its immutable item snapshot, and hands it to the terminal. The amount
// is always recomputed from catalog prices; client-supplied prices are never
// trusted.
func (s *service) Create(ctx context.Context, merchantID uuid.UUID, input CreateInput) (*IntentView, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil || item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "items need a product id and a positive quantity")
		}
	}

	merchant, err := s.catalogRepo.FindMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.MethodEnabled(input.Method) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method disabled for merchant").
			WithDetails(map[string]any{"paymentMethod": input.Method})
	}

	amountCents := 0
	snapshot := make([]models.PaymentIntentItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, err := s.catalogRepo.FindProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.MerchantID != merchantID || !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": item.ProductID})
		}
		if !s.allowNegative && product.StockQty < item.Qty {
			return nil, pkgerrors.New(pkgerrors.CodeStock, "insufficient stock").
				WithDetails(map[string]any{"productId": item.ProductID, "qty": item.Qty})
		}
		unitPrice := product.PriceCents()
		amountCents += unitPrice * item.Qty
		snapshot = append(snapshot, models.PaymentIntentItem{
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceCents: unitPrice,
		})
	}

	intent := &models.PaymentIntent{
		MerchantID:  merchantID,
		Method:      input.Method,
		Status:      enums.IntentStatusPending,
		AmountCents: amountCents,
		Items:       snapshot,
		ExpiresAt:   time.Now().UTC().Add(s.intentTTL),
	}
	if err := s.repo.Create(ctx, intent); err != nil {
		return nil, err
	}

	// The terminal handoff is fire-and-forget: the intent exists and is
	// pollable whether or not the dispatch succeeded.
	if err := s.dispatcher.Dispatch(ctx, intent); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithIntentID(ctx, intent.ID.String()), "terminal dispatch failed")
	}

	return NewIntentView(intent), nil
}

// Get is the polling read: a pure projection with no side effects.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*IntentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	intent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewIntentView(intent), nil
}

// ApplyTerminalResult handles one at-least-once outcome delivery. Deliveries
// for intents that already left pending are acknowledged without effect; the
// conditional transition inside the transaction is what makes that safe under
// races with duplicate deliveries and the expiry sweep.
func (s *service) ApplyTerminalResult(ctx context.Context, id uuid.UUID, result TerminalResult) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	if !result.Outcome.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown terminal outcome")
	}

	intent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if intent.Status.IsTerminal() {
		return nil
	}

	if result.Outcome != enums.TerminalOutcomeApproved {
		reason := result.Reason
		if reason == "" {
			reason = result.Outcome.String()
		}
		if _, err := s.repo.CompareAndTransition(ctx, id, result.Outcome.IntentStatus(), &reason); err != nil {
			return err
		}
		return nil
	}

	if err := s.finalize(ctx, intent); err != nil {
		if s.logg != nil {
			lctx := s.logg.WithIntentID(ctx, id.String())
			s.logg.Error(lctx, "finalize failed, intent remains pending", err)
		}
		if pkgerrors.IsRetryable(err) {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize failed")
	}
	return nil
}

// finalize converts an approved outcome into a sale in one transaction: CAS
// to approved, stock decrement per snapshot line, sale + line items, sale
// binding, print job. Any failure rolls everything back and leaves the
// intent pending so the approval can be redelivered.
func (s *service) finalize(ctx context.Context, intent *models.PaymentIntent) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intentRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)
		salesRepo := s.salesRepo.WithTx(tx)
		printRepo := s.printRepo.WithTx(tx)

		transitioned, err := intentRepo.CompareAndTransition(ctx, intent.ID, enums.IntentStatusApproved, nil)
		if err != nil {
			return err
		}
		if !transitioned {
			// Lost the race against another delivery or the sweep.
			return nil
		}

		saleItems := make([]models.SaleItem, 0, len(intent.Items))
		for _, item := range intent.Items {
			if err := catalogRepo.DecrementStock(ctx, item.ProductID, item.Qty, s.allowNegative); err != nil {
				return err
			}
			saleItems = append(saleItems, models.SaleItem{
				ProductID:      item.ProductID,
				Qty:            item.Qty,
				UnitPriceCents: item.UnitPriceCents,
				TotalCents:     item.UnitPriceCents * item.Qty,
			})
		}

		sale := &models.Sale{
			MerchantID: intent.MerchantID,
			IntentID:   intent.ID,
			TotalCents: intent.AmountCents,
			Items:      saleItems,
		}
		if err := salesRepo.Create(ctx, sale); err != nil {
			return err
		}

		job, err := printRepo.Enqueue(ctx, sale.ID)
		if err != nil {
			return err
		}

		return intentRepo.BindSale(ctx, intent.ID, sale.ID, job.ID)
	})
}

// ExpireDue moves every pending intent past its deadline into expired.
func (s *service) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireDue(ctx, now)
}
