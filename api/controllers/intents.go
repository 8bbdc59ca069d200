package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/api/responses"
	"github.com/balcao-pos/backend/api/validators"
	intentsvc "github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/logger"
)

type createIntentRequest struct {
	MerchantID    uuid.UUID          `json:"merchantId" validate:"required"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	Items         []createIntentItem `json:"items" validate:"required,min=1,dive"`
}

type createIntentItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

func (req createIntentRequest) toInput() (intentsvc.CreateInput, error) {
	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return intentsvc.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"paymentMethod": req.PaymentMethod})
	}
	input := intentsvc.CreateInput{Method: method}
	for _, item := range req.Items {
		input.Items = append(input.Items, intentsvc.CreateItem{ProductID: item.ProductID, Qty: item.Quantity})
	}
	return input, nil
}

// CreateIntent issues a new payment intent and hands it to the terminal.
func CreateIntent(svc intentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "intent service unavailable"))
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), payload.MerchantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// GetIntent serves the polling projection. Read-only, safe at any rate.
func GetIntent(svc intentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "intent service unavailable"))
			return
		}

		id, err := validators.UUIDParam(r, "intentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
