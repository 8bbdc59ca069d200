package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	intentsvc "github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

type fakeIntentService struct {
	createCalls  int
	lastMerchant uuid.UUID
	lastInput    intentsvc.CreateInput
	createView   *intentsvc.IntentView
	createErr    error

	getView *intentsvc.IntentView
	getErr  error

	applied  []intentsvc.TerminalResult
	applyErr error
}

func (f *fakeIntentService) Create(_ context.Context, merchantID uuid.UUID, input intentsvc.CreateInput) (*intentsvc.IntentView, error) {
	f.createCalls++
	f.lastMerchant = merchantID
	f.lastInput = input
	return f.createView, f.createErr
}

func (f *fakeIntentService) Get(_ context.Context, id uuid.UUID) (*intentsvc.IntentView, error) {
	return f.getView, f.getErr
}

func (f *fakeIntentService) ApplyTerminalResult(_ context.Context, _ uuid.UUID, result intentsvc.TerminalResult) error {
	f.applied = append(f.applied, result)
	return f.applyErr
}

func (f *fakeIntentService) ExpireDue(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func pendingView(id uuid.UUID) *intentsvc.IntentView {
	return &intentsvc.IntentView{
		ID:          id,
		Status:      enums.IntentStatusPending,
		Method:      enums.PaymentMethodPix,
		AmountCents: 700,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(15 * time.Minute),
	}
}

func TestCreateIntent_Success(t *testing.T) {
	intentID := uuid.New()
	merchantID := uuid.New()
	productID := uuid.New()
	service := &fakeIntentService{createView: pendingView(intentID)}
	handler := CreateIntent(service, nil)

	body := fmt.Sprintf(`{"merchantId":%q,"paymentMethod":"pix","items":[{"productId":%q,"quantity":2}]}`, merchantID, productID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intents", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.createCalls != 1 {
		t.Fatalf("expected service called once, got %d", service.createCalls)
	}
	if service.lastMerchant != merchantID {
		t.Fatalf("merchant id not forwarded")
	}
	if service.lastInput.Method != enums.PaymentMethodPix {
		t.Fatalf("unexpected method %q", service.lastInput.Method)
	}
	if len(service.lastInput.Items) != 1 || service.lastInput.Items[0].Qty != 2 {
		t.Fatalf("unexpected items %+v", service.lastInput.Items)
	}

	var envelope struct {
		Data intentsvc.IntentView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != intentID {
		t.Fatalf("expected intent id %s, got %s", intentID, envelope.Data.ID)
	}
	if envelope.Data.Status != enums.IntentStatusPending {
		t.Fatalf("expected pending, got %s", envelope.Data.Status)
	}
}

func TestCreateIntent_UnknownMethod(t *testing.T) {
	service := &fakeIntentService{}
	handler := CreateIntent(service, nil)

	body := fmt.Sprintf(`{"merchantId":%q,"paymentMethod":"cheque","items":[{"productId":%q,"quantity":1}]}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intents", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.createCalls != 0 {
		t.Fatalf("service should not be invoked for an unknown method")
	}
}

func TestCreateIntent_EmptyItems(t *testing.T) {
	service := &fakeIntentService{}
	handler := CreateIntent(service, nil)

	body := fmt.Sprintf(`{"merchantId":%q,"paymentMethod":"pix","items":[]}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intents", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.createCalls != 0 {
		t.Fatalf("service should not be invoked for an empty cart")
	}
}

func TestCreateIntent_StockShort(t *testing.T) {
	service := &fakeIntentService{createErr: pkgerrors.New(pkgerrors.CodeStock, "insufficient stock")}
	handler := CreateIntent(service, nil)

	body := fmt.Sprintf(`{"merchantId":%q,"paymentMethod":"pix","items":[{"productId":%q,"quantity":99}]}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intents", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStock) {
		t.Fatalf("expected stock error code, got %q", envelope.Error.Code)
	}
}

func TestGetIntent_Success(t *testing.T) {
	intentID := uuid.New()
	service := &fakeIntentService{getView: pendingView(intentID)}

	r := chi.NewRouter()
	r.Get("/api/v1/intents/{intentId}", GetIntent(service, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/intents/"+intentID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data intentsvc.IntentView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != intentID {
		t.Fatalf("expected intent id %s, got %s", intentID, envelope.Data.ID)
	}
}

func TestGetIntent_NotFound(t *testing.T) {
	service := &fakeIntentService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")}

	r := chi.NewRouter()
	r.Get("/api/v1/intents/{intentId}", GetIntent(service, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/intents/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestGetIntent_MalformedID(t *testing.T) {
	service := &fakeIntentService{}

	r := chi.NewRouter()
	r.Get("/api/v1/intents/{intentId}", GetIntent(service, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/intents/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}
