package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/internal/intents"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/types"
)

// StatusClient is the narrow read surface the poller needs.
type StatusClient interface {
	GetIntent(ctx context.Context, id uuid.UUID) (*intents.IntentView, error)
}

// Client is the full API surface the coordinator uses.
type Client interface {
	StatusClient
	CreateIntent(ctx context.Context, merchantID uuid.UUID, method string, items []intents.CreateItem) (*intents.IntentView, error)
}

// HTTPClient talks to the API over its JSON envelope.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds an API client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type createIntentRequest struct {
	MerchantID    uuid.UUID        `json:"merchantId"`
	PaymentMethod string           `json:"paymentMethod"`
	Items         []createItemBody `json:"items"`
}

type createItemBody struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

func (c *HTTPClient) CreateIntent(ctx context.Context, merchantID uuid.UUID, method string, items []intents.CreateItem) (*intents.IntentView, error) {
	body := createIntentRequest{
		MerchantID:    merchantID,
		PaymentMethod: method,
		Items:         make([]createItemBody, 0, len(items)),
	}
	for _, item := range items {
		body.Items = append(body.Items, createItemBody{ProductID: item.ProductID, Quantity: item.Qty})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode intent request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/intents", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build intent request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	return c.doIntent(req)
}

func (c *HTTPClient) GetIntent(ctx context.Context, id uuid.UUID) (*intents.IntentView, error) {
	url := fmt.Sprintf("%s/api/v1/intents/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build intent request")
	}
	return c.doIntent(req)
}

func (c *HTTPClient) doIntent(req *http.Request) (*intents.IntentView, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call intents api")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read intents response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	var envelope struct {
		Data intents.IntentView `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode intents response")
	}
	return &envelope.Data, nil
}

func decodeAPIError(status int, raw []byte) error {
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	}
	if status == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "intent not found")
	}
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("intents api returned %d", status))
}
