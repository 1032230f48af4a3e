package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"recyclex/pkg/logger"
)

// PaymentIntentRequest asks the payment provider to prepare a charge.
type PaymentIntentRequest struct {
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"` // minor units
	Currency      string `json:"currency"`
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Description   string `json:"description,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// PaymentIntent is the provider-side record of a charge in flight.
type PaymentIntent struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"` // "pending", "success", "failure"
	RedirectURL string `json:"redirect_url,omitempty"`
	ClientToken string `json:"client_token,omitempty"`
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID string) (*PaymentIntent, error)
	GetPaymentStatus(ctx context.Context, orderID string) (*PaymentIntent, error)
}

type httpPaymentGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHTTPPaymentGateway(baseURL, secretKey string) PaymentGateway {
	return &httpPaymentGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *httpPaymentGateway) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	logger.Info("Creating payment intent for order %s, amount %d %s", req.OrderID, req.Amount, req.Currency)

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	body, status, err := g.do(ctx, http.MethodPost, "/v1/payment-intents", jsonData)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		logger.Error("Payment API error: %s", string(body))
		return nil, fmt.Errorf("payment API error: %s", string(body))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	intent.Status = mapProviderStatus(intent.Status)

	logger.Info("Payment intent created: %s", intent.ID)
	return &intent, nil
}

func (g *httpPaymentGateway) ConfirmPayment(ctx context.Context, intentID string) (*PaymentIntent, error) {
	body, status, err := g.do(ctx, http.MethodPost, "/v1/payment-intents/"+intentID+"/confirm", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		logger.Error("Payment confirm error: %s", string(body))
		return nil, fmt.Errorf("payment confirm error: %s", string(body))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	intent.Status = mapProviderStatus(intent.Status)
	return &intent, nil
}

func (g *httpPaymentGateway) GetPaymentStatus(ctx context.Context, orderID string) (*PaymentIntent, error) {
	body, status, err := g.do(ctx, http.MethodGet, "/v1/orders/"+orderID+"/status", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		logger.Error("Payment status error: %s", string(body))
		return nil, fmt.Errorf("payment status error: %s", string(body))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	intent.Status = mapProviderStatus(intent.Status)
	return &intent, nil
}

func (g *httpPaymentGateway) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %v", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %v", err)
	}

	return respBody, resp.StatusCode, nil
}

// mapProviderStatus normalizes the provider's vocabulary to ours.
func mapProviderStatus(providerStatus string) string {
	switch providerStatus {
	case "succeeded", "settlement", "capture", "success":
		return "success"
	case "canceled", "cancel", "deny", "expire", "failed", "failure":
		return "failure"
	default:
		return "pending"
	}
}
