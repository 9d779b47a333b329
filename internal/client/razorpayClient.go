package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/config"
	"time"

	"github.com/sony/gobreaker/v2"
)

type GatewayClient interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error)
}

// GatewayOrder is the gateway's view of a created order. Never persisted
// locally; the gateway is the source of truth.
type GatewayOrder struct {
	OrderID  string
	Amount   int64 // minor units
	Currency string
	Receipt  string
}

type razorpayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	keyID      string
	keySecret  string
	breaker    *gobreaker.CircuitBreaker[*GatewayOrder]
}

type razorpayOrderResult struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorResult struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewRazorpayClient(rzpCfg *config.Razorpay) GatewayClient {
	settings := gobreaker.Settings{
		Name: "razorpay-orders",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 30 * time.Second,
	}

	return &razorpayClientImpl{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseApiURL: rzpCfg.BaseApiURL,
		keyID:      rzpCfg.KeyID,
		keySecret:  rzpCfg.KeySecret,
		breaker:    gobreaker.NewCircuitBreaker[*GatewayOrder](settings),
	}
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	order, err := c.breaker.Execute(func() (*GatewayOrder, error) {
		return c.createOrder(ctx, amountMinor, currency, receipt)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, &apperr.GatewayError{Msg: "gateway circuit open", Err: err}
	}
	return order, err
}

func (c *razorpayClientImpl) createOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperr.GatewayError{Msg: "create order request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		msg := gatewayErrorMessage(b)
		return nil, &apperr.GatewayError{
			Msg: fmt.Sprintf("gateway error %d: %s", resp.StatusCode, msg),
		}
	}

	var result razorpayOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &apperr.GatewayError{Msg: "decode gateway response", Err: err}
	}

	return &GatewayOrder{
		OrderID:  result.ID,
		Amount:   result.Amount,
		Currency: result.Currency,
		Receipt:  result.Receipt,
	}, nil
}

func gatewayErrorMessage(body []byte) string {
	var res razorpayErrorResult
	if err := json.Unmarshal(body, &res); err == nil && res.Error.Description != "" {
		return res.Error.Description
	}
	return string(body)
}
