package service

import (
	"context"
	"fmt"
	"math"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/client"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gateway receipt strings must fit 40 characters.
const maxReceiptLen = 40

type OrderService interface {
	// CreateOrder validates the major-unit amount, converts to minor units,
	// and asks the gateway to create an order. No local persistence.
	CreateOrder(ctx context.Context, amountMajor float64, currency, receiptSeed string) (*client.GatewayOrder, error)
}

type orderServiceImpl struct {
	gateway client.GatewayClient
}

func NewOrderService(gateway client.GatewayClient) OrderService {
	return &orderServiceImpl{
		gateway: gateway,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, amountMajor float64, currency, receiptSeed string) (*client.GatewayOrder, error) {
	if math.IsNaN(amountMajor) || math.IsInf(amountMajor, 0) {
		return nil, apperr.NewValidation("amount", "must be a finite number")
	}
	if amountMajor <= 0 {
		return nil, apperr.NewValidation("amount", "must be positive")
	}
	if currency == "" {
		currency = "INR"
	}

	amountMinor := int64(math.Round(amountMajor * 100))
	receipt := buildReceipt(receiptSeed)

	order, err := s.gateway.CreateOrder(ctx, amountMinor, currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}

	return order, nil
}

// buildReceipt derives a receipt unique per attempt. Collisions are a
// liveness concern only, so a timestamp seed plus a short uuid suffices.
func buildReceipt(seed string) string {
	if seed == "" {
		seed = fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	receipt := fmt.Sprintf("rcpt_%s_%s", seed, suffix)
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}
	return receipt
}
