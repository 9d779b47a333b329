package service

import (
	"context"
	"log/slog"
	"math"
	"prepdeck-server/internal/model"
	"prepdeck-server/internal/repository"
)

// Compiled-in fallback prices in major units (INR), used when no price
// document exists for the scope.
const (
	DefaultModulePrice = 99.0
	DefaultGlobalPrice = 499.0
)

// GlobalPriceKey is the reserved pricing-document key for the global pass.
const GlobalPriceKey = "__global__"

type PricingService interface {
	// ResolvePrice returns the effective major-unit price for the scope.
	// Missing, malformed, and unreadable price records all fall back to the
	// scope default; a store failure must not block checkout.
	ResolvePrice(ctx context.Context, scope, key string) float64
}

type pricingServiceImpl struct {
	priceRepo repository.PriceRepository
	logger    *slog.Logger
}

func NewPricingService(priceRepo repository.PriceRepository, logger *slog.Logger) PricingService {
	return &pricingServiceImpl{
		priceRepo: priceRepo,
		logger:    logger,
	}
}

func (s *pricingServiceImpl) ResolvePrice(ctx context.Context, scope, key string) float64 {
	lookupKey := key
	if scope == model.ScopeGlobal {
		lookupKey = GlobalPriceKey
	}

	price, err := s.priceRepo.Get(ctx, lookupKey)
	if err != nil {
		if err != repository.ErrPriceNotFound {
			s.logger.Warn("price lookup failed, using default",
				"scope", scope, "key", lookupKey, "error", err)
		}
		return defaultPrice(scope)
	}

	if price.Amount <= 0 || math.IsNaN(price.Amount) || math.IsInf(price.Amount, 0) {
		return defaultPrice(scope)
	}

	return price.Amount
}

func defaultPrice(scope string) float64 {
	if scope == model.ScopeGlobal {
		return DefaultGlobalPrice
	}
	return DefaultModulePrice
}
