package service

import (
	"context"
	"fmt"
	"log/slog"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/model"
	"prepdeck-server/internal/repository"
)

type EntitlementService interface {
	// Grant applies a verified payment's entitlement. Monotonic and
	// idempotent: re-applying an existing grant is a harmless no-op, logged
	// as a replay anomaly against the order id.
	Grant(ctx context.Context, userID, scope, moduleKey, orderID string) error
	// HasAccess is the access-decision read path used by content rendering.
	HasAccess(ctx context.Context, userID, tier, moduleKey string) (bool, error)
	GetEntitlements(ctx context.Context, userID string) (*model.UserEntitlement, []*model.ModulePurchase, error)
}

type entitlementServiceImpl struct {
	entitlementRepo repository.EntitlementRepository
	logger          *slog.Logger
}

func NewEntitlementService(entitlementRepo repository.EntitlementRepository, logger *slog.Logger) EntitlementService {
	return &entitlementServiceImpl{
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

func (s *entitlementServiceImpl) Grant(ctx context.Context, userID, scope, moduleKey, orderID string) error {
	var applied bool
	var err error

	switch scope {
	case model.ScopeModule:
		applied, err = s.entitlementRepo.GrantModule(ctx, userID, moduleKey, orderID)
	case model.ScopeGlobal:
		applied, err = s.entitlementRepo.GrantGlobal(ctx, userID)
	default:
		return apperr.NewValidation("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	if err != nil {
		return &apperr.EntitlementWriteError{Err: err}
	}

	if !applied {
		// Grants are not keyed by order id, so a replayed valid callback
		// lands here as a no-op. Logged so reconciliation can spot replays.
		s.logger.Warn("repeated entitlement grant",
			"user_id", userID, "scope", scope, "module_key", moduleKey, "order_id", orderID)
	}

	return nil
}

func (s *entitlementServiceImpl) HasAccess(ctx context.Context, userID, tier, moduleKey string) (bool, error) {
	if tier == model.TierFree {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}

	ent, err := s.entitlementRepo.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get entitlement: %w", err)
	}
	if ent.GlobalAccess {
		return true, nil
	}

	return s.entitlementRepo.HasModule(ctx, userID, moduleKey)
}

func (s *entitlementServiceImpl) GetEntitlements(ctx context.Context, userID string) (*model.UserEntitlement, []*model.ModulePurchase, error) {
	ent, err := s.entitlementRepo.Get(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get entitlement: %w", err)
	}

	purchases, err := s.entitlementRepo.ListModules(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list module purchases: %w", err)
	}

	return ent, purchases, nil
}
