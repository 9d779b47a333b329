package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/client"
	"prepdeck-server/internal/model"
	"prepdeck-server/internal/modkey"
	"prepdeck-server/internal/repository"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Checkout attempt states.
const (
	StateAuthRequired        = "AUTH_REQUIRED"
	StateIdle                = "IDLE"
	StatePriceResolved       = "PRICE_RESOLVED"
	StateOrderCreated        = "ORDER_CREATED"
	StateGatewayUIOpen       = "GATEWAY_UI_OPEN"
	StateCallbackReceived    = "CALLBACK_RECEIVED"
	StateVerifying           = "VERIFYING"
	StateEntitled            = "ENTITLED"
	StateVerificationFailed  = "VERIFICATION_FAILED"
	StateOrderCreationFailed = "ORDER_CREATION_FAILED"
	StateGatewayAbandoned    = "GATEWAY_ABANDONED"
)

var (
	ErrAuthRequired    = errors.New("authentication required")
	ErrAttemptNotFound = errors.New("checkout attempt not found")
)

// CheckoutAttempt is the per-attempt state. Held in memory only: losing an
// in-flight attempt on restart is accepted, the user restarts checkout.
type CheckoutAttempt struct {
	ID        string
	UserID    string
	Scope     string
	ModuleKey string
	State     string
	Order     *client.GatewayOrder
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CheckoutService interface {
	// Begin runs Idle through OrderCreated and parks the attempt at
	// GatewayUIOpen. Order-creation failure ends the attempt at
	// OrderCreationFailed; retrying means a fresh attempt.
	Begin(ctx context.Context, userID, scope, moduleTitle string) (*CheckoutAttempt, error)
	// HandleCallback drives CallbackReceived -> Verifying -> terminal.
	// Verification always precedes entitlement.
	HandleCallback(ctx context.Context, userID, attemptID, orderID, paymentID, signature string) (*CheckoutAttempt, error)
	// Abandon records the buyer closing the hosted UI without paying.
	Abandon(ctx context.Context, userID, attemptID string) (*CheckoutAttempt, error)
	Get(ctx context.Context, userID, attemptID string) (*CheckoutAttempt, error)
}

type checkoutServiceImpl struct {
	pricingService     PricingService
	orderService       OrderService
	verifier           SignatureVerifier
	entitlementService EntitlementService
	reconciliationRepo repository.ReconciliationRepository
	logger             *slog.Logger

	mu       sync.Mutex
	attempts map[string]*CheckoutAttempt

	orderRetries int
	grantRetries int
	backoffBase  time.Duration
	backoffMax   time.Duration
}

func NewCheckoutService(
	pricingService PricingService,
	orderService OrderService,
	verifier SignatureVerifier,
	entitlementService EntitlementService,
	reconciliationRepo repository.ReconciliationRepository,
	logger *slog.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		pricingService:     pricingService,
		orderService:       orderService,
		verifier:           verifier,
		entitlementService: entitlementService,
		reconciliationRepo: reconciliationRepo,
		logger:             logger,
		attempts:           make(map[string]*CheckoutAttempt),
		orderRetries:       3,
		grantRetries:       3,
		backoffBase:        200 * time.Millisecond,
		backoffMax:         2 * time.Second,
	}
}

func (s *checkoutServiceImpl) Begin(ctx context.Context, userID, scope, moduleTitle string) (*CheckoutAttempt, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if scope != model.ScopeModule && scope != model.ScopeGlobal {
		return nil, apperr.NewValidation("scope", "must be module or global")
	}

	var key string
	if scope == model.ScopeModule {
		if moduleTitle == "" {
			return nil, apperr.NewValidation("moduleTitle", "required for module scope")
		}
		key = modkey.Normalize(moduleTitle)
	}

	attempt := &CheckoutAttempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scope:     scope,
		ModuleKey: key,
		State:     StateIdle,
		CreatedAt: time.Now(),
	}
	s.store(attempt)

	amount := s.pricingService.ResolvePrice(ctx, scope, key)
	s.transition(attempt, StatePriceResolved)

	order, err := s.createOrderWithRetry(ctx, amount)
	if err != nil {
		s.transition(attempt, StateOrderCreationFailed)
		return attempt, fmt.Errorf("create order: %w", err)
	}

	attempt.Order = order
	s.transition(attempt, StateOrderCreated)

	// Hand-off to the hosted UI; the attempt now waits on the gateway
	// callback or user abandonment, with no client-side timeout.
	s.transition(attempt, StateGatewayUIOpen)

	return attempt, nil
}

func (s *checkoutServiceImpl) HandleCallback(ctx context.Context, userID, attemptID, orderID, paymentID, signature string) (*CheckoutAttempt, error) {
	attempt, err := s.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	// Request validation comes before any cryptographic verification.
	if orderID == "" {
		return attempt, apperr.NewValidation("orderId", "missing")
	}
	if paymentID == "" {
		return attempt, apperr.NewValidation("paymentId", "missing")
	}
	if signature == "" {
		return attempt, apperr.NewValidation("signature", "missing")
	}
	if attempt.Order == nil || attempt.Order.OrderID != orderID {
		return attempt, apperr.NewValidation("orderId", "does not match this attempt")
	}

	switch attempt.State {
	case StateGatewayUIOpen:
		s.transition(attempt, StateCallbackReceived)
	case StateVerifying:
		// Re-delivery after a failed entitlement write; grants are
		// idempotent so re-running is safe.
	default:
		return attempt, apperr.NewValidation("state", fmt.Sprintf("callback not expected in state %s", attempt.State))
	}

	s.transition(attempt, StateVerifying)

	if !s.verifier.Verify(orderID, paymentID, signature) {
		s.transition(attempt, StateVerificationFailed)
		s.logger.Warn("payment verification failed",
			"attempt_id", attempt.ID, "user_id", userID, "order_id", orderID)
		return attempt, apperr.ErrSignatureInvalid
	}

	if err := s.grantWithRetry(ctx, attempt, paymentID); err != nil {
		// Verified payment with no entitlement applied: durably logged
		// above for manual reconciliation; the callback may be replayed.
		return attempt, err
	}

	s.transition(attempt, StateEntitled)
	s.logger.Info("entitlement granted",
		"attempt_id", attempt.ID, "user_id", userID,
		"scope", attempt.Scope, "module_key", attempt.ModuleKey, "order_id", orderID)

	return attempt, nil
}

func (s *checkoutServiceImpl) Abandon(ctx context.Context, userID, attemptID string) (*CheckoutAttempt, error) {
	attempt, err := s.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.State != StateGatewayUIOpen {
		return attempt, apperr.NewValidation("state", fmt.Sprintf("cannot abandon in state %s", attempt.State))
	}

	s.transition(attempt, StateGatewayAbandoned)
	return attempt, nil
}

func (s *checkoutServiceImpl) Get(ctx context.Context, userID, attemptID string) (*CheckoutAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *checkoutServiceImpl) createOrderWithRetry(ctx context.Context, amountMajor float64) (*client.GatewayOrder, error) {
	var lastErr error
	for i := 0; i < s.orderRetries; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, s.backoff(i)); err != nil {
				return nil, err
			}
		}

		order, err := s.orderService.CreateOrder(ctx, amountMajor, "INR", "")
		if err == nil {
			return order, nil
		}
		lastErr = err

		// Only infrastructure faults are retried.
		if !apperr.IsGateway(err) {
			return nil, err
		}
		s.logger.Warn("order creation failed, retrying", "try", i+1, "error", err)
	}
	return nil, lastErr
}

func (s *checkoutServiceImpl) grantWithRetry(ctx context.Context, attempt *CheckoutAttempt, paymentID string) error {
	var lastErr error
	for i := 0; i < s.grantRetries; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, s.backoff(i)); err != nil {
				break
			}
		}

		err := s.entitlementService.Grant(ctx, attempt.UserID, attempt.Scope, attempt.ModuleKey, attempt.Order.OrderID)
		if err == nil {
			return nil
		}
		lastErr = err

		if !apperr.IsEntitlementWrite(err) {
			return err
		}
		s.logger.Warn("entitlement write failed, retrying",
			"try", i+1, "attempt_id", attempt.ID, "error", err)
	}

	// The alternative to durable logging here is a paid-but-unentitled user.
	entry := &model.ReconciliationEntry{
		UserID:    attempt.UserID,
		Scope:     attempt.Scope,
		ModuleKey: attempt.ModuleKey,
		OrderID:   attempt.Order.OrderID,
		PaymentID: paymentID,
		Reason:    "entitlement write exhausted retries after verified payment",
	}
	if recErr := s.reconciliationRepo.Record(ctx, entry); recErr != nil {
		s.logger.Error("failed to record reconciliation entry",
			"attempt_id", attempt.ID, "user_id", attempt.UserID,
			"order_id", attempt.Order.OrderID, "error", recErr)
	}
	s.logger.Error("verified payment left unentitled, needs reconciliation",
		"attempt_id", attempt.ID, "user_id", attempt.UserID,
		"order_id", attempt.Order.OrderID, "error", lastErr)

	return lastErr
}

func (s *checkoutServiceImpl) backoff(try int) time.Duration {
	d := s.backoffBase * time.Duration(1<<uint(try-1))
	if d > s.backoffMax {
		d = s.backoffMax
	}
	return d
}

func (s *checkoutServiceImpl) store(attempt *CheckoutAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.UpdatedAt = time.Now()
	s.attempts[attempt.ID] = attempt
}

func (s *checkoutServiceImpl) transition(attempt *CheckoutAttempt, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.State = state
	attempt.UpdatedAt = time.Now()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
