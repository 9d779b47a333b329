package handler

import (
	"errors"
	"net/http"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/dto"
	"prepdeck-server/internal/middleware"
	"prepdeck-server/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	gatewayKeyID    string
}

func NewCheckoutHandler(checkoutService service.CheckoutService, gatewayKeyID string) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		gatewayKeyID:    gatewayKeyID,
	}
}

func (h *CheckoutHandler) Start(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req dto.StartCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	attempt, err := h.checkoutService.Begin(ctx, userID, req.Scope, req.ModuleTitle)
	if err != nil {
		if errors.Is(err, service.ErrAuthRequired) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"state": service.StateAuthRequired,
				"error": "authentication required",
			})
		}
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		// Order creation failed: report the terminal state with the
		// gateway's message. The payment UI must not open on this path.
		if attempt != nil && attempt.State == service.StateOrderCreationFailed {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"attemptId": attempt.ID,
				"state":     attempt.State,
				"error":     err.Error(),
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, &dto.StartCheckoutResponse{
		AttemptID: attempt.ID,
		State:     attempt.State,
		OrderID:   attempt.Order.OrderID,
		Amount:    attempt.Order.Amount,
		Currency:  attempt.Order.Currency,
		KeyID:     h.gatewayKeyID,
	})
}

func (h *CheckoutHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	attemptID := c.Param("id")

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	attempt, err := h.checkoutService.HandleCallback(ctx, userID, attemptID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "checkout attempt not found")
		}
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		if errors.Is(err, apperr.ErrSignatureInvalid) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"attemptId": attempt.ID,
				"state":     attempt.State,
				"success":   false,
				"error":     "payment verification failed",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "payment could not be processed, please try again")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"attemptId": attempt.ID,
		"state":     attempt.State,
		"success":   true,
	})
}

func (h *CheckoutHandler) Abandon(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	attemptID := c.Param("id")

	attempt, err := h.checkoutService.Abandon(ctx, userID, attemptID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "checkout attempt not found")
		}
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, &dto.CheckoutStateResponse{
		AttemptID: attempt.ID,
		State:     attempt.State,
	})
}

func (h *CheckoutHandler) GetState(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	attemptID := c.Param("id")

	attempt, err := h.checkoutService.Get(ctx, userID, attemptID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "checkout attempt not found")
	}

	return c.JSON(http.StatusOK, &dto.CheckoutStateResponse{
		AttemptID: attempt.ID,
		State:     attempt.State,
	})
}
