package handler

import (
	"errors"
	"net/http"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/dto"
	"prepdeck-server/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	orderService service.OrderService
	verifier     service.SignatureVerifier
}

func NewPaymentHandler(orderService service.OrderService, verifier service.SignatureVerifier) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
		verifier:     verifier,
	}
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.CreateOrder(ctx, req.Amount, req.Currency, req.ReceiptSeed)
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, &dto.CreateOrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	})
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	// Field validation is distinct from, and prior to, verification.
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing orderId, paymentId or signature")
	}

	ok := h.verifier.Verify(req.OrderID, req.PaymentID, req.Signature)

	return c.JSON(http.StatusOK, &dto.VerifyResponse{Success: ok})
}
