package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"prepdeck-server/internal/apperr"
	"prepdeck-server/internal/client"
	"prepdeck-server/internal/dto"
	"prepdeck-server/internal/service"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-gateway-secret"

type stubGateway struct {
	calls int
	err   error
}

func (s *stubGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*client.GatewayOrder, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &client.GatewayOrder{OrderID: "order_h1", Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}

func doRequest(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestCreateOrderEndpoint_Created(t *testing.T) {
	gw := &stubGateway{}
	h := NewPaymentHandler(service.NewOrderService(gw), service.NewSignatureVerifier(testSecret))

	rec, err := doRequest(t, h.CreateOrder, `{"amount": 499, "currency": "INR"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order_h1", resp.OrderID)
	assert.Equal(t, int64(49900), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
}

func TestCreateOrderEndpoint_BadAmountIs400(t *testing.T) {
	gw := &stubGateway{}
	h := NewPaymentHandler(service.NewOrderService(gw), service.NewSignatureVerifier(testSecret))

	for _, body := range []string{`{"amount": 0}`, `{"amount": -10}`, `{}`} {
		_, err := doRequest(t, h.CreateOrder, body)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, "body %s", body)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
	assert.Equal(t, 0, gw.calls)
}

func TestCreateOrderEndpoint_GatewayFailureIs500WithMessage(t *testing.T) {
	gw := &stubGateway{err: &apperr.GatewayError{Msg: "gateway error 502: upstream down"}}
	h := NewPaymentHandler(service.NewOrderService(gw), service.NewSignatureVerifier(testSecret))

	_, err := doRequest(t, h.CreateOrder, `{"amount": 99}`)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	assert.Contains(t, httpErr.Message, "upstream down")
}

func TestVerifyEndpoint_ValidSignature(t *testing.T) {
	h := NewPaymentHandler(service.NewOrderService(&stubGateway{}), service.NewSignatureVerifier(testSecret))

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte("order_h1|pay_h1"))
	sig := hex.EncodeToString(mac.Sum(nil))

	body, _ := json.Marshal(dto.VerifyRequest{OrderID: "order_h1", PaymentID: "pay_h1", Signature: sig})
	rec, err := doRequest(t, h.VerifyPayment, string(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())
}

func TestVerifyEndpoint_MismatchIsSuccessFalse(t *testing.T) {
	h := NewPaymentHandler(service.NewOrderService(&stubGateway{}), service.NewSignatureVerifier(testSecret))

	rec, err := doRequest(t, h.VerifyPayment,
		`{"orderId": "order_h1", "paymentId": "pay_h1", "signature": "deadbeef"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": false}`, rec.Body.String())
}

func TestVerifyEndpoint_MissingFieldsAre400(t *testing.T) {
	h := NewPaymentHandler(service.NewOrderService(&stubGateway{}), service.NewSignatureVerifier(testSecret))

	for _, body := range []string{
		`{}`,
		`{"orderId": "order_h1"}`,
		`{"orderId": "order_h1", "paymentId": "pay_h1"}`,
	} {
		_, err := doRequest(t, h.VerifyPayment, body)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, "body %s", body)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}
