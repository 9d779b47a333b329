package apperr

import (
	"errors"
	"fmt"
)

// ErrSignatureInvalid means a payment callback failed cryptographic
// verification. Fatal for the attempt: never retried, never grants.
var ErrSignatureInvalid = errors.New("payment signature invalid")

// ValidationError is a malformed or missing request field. Never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GatewayError is a network or gateway-side failure during order creation.
// Retryable with bounded backoff.
type GatewayError struct {
	Msg string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway unavailable: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("gateway unavailable: %s", e.Msg)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func IsGateway(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// EntitlementWriteError is a store failure after a valid signature. Retried
// with backoff; exhausted retries are durably logged for reconciliation.
type EntitlementWriteError struct {
	Err error
}

func (e *EntitlementWriteError) Error() string {
	return fmt.Sprintf("entitlement write failed: %v", e.Err)
}

func (e *EntitlementWriteError) Unwrap() error { return e.Err }

func IsEntitlementWrite(err error) bool {
	var ee *EntitlementWriteError
	return errors.As(err, &ee)
}
