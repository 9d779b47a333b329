package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier confirms a completed-payment callback genuinely
// originated from the gateway. This is the single security-critical
// operation: forging a valid signature grants free entitlement. The secret
// is held only server-side and the verifier carries no other state, so it is
// safe for concurrent use.
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type signatureVerifierImpl struct {
	secret []byte
}

func NewSignatureVerifier(secret string) SignatureVerifier {
	return &signatureVerifierImpl{
		secret: []byte(secret),
	}
}

// Verify recomputes HMAC-SHA256(secret, orderID + "|" + paymentID) and
// compares it to the supplied hex signature in constant time. Strict
// accept/reject; field presence is validated by callers before this runs.
func (v *signatureVerifierImpl) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, supplied)
}
