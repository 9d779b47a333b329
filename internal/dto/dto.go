package dto

type CreateOrderRequest struct {
	Amount      float64 `json:"amount"` // major units
	Currency    string  `json:"currency"`
	ReceiptSeed string  `json:"receiptSeed,omitempty"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type VerifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type VerifyResponse struct {
	Success bool `json:"success"`
}

type StartCheckoutRequest struct {
	Scope       string `json:"scope"`                 // module, global
	ModuleTitle string `json:"moduleTitle,omitempty"` // required for module scope
}

type StartCheckoutResponse struct {
	AttemptID string `json:"attemptId"`
	State     string `json:"state"`
	OrderID   string `json:"orderId,omitempty"`
	Amount    int64  `json:"amount,omitempty"` // minor units
	Currency  string `json:"currency,omitempty"`
	KeyID     string `json:"keyId,omitempty"` // gateway public key for the hosted UI
}

type CheckoutStateResponse struct {
	AttemptID string `json:"attemptId"`
	State     string `json:"state"`
}

type EntitlementsResponse struct {
	GlobalAccess     bool            `json:"globalAccess"`
	IsPaid           bool            `json:"isPaid"`
	PurchasedModules map[string]bool `json:"purchasedModules"`
}

type QuestionSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Tier   string `json:"tier"`
	Locked bool   `json:"locked"`
}

type QuestionDetail struct {
	ID        string `json:"id"`
	ModuleKey string `json:"moduleKey"`
	Title     string `json:"title"`
	Tier      string `json:"tier"`
	Body      string `json:"body"`
}
