package handlers

// CheckoutResponse is the success envelope for checkout creation. Pointer
// fields mirror the gateway's optional response schema and serialize as null
// when the gateway omitted them.
type CheckoutResponse struct {
	Success    bool    `json:"success"`
	SessionID  *string `json:"sessionId"`
	PaymentURL *string `json:"paymentUrl"`
	CancelURL  *string `json:"cancelUrl"`
	Message    string  `json:"message"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// StatusRequest is the body of the payment-status endpoint.
type StatusRequest struct {
	SessionID string `json:"sessionId"`
}
