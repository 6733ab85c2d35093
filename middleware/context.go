package middleware

import (
	"context"
	"fmt"
	"time"
)

type contextKey struct{}

var paymentContextKey contextKey

// PaymentContext is attached to a request after successful
// verification and read by the protected handler. It is discarded at
// the end of the request, never persisted.
type PaymentContext struct {
	ProofHash  string    `json:"proofHash"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	VerifiedAt time.Time `json:"verifiedAt"`
	Verified   bool      `json:"verified"`
}

func withPayment(ctx context.Context, payment *PaymentContext) context.Context {
	return context.WithValue(ctx, paymentContextKey, payment)
}

// PaymentFromContext extracts verified payment metadata from the
// request context.
func PaymentFromContext(ctx context.Context) (*PaymentContext, bool) {
	payment, ok := ctx.Value(paymentContextKey).(*PaymentContext)
	return payment, ok
}

// RequirePayment extracts payment metadata and errors if the request
// did not pass through a payment gate.
func RequirePayment(ctx context.Context) (*PaymentContext, error) {
	payment, ok := PaymentFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("payment context not found")
	}
	if !payment.Verified {
		return nil, fmt.Errorf("payment not verified")
	}
	return payment, nil
}
