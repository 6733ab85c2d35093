package types

// FailureReason is the closed set of definitive verification verdicts.
// Transport and RPC failures are never expressed as a FailureReason;
// they surface as ordinary errors so callers can distinguish "payment
// is invalid" from "we could not check".
type FailureReason string

const (
	// ReasonTransactionNotFound means the hash is unknown to the chain,
	// either not yet mined or mistyped.
	ReasonTransactionNotFound FailureReason = "transaction_not_found"

	// ReasonTransactionFailed means the transaction was mined but reverted.
	ReasonTransactionFailed FailureReason = "transaction_failed"

	// ReasonNoTransferFound means no qualifying transfer event for the
	// expected token contract was present in the receipt logs.
	ReasonNoTransferFound FailureReason = "no_transfer_found"

	// ReasonWrongRecipient means the transfer went to an unexpected address.
	ReasonWrongRecipient FailureReason = "wrong_recipient"

	// ReasonInsufficientAmount means the transfer amount was below the
	// requirement minus tolerance.
	ReasonInsufficientAmount FailureReason = "insufficient_amount"
)

// PaygateError is a typed configuration or usage error.
type PaygateError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *PaygateError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidRequirement   = "INVALID_REQUIREMENT"
	ErrUnsupportedNetwork   = "UNSUPPORTED_NETWORK"
	ErrUnsupportedCurrency  = "UNSUPPORTED_CURRENCY"
	ErrInvalidConfiguration = "INVALID_CONFIGURATION"
)
