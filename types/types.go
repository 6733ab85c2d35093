// Package types defines the data model shared across the paygate
// module: payment requirements, verification results, networks and the
// token registry.
package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// PaymentRequirement describes what must be paid to access a resource.
type PaymentRequirement struct {
	// Recipient is the chain address that must receive the payment.
	Recipient string `json:"recipient" validate:"required"`

	// Amount is the minimum payment in the token's human-readable
	// units, as a decimal string (e.g., "0.01").
	Amount string `json:"amount" validate:"required"`

	// Currency is the payment token symbol (e.g., "USDC").
	Currency string `json:"currency" validate:"required"`

	// Network identifies the chain the payment must be made on.
	Network Network `json:"network" validate:"required"`
}

// ChainID returns the EVM chain ID derived from the requirement's network.
func (r *PaymentRequirement) ChainID() int64 {
	return r.Network.ChainID()
}

// Validate checks that the requirement is complete and resolvable. A
// gate must not be constructed from a requirement that fails here.
func (r *PaymentRequirement) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &PaygateError{
			Code:    ErrInvalidRequirement,
			Message: fmt.Sprintf("incomplete payment requirement: %v", err),
		}
	}

	if !common.IsHexAddress(r.Recipient) {
		return &PaygateError{
			Code:    ErrInvalidRequirement,
			Message: fmt.Sprintf("recipient %q is not a valid address", r.Recipient),
		}
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return &PaygateError{
			Code:    ErrInvalidRequirement,
			Message: fmt.Sprintf("invalid amount %q: %v", r.Amount, err),
		}
	}
	if amount.IsNegative() {
		return &PaygateError{
			Code:    ErrInvalidRequirement,
			Message: "amount cannot be negative",
		}
	}

	// Fail at construction time for unsupported combinations rather
	// than serving traffic with a gate that can never verify.
	if _, err := TokenForCurrency(r.Network, r.Currency); err != nil {
		return err
	}

	return nil
}

// VerificationResult is the outcome of verifying a payment proof
// against a PaymentRequirement.
type VerificationResult struct {
	Verified bool `json:"verified"`

	// ObservedRecipient and ObservedAmount are decoded from the
	// on-chain transfer event, present only when one was found.
	ObservedRecipient string `json:"observedRecipient,omitempty"`
	ObservedAmount    string `json:"observedAmount,omitempty"`

	// FailureReason is set iff Verified is false and the verdict is
	// definitive.
	FailureReason FailureReason `json:"failureReason,omitempty"`
}
