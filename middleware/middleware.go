// Package middleware provides the HTTP payment gate: a request stage
// that enforces proof of an on-chain payment before a protected
// handler runs, signalling with HTTP 402 per the x402 protocol.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/metrics"
	"github.com/vitwit/paygate/types"
	"github.com/vitwit/paygate/verification"
)

const (
	// DefaultProofHeader carries the transaction hash claimed as
	// payment proof. Header name matching is case-insensitive per
	// net/http.
	DefaultProofHeader = "X-Payment-Hash"

	protocolName    = "x402"
	protocolVersion = "1.0"
)

// Config configures a payment gate for a single route.
type Config struct {
	// Requirement describes the payment that unlocks the route.
	Requirement types.PaymentRequirement

	// Verifier decides whether a presented proof satisfies the
	// requirement.
	Verifier verification.Verifier

	// Optional disables enforcement entirely; requests pass through
	// and the verifier is never called. Escape hatch for testing and
	// free endpoints.
	Optional bool

	// Header overrides the proof header name.
	Header string

	// InstructionsMessage and InstructionsSteps override the default
	// payment guidance in 402 responses.
	InstructionsMessage string
	InstructionsSteps   []string

	Logger  logger.Logger
	Metrics metrics.Recorder
}

// Gate enforces a payment requirement on a route. Gates are
// independent; applying one per protected route with per-route prices
// shares no mutable state.
type Gate struct {
	cfg     Config
	payment PaymentDetails
}

// New validates the configuration and builds a gate. An incomplete
// requirement or an unsupported network/currency pair is a
// construction-time error; a misconfigured gate must not serve
// traffic.
func New(cfg Config) (*Gate, error) {
	if !cfg.Optional {
		if cfg.Verifier == nil {
			return nil, &types.PaygateError{
				Code:    types.ErrInvalidConfiguration,
				Message: "verifier is required",
			}
		}
		if err := cfg.Requirement.Validate(); err != nil {
			return nil, err
		}
	}

	if cfg.Header == "" {
		cfg.Header = DefaultProofHeader
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NoopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoopRecorder{}
	}

	return &Gate{
		cfg: cfg,
		payment: PaymentDetails{
			Recipient: cfg.Requirement.Recipient,
			Amount:    cfg.Requirement.Amount,
			Currency:  cfg.Requirement.Currency,
			Network:   cfg.Requirement.Network.String(),
			ChainID:   cfg.Requirement.ChainID(),
		},
	}, nil
}

// Middleware returns a standard http.Handler middleware enforcing the
// gate.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.cfg.Optional {
				next.ServeHTTP(w, r)
				return
			}

			proof := strings.TrimSpace(r.Header.Get(g.cfg.Header))
			if proof == "" {
				g.respondPaymentRequired(w, r)
				return
			}

			result, err := g.cfg.Verifier.Verify(r.Context(), proof, &g.cfg.Requirement)
			if err != nil {
				g.respondServerError(w, r, proof, err)
				return
			}

			if !result.Verified {
				g.respondPaymentRejected(w, r, proof, result)
				return
			}

			payment := &PaymentContext{
				ProofHash:  proof,
				Amount:     g.cfg.Requirement.Amount,
				Currency:   g.cfg.Requirement.Currency,
				VerifiedAt: time.Now().UTC(),
				Verified:   true,
			}

			g.cfg.Logger.Info("payment verified, request allowed", map[string]any{
				"proofHash": proof,
				"amount":    g.cfg.Requirement.Amount,
				"path":      r.URL.Path,
			})
			g.cfg.Metrics.IncCounter("gate_allowed", map[string]string{
				"network": g.payment.Network,
			})

			next.ServeHTTP(w, r.WithContext(withPayment(r.Context(), payment)))
		})
	}
}

func (g *Gate) respondPaymentRequired(w http.ResponseWriter, r *http.Request) {
	g.cfg.Logger.Info("payment required", map[string]any{
		"path":   r.URL.Path,
		"method": r.Method,
		"amount": g.cfg.Requirement.Amount,
	})
	g.cfg.Metrics.IncCounter("gate_payment_required", map[string]string{
		"network": g.payment.Network,
	})

	writeJSON(w, http.StatusPaymentRequired, PaymentRequiredResponse{
		Error:    "Payment Required",
		Status:   http.StatusPaymentRequired,
		Protocol: protocolName,
		Version:  protocolVersion,
		Payment:  g.payment,
		Resource: ResourceDetails{
			Endpoint: r.URL.Path,
			Method:   r.Method,
		},
		Instructions: g.instructions(),
	})
}

func (g *Gate) respondPaymentRejected(w http.ResponseWriter, r *http.Request, proof string, result *types.VerificationResult) {
	g.cfg.Logger.Info("payment rejected", map[string]any{
		"proofHash": proof,
		"path":      r.URL.Path,
		"reason":    string(result.FailureReason),
		"amount":    g.cfg.Requirement.Amount,
	})
	g.cfg.Metrics.IncCounter("gate_payment_rejected", map[string]string{
		"network": g.payment.Network,
	})

	writeJSON(w, http.StatusPaymentRequired, PaymentRejectedResponse{
		Error:    "Invalid Payment",
		Status:   http.StatusPaymentRequired,
		Message:  "Payment could not be verified",
		Received: ReceivedProof{Hash: proof},
		Expected: ExpectedPayment{
			Amount:    g.cfg.Requirement.Amount,
			Currency:  g.cfg.Requirement.Currency,
			Recipient: g.cfg.Requirement.Recipient,
			Network:   g.cfg.Requirement.Network.String(),
		},
	})
}

func (g *Gate) respondServerError(w http.ResponseWriter, r *http.Request, proof string, err error) {
	// Full detail stays server-side; the client only learns the
	// verdict is unknown and a retry may succeed.
	g.cfg.Logger.Error("payment verification unavailable", map[string]any{
		"proofHash": proof,
		"path":      r.URL.Path,
		"error":     err.Error(),
	})
	g.cfg.Metrics.IncCounter("gate_verification_error", map[string]string{
		"network": g.payment.Network,
	})

	writeJSON(w, http.StatusBadGateway, ServerErrorResponse{
		Error:  "Payment verification temporarily unavailable",
		Status: http.StatusBadGateway,
	})
}

func (g *Gate) instructions() Instructions {
	message := g.cfg.InstructionsMessage
	if message == "" {
		message = fmt.Sprintf("Payment of %s %s on %s is required to access this resource.",
			g.cfg.Requirement.Amount, g.cfg.Requirement.Currency, g.cfg.Requirement.Network)
	}

	steps := g.cfg.InstructionsSteps
	if len(steps) == 0 {
		steps = []string{
			fmt.Sprintf("Send %s %s to %s on %s.",
				g.cfg.Requirement.Amount, g.cfg.Requirement.Currency,
				g.cfg.Requirement.Recipient, g.cfg.Requirement.Network),
			"Wait for the transaction to be confirmed on-chain.",
			fmt.Sprintf("Retry this request with the transaction hash in the %s header.", g.cfg.Header),
		}
	}

	return Instructions{Message: message, Steps: steps}
}
