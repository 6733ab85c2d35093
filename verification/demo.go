package verification

import (
	"context"

	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/types"
)

// Mode marks how a deployment is operated. The demo bypass is
// structurally disabled outside development.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// DefaultAllowList is the sentinel proof accepted by the demo
// verifier when no explicit allow-list is configured.
var DefaultAllowList = []string{"demo"}

// DemoVerifier accepts a fixed set of sentinel proof values without
// chain queries, strictly for local development and test fixtures.
type DemoVerifier struct {
	allowList map[string]struct{}
	mode      Mode
	log       logger.Logger
}

func NewDemoVerifier(allowList []string, mode Mode, log logger.Logger) *DemoVerifier {
	if len(allowList) == 0 {
		allowList = DefaultAllowList
	}
	if log == nil {
		log = logger.NoopLogger{}
	}

	allowed := make(map[string]struct{}, len(allowList))
	for _, proof := range allowList {
		allowed[proof] = struct{}{}
	}

	return &DemoVerifier{
		allowList: allowed,
		mode:      mode,
		log:       log,
	}
}

// Allows reports whether the proof is an allow-listed bypass token.
// In production it always returns false, even on an exact match; the
// lockout is a hard safety invariant, not a default.
func (d *DemoVerifier) Allows(proofHash string) bool {
	if d.mode == ModeProduction {
		if _, ok := d.allowList[proofHash]; ok {
			d.log.Warn("demo payment bypass invoked in production deployment, refusing", map[string]any{
				"proofHash": proofHash,
			})
		}
		return false
	}

	_, ok := d.allowList[proofHash]
	return ok
}

var _ Verifier = (*bypassVerifier)(nil)

// bypassVerifier consults the demo allow-list before falling back to
// real chain verification. The two variants are picked at construction
// time rather than by runtime flag checks.
type bypassVerifier struct {
	demo *DemoVerifier
	next Verifier
}

// WithDemoBypass wraps a verifier so allow-listed demo proofs skip
// chain queries.
func WithDemoBypass(demo *DemoVerifier, next Verifier) Verifier {
	return &bypassVerifier{demo: demo, next: next}
}

func (b *bypassVerifier) Verify(
	ctx context.Context,
	proofHash string,
	req *types.PaymentRequirement,
) (*types.VerificationResult, error) {
	if b.demo.Allows(proofHash) {
		b.demo.log.Info("demo payment bypass accepted", map[string]any{
			"proofHash": proofHash,
			"network":   req.Network.String(),
		})
		return &types.VerificationResult{
			Verified:          true,
			ObservedRecipient: req.Recipient,
			ObservedAmount:    req.Amount,
		}, nil
	}

	return b.next.Verify(ctx, proofHash, req)
}
