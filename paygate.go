// Package paygate gates access to HTTP endpoints behind proof of an
// on-chain USDC micropayment, using HTTP 402 as the protocol signal
// per x402.
package paygate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitwit/paygate/clients"
	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/metrics"
	"github.com/vitwit/paygate/middleware"
	"github.com/vitwit/paygate/types"
	"github.com/vitwit/paygate/verification"
)

// Paygate is the main entry point: it owns the chain readers and the
// verifier and mints per-route payment gates.
type Paygate struct {
	chain    *verification.ChainVerifier
	verifier verification.Verifier
	log      logger.Logger
	rec      metrics.Recorder
}

// settings collect option values before the verifier is built.
type settings struct {
	timeout   time.Duration
	tolerance *decimal.Decimal
	cacheSize int
	cacheTTL  time.Duration
	bypass    []string
	mode      verification.Mode
	log       logger.Logger
	rec       metrics.Recorder
}

// New creates a Paygate. Attach RPC endpoints with AddNetwork before
// building gates.
func New(opts ...Option) *Paygate {
	s := &settings{
		timeout: verification.DefaultTimeout,
		mode:    verification.ModeProduction,
		log:     logger.NoopLogger{},
		rec:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	vopts := []verification.Option{
		verification.WithLogger(s.log),
		verification.WithMetrics(s.rec),
	}
	if s.tolerance != nil {
		vopts = append(vopts, verification.WithTolerance(*s.tolerance))
	}
	if s.cacheSize > 0 {
		vopts = append(vopts, verification.WithCache(s.cacheSize, s.cacheTTL))
	}

	chain := verification.NewChainVerifier(s.timeout, vopts...)

	var verifier verification.Verifier = chain
	if len(s.bypass) > 0 || s.mode == verification.ModeDevelopment {
		demo := verification.NewDemoVerifier(s.bypass, s.mode, s.log)
		verifier = verification.WithDemoBypass(demo, chain)
	}

	return &Paygate{
		chain:    chain,
		verifier: verifier,
		log:      s.log,
		rec:      s.rec,
	}
}

// AddNetwork connects a chain reader for a network.
func (p *Paygate) AddNetwork(network types.Network, rpcURL string) error {
	reader, err := clients.NewEVMReader(network, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to create chain reader for %s: %w", network, err)
	}

	return p.chain.AddReader(network, reader)
}

// Verifier exposes the configured verifier, demo bypass included when
// enabled.
func (p *Paygate) Verifier() verification.Verifier {
	return p.verifier
}

// Verify checks a payment proof against a requirement.
func (p *Paygate) Verify(
	ctx context.Context,
	proofHash string,
	req *types.PaymentRequirement,
) (*types.VerificationResult, error) {
	return p.verifier.Verify(ctx, proofHash, req)
}

// IsNetworkSupported reports whether a reader is attached for a network.
func (p *Paygate) IsNetworkSupported(network types.Network) bool {
	return p.chain.IsNetworkSupported(network)
}

// GateFor builds middleware enforcing the given requirement on a
// route. The requirement is validated here; a misconfigured gate is a
// construction-time error, not a request-time one.
func (p *Paygate) GateFor(req types.PaymentRequirement) (func(http.Handler) http.Handler, error) {
	gate, err := middleware.New(middleware.Config{
		Requirement: req,
		Verifier:    p.verifier,
		Logger:      p.log,
		Metrics:     p.rec,
	})
	if err != nil {
		return nil, err
	}
	return gate.Middleware(), nil
}

// Close closes all chain readers.
func (p *Paygate) Close() {
	p.chain.Close()
}

// Version information
const (
	Version         = "1.0.0"
	ProtocolVersion = "1.0"
)
