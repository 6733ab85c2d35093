// Package verification decides whether a claimed transaction hash
// constitutes valid proof of payment against a PaymentRequirement.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/vitwit/paygate/cache"
	"github.com/vitwit/paygate/clients"
	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/metrics"
	"github.com/vitwit/paygate/types"
	"github.com/vitwit/paygate/utils"
)

// DefaultTolerance absorbs rounding from decimal/integer conversion
// when comparing amounts, in the token's human-readable units.
var DefaultTolerance = decimal.RequireFromString("0.000001")

// DefaultTimeout bounds a single receipt lookup. An RPC call that
// never returns must not hang the request.
const DefaultTimeout = 10 * time.Second

// Verifier is the contract for payment verification. A non-nil error
// means the verdict is unknown (transport, timeout, RPC failure) and
// the caller should respond 5xx; definitive verdicts, valid or not,
// come back in the VerificationResult.
type Verifier interface {
	Verify(ctx context.Context, proofHash string, req *types.PaymentRequirement) (*types.VerificationResult, error)
}

var _ Verifier = (*ChainVerifier)(nil)

// ChainVerifier verifies payments by fetching transaction receipts
// from per-network chain readers and decoding the token transfer.
type ChainVerifier struct {
	readers   map[types.Network]clients.Reader
	tolerance decimal.Decimal
	timeout   time.Duration
	verdicts  *cache.Cache[string, types.VerificationResult]
	log       logger.Logger
	rec       metrics.Recorder
}

// Option configures a ChainVerifier.
type Option func(*ChainVerifier)

func WithTolerance(t decimal.Decimal) Option {
	return func(v *ChainVerifier) {
		v.tolerance = t
	}
}

func WithLogger(l logger.Logger) Option {
	return func(v *ChainVerifier) {
		v.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(v *ChainVerifier) {
		v.rec = r
	}
}

// WithCache memoizes definitive verdicts by proof hash. Mined
// transactions are immutable, so replays always yield the same
// verdict; the cache is a pure accelerator.
func WithCache(size int, ttl time.Duration) Option {
	return func(v *ChainVerifier) {
		v.verdicts = cache.NewLRU[string, types.VerificationResult](size, ttl, "verification_verdicts")
	}
}

// NewChainVerifier creates a verifier with no readers attached. Attach
// one per supported network with AddReader.
func NewChainVerifier(timeout time.Duration, opts ...Option) *ChainVerifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	v := &ChainVerifier{
		readers:   make(map[types.Network]clients.Reader),
		tolerance: DefaultTolerance,
		timeout:   timeout,
		log:       logger.NoopLogger{},
		rec:       metrics.NoopRecorder{},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// AddReader attaches a chain reader for a network.
func (v *ChainVerifier) AddReader(network types.Network, reader clients.Reader) error {
	if !network.Known() {
		return &types.PaygateError{
			Code:    types.ErrUnsupportedNetwork,
			Message: fmt.Sprintf("unsupported network: %s", network),
		}
	}

	v.readers[network] = reader
	return nil
}

// IsNetworkSupported reports whether a reader is attached for the network.
func (v *ChainVerifier) IsNetworkSupported(network types.Network) bool {
	_, ok := v.readers[network]
	return ok
}

// Verify implements Verifier. Steps run strictly in order: fetch
// receipt, check execution status, decode transfer, convert units,
// compare recipient, compare amount.
func (v *ChainVerifier) Verify(
	ctx context.Context,
	proofHash string,
	req *types.PaymentRequirement,
) (*types.VerificationResult, error) {
	started := time.Now()
	defer func() {
		v.rec.ObserveLatency("verify", time.Since(started), map[string]string{
			"network": req.Network.String(),
		})
	}()

	// A malformed hash can never reference a mined transaction.
	if err := utils.ValidateTransactionHash(proofHash); err != nil {
		return v.fail(proofHash, req, types.ReasonTransactionNotFound, nil), nil
	}

	cacheKey := verdictKey(proofHash, req)
	if v.verdicts != nil {
		if cached, ok := v.verdicts.Get(cacheKey); ok {
			result := cached
			return &result, nil
		}
	}

	reader, ok := v.readers[req.Network]
	if !ok {
		return nil, &types.PaygateError{
			Code:    types.ErrUnsupportedNetwork,
			Message: fmt.Sprintf("no chain reader configured for network %s", req.Network),
		}
	}

	token, err := types.TokenForCurrency(req.Network, req.Currency)
	if err != nil {
		return nil, err
	}

	verifyCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	receipt, err := reader.TransactionReceipt(verifyCtx, common.HexToHash(proofHash))
	if errors.Is(err, clients.ErrReceiptNotFound) {
		// Definitive for now, but the transaction may simply not be
		// mined yet. Never cached, so a later retry can succeed.
		return v.fail(proofHash, req, types.ReasonTransactionNotFound, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch receipt: %w", err)
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return v.cacheAndFail(cacheKey, proofHash, req, types.ReasonTransactionFailed, nil), nil
	}

	transfer, err := clients.DecodeTransfer(receipt.Logs, common.HexToAddress(token.Address))
	if errors.Is(err, clients.ErrNoTransferFound) {
		return v.cacheAndFail(cacheKey, proofHash, req, types.ReasonNoTransferFound, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode transfer: %w", err)
	}

	observed := utils.FormatUnits(transfer.RawAmount, token.Decimals)

	// HexToAddress canonicalizes both sides, so the comparison is
	// case-insensitive.
	if transfer.To != common.HexToAddress(req.Recipient) {
		return v.cacheAndFail(cacheKey, proofHash, req, types.ReasonWrongRecipient, &observedPair{
			recipient: transfer.To.Hex(),
			amount:    observed,
		}), nil
	}

	required, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, &types.PaygateError{
			Code:    types.ErrInvalidRequirement,
			Message: fmt.Sprintf("invalid required amount %q: %v", req.Amount, err),
		}
	}

	if observed.LessThan(required.Sub(v.tolerance)) {
		return v.cacheAndFail(cacheKey, proofHash, req, types.ReasonInsufficientAmount, &observedPair{
			recipient: transfer.To.Hex(),
			amount:    observed,
		}), nil
	}

	result := &types.VerificationResult{
		Verified:          true,
		ObservedRecipient: transfer.To.Hex(),
		ObservedAmount:    observed.String(),
	}

	if v.verdicts != nil {
		v.verdicts.Set(cacheKey, *result)
	}

	v.log.Info("payment verified", map[string]any{
		"proofHash": proofHash,
		"network":   req.Network.String(),
		"amount":    observed.String(),
		"recipient": transfer.To.Hex(),
	})
	v.rec.IncCounter("payment_verified", map[string]string{"network": req.Network.String()})

	return result, nil
}

// verdictKey identifies a verdict by the proof hash and the full
// requirement it was judged against. A ChainVerifier is shared across
// gates with different prices and recipients, and the same hash can
// satisfy one requirement while failing another, so the hash alone is
// not a valid cache identity.
func verdictKey(proofHash string, req *types.PaymentRequirement) string {
	return strings.Join([]string{
		req.Network.String(),
		common.HexToAddress(req.Recipient).Hex(),
		req.Amount,
		req.Currency,
		strings.ToLower(proofHash),
	}, ":")
}

type observedPair struct {
	recipient string
	amount    decimal.Decimal
}

func (v *ChainVerifier) fail(
	proofHash string,
	req *types.PaymentRequirement,
	reason types.FailureReason,
	observed *observedPair,
) *types.VerificationResult {
	result := &types.VerificationResult{
		Verified:      false,
		FailureReason: reason,
	}
	if observed != nil {
		result.ObservedRecipient = observed.recipient
		result.ObservedAmount = observed.amount.String()
	}

	v.log.Info("payment rejected", map[string]any{
		"proofHash": proofHash,
		"network":   req.Network.String(),
		"reason":    string(reason),
	})
	v.rec.IncCounter("payment_rejected", map[string]string{"network": req.Network.String()})

	return result
}

// cacheAndFail records a definitive verdict derived from a mined
// receipt. ReasonTransactionNotFound goes through fail instead; a
// pending transaction can still be mined later.
func (v *ChainVerifier) cacheAndFail(
	cacheKey, proofHash string,
	req *types.PaymentRequirement,
	reason types.FailureReason,
	observed *observedPair,
) *types.VerificationResult {
	result := v.fail(proofHash, req, reason, observed)
	if v.verdicts != nil {
		v.verdicts.Set(cacheKey, *result)
	}
	return result
}

// Close closes all attached readers.
func (v *ChainVerifier) Close() {
	for _, reader := range v.readers {
		reader.Close()
	}
}
