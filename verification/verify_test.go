package verification

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/paygate/clients"
	"github.com/vitwit/paygate/types"
)

const (
	testProofHash = "0x59a84e9aedb02a0e3a6b8044995e4d774735ba4e2ebbf8984f171d25b4a21fb3"
	// USDC contract on base-sepolia, from the token registry.
	testTokenAddr = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
)

var (
	testSender    = common.HexToAddress("0xE4d365a5a8fC0DCEE9E3C5985D7FcBab8B4A0fE1")
	testRecipient = common.HexToAddress("0x384Aa214be0B279cbf211e9b2C992d8633F77848")
)

// fakeReader serves receipts from memory, standing in for the RPC
// provider.
type fakeReader struct {
	receipts map[common.Hash]*ethtypes.Receipt
	err      error
	calls    int
}

func (f *fakeReader) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, clients.ErrReceiptNotFound
	}
	return receipt, nil
}

func (f *fakeReader) Close() {}

func transferLog(token, from, to common.Address, amount *big.Int) *ethtypes.Log {
	return &ethtypes.Log{
		Address: token,
		Topics: []common.Hash{
			clients.TransferEventSignature,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}
}

func usdcReceipt(to common.Address, rawAmount int64) *ethtypes.Receipt {
	return &ethtypes.Receipt{
		Status: ethtypes.ReceiptStatusSuccessful,
		Logs: []*ethtypes.Log{
			transferLog(common.HexToAddress(testTokenAddr), testSender, to, big.NewInt(rawAmount)),
		},
	}
}

func testRequirement() *types.PaymentRequirement {
	return &types.PaymentRequirement{
		Recipient: testRecipient.Hex(),
		Amount:    "0.01",
		Currency:  "USDC",
		Network:   types.NetworkBaseSepolia,
	}
}

func newVerifier(t *testing.T, reader clients.Reader, opts ...Option) *ChainVerifier {
	t.Helper()
	v := NewChainVerifier(time.Second, opts...)
	require.NoError(t, v.AddReader(types.NetworkBaseSepolia, reader))
	return v
}

func TestVerify_HappyPath(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000), // 0.01 USDC
	}}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, testRecipient.Hex(), result.ObservedRecipient)
	assert.Equal(t, "0.01", result.ObservedAmount)
	assert.Empty(t, result.FailureReason)
}

// An address differing only in hex-character case still matches.
func TestVerify_RecipientCaseInsensitive(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000),
	}}
	v := newVerifier(t, reader)

	req := testRequirement()
	req.Recipient = "0x384aa214be0b279cbf211e9b2c992d8633f77848"

	result, err := v.Verify(context.Background(), testProofHash, req)
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestVerify_WrongRecipient(t *testing.T) {
	other := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(other, 10000),
	}}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonWrongRecipient, result.FailureReason)
	assert.Equal(t, other.Hex(), result.ObservedRecipient)
}

func TestVerify_InsufficientAmount(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 5000), // 0.005 USDC
	}}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonInsufficientAmount, result.FailureReason)
	assert.Equal(t, "0.005", result.ObservedAmount)
}

// Exactly required-tolerance passes; one smallest unit below fails.
func TestVerify_ToleranceBoundary(t *testing.T) {
	atBoundary := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 9999), // 0.009999 = 0.01 - 0.000001
	}}
	v := newVerifier(t, atBoundary)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.True(t, result.Verified)

	belowBoundary := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 9998),
	}}
	v = newVerifier(t, belowBoundary)

	result, err = v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonInsufficientAmount, result.FailureReason)
}

func TestVerify_TransactionNotFound(t *testing.T) {
	v := newVerifier(t, &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{}})

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonTransactionNotFound, result.FailureReason)
}

func TestVerify_MalformedHash(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{}}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), "not-a-hash", testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonTransactionNotFound, result.FailureReason)
	assert.Zero(t, reader.calls)
}

func TestVerify_TransactionFailed(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): {Status: ethtypes.ReceiptStatusFailed},
	}}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonTransactionFailed, result.FailureReason)
}

func TestVerify_NoTransferFound(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): {Status: ethtypes.ReceiptStatusSuccessful},
	}}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonNoTransferFound, result.FailureReason)
}

// Transport failures surface as errors, never as a definitive verdict.
func TestVerify_OperationalError(t *testing.T) {
	reader := &fakeReader{err: errors.New("rpc timeout")}
	v := newVerifier(t, reader)

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestVerify_NoReaderForNetwork(t *testing.T) {
	v := NewChainVerifier(time.Second)

	_, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.Error(t, err)
	var pgErr *types.PaygateError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, types.ErrUnsupportedNetwork, pgErr.Code)
}

func TestAddReader_UnknownNetwork(t *testing.T) {
	v := NewChainVerifier(time.Second)
	err := v.AddReader("solana-mainnet", &fakeReader{})
	assert.Error(t, err)
	assert.False(t, v.IsNetworkSupported("solana-mainnet"))
}

// Verifying the same hash twice yields the same verdict.
func TestVerify_Idempotent(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000),
	}}
	v := newVerifier(t, reader)

	first, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	second, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerify_CacheShortCircuitsReader(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000),
	}}
	v := newVerifier(t, reader, WithCache(128, time.Hour))

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	require.True(t, result.Verified)
	assert.Equal(t, 1, reader.calls)

	result, err = v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, 1, reader.calls)
}

// One verifier serves gates with different prices. A verdict cached
// for a cheap requirement must not be replayed against an expensive
// one, and vice versa.
func TestVerify_CacheIsPerRequirement(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000), // 0.01 USDC
	}}
	v := newVerifier(t, reader, WithCache(128, time.Hour))

	cheap := testRequirement()
	result, err := v.Verify(context.Background(), testProofHash, cheap)
	require.NoError(t, err)
	require.True(t, result.Verified)

	expensive := testRequirement()
	expensive.Amount = "100"

	result, err = v.Verify(context.Background(), testProofHash, expensive)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonInsufficientAmount, result.FailureReason)

	// The expensive verdict must not poison the cheap one either.
	result, err = v.Verify(context.Background(), testProofHash, cheap)
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestVerify_CacheIsPerRecipient(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000),
	}}
	v := newVerifier(t, reader, WithCache(128, time.Hour))

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	require.True(t, result.Verified)

	other := testRequirement()
	other.Recipient = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	result, err = v.Verify(context.Background(), testProofHash, other)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, types.ReasonWrongRecipient, result.FailureReason)
}

// Requirements that differ only in recipient hex casing share a cache
// entry.
func TestVerify_CacheKeyCanonicalizesRecipient(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{
		common.HexToHash(testProofHash): usdcReceipt(testRecipient, 10000),
	}}
	v := newVerifier(t, reader, WithCache(128, time.Hour))

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	require.True(t, result.Verified)
	require.Equal(t, 1, reader.calls)

	lower := testRequirement()
	lower.Recipient = "0x384aa214be0b279cbf211e9b2c992d8633f77848"

	result, err = v.Verify(context.Background(), testProofHash, lower)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, 1, reader.calls)
}

// A pending transaction must not be pinned as not-found by the cache.
func TestVerify_NotFoundIsNotCached(t *testing.T) {
	reader := &fakeReader{receipts: map[common.Hash]*ethtypes.Receipt{}}
	v := newVerifier(t, reader, WithCache(128, time.Hour))

	result, err := v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	require.Equal(t, types.ReasonTransactionNotFound, result.FailureReason)

	// Transaction gets mined between attempts.
	reader.receipts[common.HexToHash(testProofHash)] = usdcReceipt(testRecipient, 10000)

	result, err = v.Verify(context.Background(), testProofHash, testRequirement())
	require.NoError(t, err)
	assert.True(t, result.Verified)
}
