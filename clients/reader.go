// Package clients provides the chain-side collaborators of the
// verification engine: a receipt reader backed by an EVM RPC provider
// and a decoder for ERC-20 transfer events.
package clients

import (
	"context"
	"errors"
	"fmt"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vitwit/paygate/types"
)

// ErrReceiptNotFound is returned when the chain has no receipt for a
// transaction hash. It is a definitive verdict, distinct from
// transport failures.
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// Reader fetches transaction receipts from a blockchain. It is the
// module's only network I/O boundary and is injectable for testing.
type Reader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	Close()
}

var _ Reader = (*EVMReader)(nil)

// EVMReader reads receipts from an EVM RPC endpoint.
type EVMReader struct {
	network types.Network
	rpcURL  string
	client  *ethclient.Client
}

func NewEVMReader(network types.Network, rpcURL string) (*EVMReader, error) {
	if !network.Known() {
		return nil, &types.PaygateError{
			Code:    types.ErrUnsupportedNetwork,
			Message: fmt.Sprintf("unsupported network: %s", network),
		}
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s RPC: %w", network, err)
	}

	return &EVMReader{
		network: network,
		rpcURL:  rpcURL,
		client:  client,
	}, nil
}

// TransactionReceipt implements Reader. A missing receipt maps to
// ErrReceiptNotFound; any other failure is returned as-is so callers
// can treat it as operational.
func (r *EVMReader) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	receipt, err := r.client.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("receipt lookup on %s: %w", r.network, err)
	}
	return receipt, nil
}

func (r *EVMReader) Network() types.Network {
	return r.network
}

func (r *EVMReader) Close() {
	r.client.Close()
}
