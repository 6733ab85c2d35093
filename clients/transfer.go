package clients

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransferEventSignature is the canonical topic hash of the ERC-20
// Transfer(address,address,uint256) event.
var TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// ErrNoTransferFound is returned when a receipt contains no qualifying
// transfer event for the expected token contract.
var ErrNoTransferFound = errors.New("no transfer event found for token contract")

// TransferEvent is a decoded ERC-20 transfer, amounts in the token's
// smallest unit.
type TransferEvent struct {
	Token     common.Address
	From      common.Address
	To        common.Address
	RawAmount *big.Int
}

// DecodeTransfer locates the transfer event emitted by the given token
// contract in a receipt's logs and decodes it. A log qualifies if its
// emitting address is the token contract and its first topic is the
// Transfer signature. When multiple logs qualify, the first in log
// order wins; a transaction carries at most one payment transfer in
// this protocol, so extra transfers are ignored rather than treated as
// ambiguous.
func DecodeTransfer(logs []*ethtypes.Log, token common.Address) (*TransferEvent, error) {
	for _, entry := range logs {
		if entry == nil || entry.Address != token {
			continue
		}
		if len(entry.Topics) < 3 || entry.Topics[0] != TransferEventSignature {
			continue
		}

		// Topics 1 and 2 hold the sender and recipient addresses
		// left-padded to 32 bytes; the low 20 bytes are the address.
		// The data payload is the amount as a big-endian uint256.
		return &TransferEvent{
			Token:     token,
			From:      common.BytesToAddress(entry.Topics[1].Bytes()),
			To:        common.BytesToAddress(entry.Topics[2].Bytes()),
			RawAmount: new(big.Int).SetBytes(entry.Data),
		}, nil
	}

	return nil, ErrNoTransferFound
}
