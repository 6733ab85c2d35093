package types

import "fmt"

// TokenInfo describes a payment token deployed on a specific network.
type TokenInfo struct {
	// Contract address of the token.
	Address string `json:"address"`

	// Symbol of the token (e.g., "USDC").
	Symbol string `json:"symbol"`

	// Decimals is the number of decimals in the token's smallest unit.
	Decimals int `json:"decimals"`
}

// usdcContracts holds the canonical USDC deployments per network.
var usdcContracts = map[Network]TokenInfo{
	NetworkBase: {
		Address:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Symbol:   "USDC",
		Decimals: 6,
	},
	NetworkBaseSepolia: {
		Address:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Symbol:   "USDC",
		Decimals: 6,
	},
	NetworkPolygon: {
		Address:  "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
		Symbol:   "USDC",
		Decimals: 6,
	},
	NetworkPolygonAmoy: {
		Address:  "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582",
		Symbol:   "USDC",
		Decimals: 6,
	},
}

// TokenForCurrency resolves a (network, currency) pair to a deployed
// token contract. Unsupported combinations return a PaygateError
// instead of defaulting; guessing the wrong chain could approve
// invalid payments.
func TokenForCurrency(network Network, currency string) (TokenInfo, error) {
	if !network.Known() {
		return TokenInfo{}, &PaygateError{
			Code:    ErrUnsupportedNetwork,
			Message: fmt.Sprintf("unsupported network: %s", network),
		}
	}

	if currency != "USDC" {
		return TokenInfo{}, &PaygateError{
			Code:    ErrUnsupportedCurrency,
			Message: fmt.Sprintf("unsupported currency %q on network %s", currency, network),
		}
	}

	token, ok := usdcContracts[network]
	if !ok {
		return TokenInfo{}, &PaygateError{
			Code:    ErrUnsupportedCurrency,
			Message: fmt.Sprintf("no %s deployment known on network %s", currency, network),
		}
	}

	return token, nil
}
