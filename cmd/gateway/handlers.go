package main

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-chi/chi/v5"

	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/middleware"
	"github.com/vitwit/paygate/types"
	"github.com/vitwit/paygate/utils"
)

const erc20ABI = `
[
  {
    "name": "balanceOf",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{ "name": "owner", "type": "address" }],
    "outputs": [{ "name": "", "type": "uint256" }]
  }
]
`

// handlers serve the blockchain-data endpoints the gates protect.
type handlers struct {
	cfg      Config
	eth      *ethclient.Client
	tokenABI abi.ABI
	log      logger.Logger
}

func newHandlers(cfg Config, eth *ethclient.Client, log logger.Logger) (*handlers, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}

	return &handlers{
		cfg:      cfg,
		eth:      eth,
		tokenABI: parsed,
		log:      log,
	}, nil
}

// handleBalance returns the native-coin balance of an address.
func (h *handlers) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if err := utils.ValidateAddress(address); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := h.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		h.log.Error("balance lookup failed", map[string]any{
			"address": address,
			"error":   err.Error(),
		})
		httpError(w, http.StatusBadGateway, "chain query failed")
		return
	}

	payment, _ := middleware.PaymentFromContext(ctx)

	writeJSON(w, http.StatusOK, map[string]any{
		"address": common.HexToAddress(address).Hex(),
		"network": h.cfg.Network,
		"wei":     balance.String(),
		"ether":   utils.FormatUnits(balance, 18).String(),
		"payment": payment,
	})
}

// handleTokenBalance returns the USDC balance of an address.
func (h *handlers) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if err := utils.ValidateAddress(address); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := types.TokenForCurrency(types.Network(h.cfg.Network), h.cfg.Currency)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	callData, err := h.tokenABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		httpError(w, http.StatusInternalServerError, "abi encoding failed")
		return
	}

	contract := common.HexToAddress(token.Address)
	raw, err := h.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: callData,
	}, nil)
	if err != nil {
		h.log.Error("token balance lookup failed", map[string]any{
			"address": address,
			"token":   token.Address,
			"error":   err.Error(),
		})
		httpError(w, http.StatusBadGateway, "chain query failed")
		return
	}

	balance := new(big.Int).SetBytes(raw)

	writeJSON(w, http.StatusOK, map[string]any{
		"address":  common.HexToAddress(address).Hex(),
		"network":  h.cfg.Network,
		"token":    token.Address,
		"symbol":   token.Symbol,
		"raw":      balance.String(),
		"balance":  utils.FormatUnits(balance, token.Decimals).String(),
		"decimals": token.Decimals,
	})
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":  message,
		"status": status,
	})
}
