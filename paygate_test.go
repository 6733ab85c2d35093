package paygate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/paygate/middleware"
	"github.com/vitwit/paygate/types"
	"github.com/vitwit/paygate/verification"
)

func testRequirement() types.PaymentRequirement {
	return types.PaymentRequirement{
		Recipient: "0x384Aa214be0B279cbf211e9b2C992d8633F77848",
		Amount:    "0.01",
		Currency:  "USDC",
		Network:   types.NetworkBaseSepolia,
	}
}

func TestGateFor_InvalidRequirement(t *testing.T) {
	p := New()
	defer p.Close()

	req := testRequirement()
	req.Recipient = ""
	_, err := p.GateFor(req)
	assert.Error(t, err)

	req = testRequirement()
	req.Network = "solana-mainnet"
	_, err = p.GateFor(req)
	assert.Error(t, err)
}

// In development mode the demo proof unlocks a gate end to end with no
// chain readers attached.
func TestDemoBypass_EndToEnd(t *testing.T) {
	p := New(WithMode(verification.ModeDevelopment))
	defer p.Close()

	gate, err := p.GateFor(testRequirement())
	require.NoError(t, err)

	var payment *middleware.PaymentContext
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payment, _ = middleware.PaymentFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/data", nil)
	req.Header.Set("X-Payment-Hash", "demo")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, payment)
	assert.True(t, payment.Verified)
	assert.Equal(t, "demo", payment.ProofHash)
}

// An allow-list configured in production must not open the bypass.
func TestDemoBypass_ProductionLockout(t *testing.T) {
	p := New(
		WithMode(verification.ModeProduction),
		WithDemoBypass([]string{"demo"}),
	)
	defer p.Close()

	gate, err := p.GateFor(testRequirement())
	require.NoError(t, err)

	var invoked bool
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	}))

	req := httptest.NewRequest("GET", "/v1/data", nil)
	req.Header.Set("X-Payment-Hash", "demo")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// Bypass refused; no reader is attached so real verification
	// cannot run either. The request must not reach the handler.
	assert.False(t, invoked)
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestIsNetworkSupported(t *testing.T) {
	p := New()
	defer p.Close()

	assert.False(t, p.IsNetworkSupported(types.NetworkBaseSepolia))
}
