package middleware

import (
	"encoding/json"
	"net/http"
)

// PaymentDetails is the payment block of a 402 response, describing
// how to pay for the resource.
type PaymentDetails struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Network   string `json:"network"`
	ChainID   int64  `json:"chainId"`
}

// ResourceDetails identifies the gated resource.
type ResourceDetails struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
}

// Instructions carries human-readable payment guidance.
type Instructions struct {
	Message string   `json:"message"`
	Steps   []string `json:"steps"`
}

// PaymentRequiredResponse is emitted when a request arrives without a
// payment proof.
type PaymentRequiredResponse struct {
	Error        string          `json:"error"`
	Status       int             `json:"status"`
	Protocol     string          `json:"protocol"`
	Version      string          `json:"version"`
	Payment      PaymentDetails  `json:"payment"`
	Resource     ResourceDetails `json:"resource"`
	Instructions Instructions    `json:"instructions"`
}

// ReceivedProof echoes the proof the client presented.
type ReceivedProof struct {
	Hash string `json:"hash"`
}

// ExpectedPayment describes what the gate wanted, for self-diagnosis.
type ExpectedPayment struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Recipient string `json:"recipient"`
	Network   string `json:"network"`
}

// PaymentRejectedResponse is emitted when a presented proof did not
// check out. It is intentionally a different shape from
// PaymentRequiredResponse: "you haven't paid" and "your payment didn't
// verify" are different remediation paths.
type PaymentRejectedResponse struct {
	Error    string          `json:"error"`
	Status   int             `json:"status"`
	Message  string          `json:"message"`
	Received ReceivedProof   `json:"received"`
	Expected ExpectedPayment `json:"expected"`
}

// ServerErrorResponse is emitted when verification could not complete.
// No payment detail leaks here; the full error is logged server-side.
type ServerErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
