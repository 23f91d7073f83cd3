package server

import (
	"github.com/rovshanmuradov/pumpfun-gateway/internal/quote"
)

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"`
}

// QuoteRequest is the body of POST /api/quote. Slippage is an optional
// policy used to derive the min-out bound the client forwards to the
// relayer with the trade.
type QuoteRequest struct {
	Mint      string                `json:"mint"`
	Direction quote.Direction       `json:"direction"`
	Amount    float64               `json:"amount"`
	Slippage  *quote.SlippageConfig `json:"slippage,omitempty"`
}

// QuoteResponse wraps a computed quote. MinAmountOut is present when the
// request carried a slippage policy, in the quote's output units.
type QuoteResponse struct {
	Success      bool         `json:"success"`
	Quote        *quote.Quote `json:"quote,omitempty"`
	MinAmountOut float64      `json:"minAmountOut,omitempty"`
}

// TradeGatewayRequest is the body of POST /api/trade. The wallet public key
// identifies the signer; the gateway never sees a private key.
type TradeGatewayRequest struct {
	PublicKey       string          `json:"publicKey"`
	Mint            string          `json:"mint"`
	Direction       quote.Direction `json:"direction"`
	Amount          float64         `json:"amount"`
	SlippagePercent float64         `json:"slippage"`
	PriorityFee     float64         `json:"priorityFee"`
	Pool            string          `json:"pool,omitempty"`
}

// TradeGatewayResponse carries the unsigned transaction for the browser
// wallet to sign and submit.
type TradeGatewayResponse struct {
	Success       bool   `json:"success"`
	UnsignedTxB64 string `json:"unsignedTx"`
}
