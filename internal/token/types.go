// ==============================
// File: internal/token/types.go
// ==============================
package token

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/quote"
)

var (
	// PumpFunProgramID — программа pump.fun на mainnet.
	PumpFunProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
)

const (
	// Стандартные десятичные знаки для SOL и токенов Pump.fun
	solDecimals   = 9
	tokenDecimals = 6
)

// coinPayload — сырой ответ upstream API о токене. Поля резервов —
// указатели: отсутствие ключа в ответе должно отличаться от нуля.
type coinPayload struct {
	Mint                 string  `json:"mint"`
	Name                 string  `json:"name"`
	Symbol               string  `json:"symbol"`
	Description          string  `json:"description"`
	ImageURI             string  `json:"image_uri"`
	VirtualSolReserves   *uint64 `json:"virtual_sol_reserves"`
	VirtualTokenReserves *uint64 `json:"virtual_token_reserves"`
	TotalSupply          uint64  `json:"total_supply"`
	MarketCap            float64 `json:"market_cap"`
	USDMarketCap         float64 `json:"usd_market_cap"`
	Complete             bool    `json:"complete"`
	CreatedTimestamp     int64   `json:"created_timestamp"`
}

// Info — сведения о токене для дашборда: метаданные, производный адрес
// bonding curve и нормализованный снимок резервов.
type Info struct {
	Mint         string    `json:"mint"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	Description  string    `json:"description,omitempty"`
	ImageURI     string    `json:"imageUri,omitempty"`
	BondingCurve string    `json:"bondingCurve"`
	TotalSupply  uint64    `json:"totalSupply"`
	MarketCapSol float64   `json:"marketCapSol"`
	USDMarketCap float64   `json:"usdMarketCap"`
	Complete     bool      `json:"complete"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`

	// Reserves — снимок в целых единицах (SOL / токены), nil когда
	// провайдер не вернул резервы.
	Reserves *quote.ReserveState `json:"reserves,omitempty"`
	// Сырые значения в lamports / минимальных единицах токена.
	RawSolReserves   uint64 `json:"rawSolReserves"`
	RawTokenReserves uint64 `json:"rawTokenReserves"`
}
