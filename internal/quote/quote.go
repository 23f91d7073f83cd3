// =============================
// File: internal/quote/quote.go
// =============================
package quote

import (
	"errors"
	"time"
)

// Direction определяет направление сделки
type Direction string

const (
	// DirectionBuy — покупка токена за SOL
	DirectionBuy Direction = "buy"
	// DirectionSell — продажа токена за SOL
	DirectionSell Direction = "sell"
)

var (
	// ErrInvalidIntent возвращается при невалидном запросе котировки
	// (amount <= 0, пустой mint или неизвестное направление).
	ErrInvalidIntent = errors.New("invalid trade intent")
	// ErrMissingReserves возвращается, когда состояние bonding curve
	// не удалось получить или распарсить выше по стеку.
	ErrMissingReserves = errors.New("bonding curve reserves unavailable")
)

// ReserveState — снимок виртуальных резервов bonding curve в целых
// единицах (SOL и токены). Снимок валиден только на момент чтения:
// котировка по нему никогда не авторизует будущую сделку.
type ReserveState struct {
	VirtualSolReserves   float64   `json:"virtualSolReserves"`
	VirtualTokenReserves float64   `json:"virtualTokenReserves"`
	CapturedAt           time.Time `json:"capturedAt"`
}

// TradeIntent — объявленное пользователем намерение сделки.
// Для buy Amount задаётся в SOL, для sell — в токенах.
type TradeIntent struct {
	Mint      string    `json:"mint"`
	Direction Direction `json:"direction"`
	Amount    float64   `json:"amount"`
}

// Validate проверяет намерение до любого сетевого вызова.
func (i TradeIntent) Validate() error {
	if i.Mint == "" {
		return ErrInvalidIntent
	}
	if i.Direction != DirectionBuy && i.Direction != DirectionSell {
		return ErrInvalidIntent
	}
	if i.Amount <= 0 {
		return ErrInvalidIntent
	}
	return nil
}

// Quote — результат работы движка котировок.
type Quote struct {
	Mint                 string    `json:"mint"`
	Direction            Direction `json:"direction"`
	EstimatedPrice       float64   `json:"estimatedPrice"`
	EstimatedSolAmount   float64   `json:"estimatedSolAmount"`
	EstimatedTokenAmount float64   `json:"estimatedTokenAmount"`
	PriceImpact          float64   `json:"priceImpact"`
	Fees                 float64   `json:"fees"`
	Timestamp            time.Time `json:"timestamp"`
}
