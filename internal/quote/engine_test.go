package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotPrice(t *testing.T) {
	reserves := ReserveState{VirtualSolReserves: 30, VirtualTokenReserves: 1_000_000}
	assert.InDelta(t, 0.00003, SpotPrice(reserves), 1e-12)
}

func TestSpotPrice_ZeroTokenReserves(t *testing.T) {
	// Кривая не инициализирована или исчерпана — цена 0, без паники.
	reserves := ReserveState{VirtualSolReserves: 30, VirtualTokenReserves: 0}
	assert.Equal(t, 0.0, SpotPrice(reserves))
}

func TestEngine_Compute_Buy(t *testing.T) {
	engine := NewEngine()
	reserves := &ReserveState{
		VirtualSolReserves:   30,
		VirtualTokenReserves: 1_000_000,
		CapturedAt:           time.Now(),
	}

	q, err := engine.Compute(reserves, TradeIntent{
		Mint:      "So11111111111111111111111111111111111111112",
		Direction: DirectionBuy,
		Amount:    1,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.00003, q.EstimatedPrice, 1e-12)
	assert.InDelta(t, 33333.333333, q.EstimatedTokenAmount, 1e-4)
	assert.Equal(t, 1.0, q.EstimatedSolAmount)
	assert.Equal(t, reserves.CapturedAt, q.Timestamp)
}

func TestEngine_Compute_Sell(t *testing.T) {
	engine := NewEngine()
	reserves := &ReserveState{VirtualSolReserves: 30, VirtualTokenReserves: 1_000_000}

	q, err := engine.Compute(reserves, TradeIntent{
		Mint:      "So11111111111111111111111111111111111111112",
		Direction: DirectionSell,
		Amount:    10_000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.3, q.EstimatedSolAmount, 1e-12)
	assert.Equal(t, 10_000.0, q.EstimatedTokenAmount)
}

// Покупка X SOL и немедленная продажа полученных токенов на тех же резервах
// возвращает X: движок держит цену постоянной и не симулирует сдвиг кривой.
// Это ожидаемое свойство spot-price аппроксимации, не баг.
func TestEngine_Compute_RoundTrip(t *testing.T) {
	engine := NewEngine()
	reserves := &ReserveState{VirtualSolReserves: 42.5, VirtualTokenReserves: 812_345_678}
	mint := "So11111111111111111111111111111111111111112"

	solIn := 1.75
	buy, err := engine.Compute(reserves, TradeIntent{Mint: mint, Direction: DirectionBuy, Amount: solIn})
	require.NoError(t, err)

	sell, err := engine.Compute(reserves, TradeIntent{Mint: mint, Direction: DirectionSell, Amount: buy.EstimatedTokenAmount})
	require.NoError(t, err)

	assert.InDelta(t, solIn, sell.EstimatedSolAmount, 1e-9)
}

func TestEngine_Compute_ZeroReserves_Buy(t *testing.T) {
	engine := NewEngine()
	reserves := &ReserveState{VirtualSolReserves: 30, VirtualTokenReserves: 0}

	q, err := engine.Compute(reserves, TradeIntent{
		Mint:      "So11111111111111111111111111111111111111112",
		Direction: DirectionBuy,
		Amount:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, q.EstimatedPrice)
	assert.Equal(t, 0.0, q.EstimatedTokenAmount)
	assert.Equal(t, 1.0, q.EstimatedSolAmount)
}

func TestEngine_Compute_InvalidIntent(t *testing.T) {
	engine := NewEngine()
	reserves := &ReserveState{VirtualSolReserves: 30, VirtualTokenReserves: 1_000_000}
	mint := "So11111111111111111111111111111111111111112"

	cases := []struct {
		name   string
		intent TradeIntent
	}{
		{"zero amount buy", TradeIntent{Mint: mint, Direction: DirectionBuy, Amount: 0}},
		{"zero amount sell", TradeIntent{Mint: mint, Direction: DirectionSell, Amount: 0}},
		{"negative amount", TradeIntent{Mint: mint, Direction: DirectionBuy, Amount: -5}},
		{"missing mint", TradeIntent{Direction: DirectionBuy, Amount: 1}},
		{"unknown direction", TradeIntent{Mint: mint, Direction: "hold", Amount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Compute(reserves, tc.intent)
			assert.ErrorIs(t, err, ErrInvalidIntent)
		})
	}
}

func TestEngine_Compute_MissingReserves(t *testing.T) {
	engine := NewEngine()
	intent := TradeIntent{
		Mint:      "So11111111111111111111111111111111111111112",
		Direction: DirectionBuy,
		Amount:    1,
	}

	_, err := engine.Compute(nil, intent)
	assert.ErrorIs(t, err, ErrMissingReserves)

	_, err = engine.Compute(&ReserveState{VirtualSolReserves: -1}, intent)
	assert.ErrorIs(t, err, ErrMissingReserves)
}

func TestEngine_ComputeWithProviderFields(t *testing.T) {
	engine := NewEngine()
	reserves := &ReserveState{VirtualSolReserves: 30, VirtualTokenReserves: 1_000_000}
	intent := TradeIntent{
		Mint:      "So11111111111111111111111111111111111111112",
		Direction: DirectionBuy,
		Amount:    1,
	}

	impact := 0.42
	q, err := engine.ComputeWithProviderFields(reserves, intent, &impact, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.42, q.PriceImpact)
	// fees не переданы провайдером — остаются нулевыми, не выдумываются.
	assert.Equal(t, 0.0, q.Fees)
}
