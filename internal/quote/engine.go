// ==============================
// File: internal/quote/engine.go
// ==============================
package quote

import "time"

// Engine — чистый, детерминированный движок котировок. Не делает I/O и
// не хранит состояние: весь вход приходит снимком резервов от вызывающего.
type Engine struct{}

// NewEngine создает новый движок котировок.
func NewEngine() *Engine {
	return &Engine{}
}

// SpotPrice рассчитывает мгновенную цену токена в SOL по виртуальным
// резервам. Формула: VirtualSolReserves / VirtualTokenReserves.
// При нулевых токен-резервах возвращает 0 — кривая не инициализирована
// или полностью исчерпана, это не фатальная ошибка.
func SpotPrice(reserves ReserveState) float64 {
	if reserves.VirtualTokenReserves == 0 {
		return 0
	}
	return reserves.VirtualSolReserves / reserves.VirtualTokenReserves
}

// Compute превращает снимок резервов и намерение сделки в котировку.
//
// Это spot-price аппроксимация: используется мгновенная маргинальная цена
// по инварианту constant-product без симуляции сдвига кривой на размер
// сделки. Допустимое проскальзывание — отдельная граница, которую клиент
// передает релееру ниже по потоку.
func (e *Engine) Compute(reserves *ReserveState, intent TradeIntent) (*Quote, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	if reserves == nil || reserves.VirtualSolReserves < 0 || reserves.VirtualTokenReserves < 0 {
		return nil, ErrMissingReserves
	}

	price := SpotPrice(*reserves)

	q := &Quote{
		Mint:           intent.Mint,
		Direction:      intent.Direction,
		EstimatedPrice: price,
		Timestamp:      reserves.CapturedAt,
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}

	switch intent.Direction {
	case DirectionBuy:
		// Amount — SOL на покупку; оцениваем количество токенов.
		q.EstimatedSolAmount = intent.Amount
		if price > 0 {
			q.EstimatedTokenAmount = intent.Amount / price
		}
	case DirectionSell:
		// Amount — токены на продажу; оцениваем выход SOL.
		q.EstimatedTokenAmount = intent.Amount
		q.EstimatedSolAmount = intent.Amount * price
	}

	return q, nil
}

// ComputeWithProviderFields дополняет котировку значениями priceImpact и
// fees, полученными от провайдера данных. Отсутствующие значения остаются
// нулевыми — движок их никогда не синтезирует.
func (e *Engine) ComputeWithProviderFields(reserves *ReserveState, intent TradeIntent, priceImpact, fees *float64) (*Quote, error) {
	q, err := e.Compute(reserves, intent)
	if err != nil {
		return nil, err
	}
	if priceImpact != nil {
		q.PriceImpact = *priceImpact
	}
	if fees != nil {
		q.Fees = *fees
	}
	return q, nil
}
