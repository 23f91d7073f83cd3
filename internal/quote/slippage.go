// ================================
// File: internal/quote/slippage.go
// ================================
package quote

// SlippageType определяет тип политики проскальзывания
type SlippageType string

const (
	// SlippageFixed — фиксированная нижняя граница выхода
	SlippageFixed SlippageType = "fixed"
	// SlippagePercent — процент допустимого отклонения от котировки
	SlippagePercent SlippageType = "percent"
	// SlippageNone — без нижней границы
	SlippageNone SlippageType = "none"
)

// SlippageConfig — политика проскальзывания, которой клиент ограничивает
// исполнение по котировке. Сама котировка — spot-price без учета сдвига
// кривой, поэтому граница применяется релеером ниже по потоку.
type SlippageConfig struct {
	Type SlippageType `json:"type"`
	// Value: для SlippageFixed — граница в тех же единицах, что выход
	// котировки; для SlippagePercent — процент (1.0 = 1%); для
	// SlippageNone игнорируется.
	Value float64 `json:"value"`
}

// Valid сообщает, задана ли политика корректно.
func (c SlippageConfig) Valid() bool {
	switch c.Type {
	case SlippageFixed:
		return c.Value >= 0
	case SlippagePercent:
		return c.Value >= 0 && c.Value < 100
	case SlippageNone:
		return true
	default:
		return false
	}
}

// MinAmountOut вычисляет минимальный допустимый выход по котировке в тех
// же целых единицах, что и сама котировка (токены для buy, SOL для sell).
// Ноль означает отсутствие границы.
func MinAmountOut(expectedAmount float64, config SlippageConfig) float64 {
	switch config.Type {
	case SlippageFixed:
		return config.Value
	case SlippagePercent:
		return expectedAmount * (1.0 - config.Value/100.0)
	default:
		return 0
	}
}
