package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinAmountOut(t *testing.T) {
	expected := 33333.0

	assert.Equal(t, 500.0, MinAmountOut(expected, SlippageConfig{Type: SlippageFixed, Value: 500}))
	// 1% проскальзывания: 99% от ожидаемого выхода.
	assert.InDelta(t, 32999.67, MinAmountOut(expected, SlippageConfig{Type: SlippagePercent, Value: 1.0}), 1e-9)
	assert.Equal(t, 0.0, MinAmountOut(expected, SlippageConfig{Type: SlippageNone}))
	assert.Equal(t, 0.0, MinAmountOut(expected, SlippageConfig{Type: "bogus"}))
}

func TestSlippageConfig_Valid(t *testing.T) {
	assert.True(t, SlippageConfig{Type: SlippagePercent, Value: 1.0}.Valid())
	assert.True(t, SlippageConfig{Type: SlippageNone}.Valid())
	assert.False(t, SlippageConfig{Type: SlippagePercent, Value: 100}.Valid())
	assert.False(t, SlippageConfig{Type: SlippagePercent, Value: -1}.Valid())
	assert.False(t, SlippageConfig{Type: "bogus"}.Valid())
}
