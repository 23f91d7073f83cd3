package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-gateway/internal/token"
)

func TestTokenCache_GetSet(t *testing.T) {
	c := NewTokenCache(time.Minute, zap.NewNop())

	_, ok := c.Get(testMint)
	assert.False(t, ok)

	c.Set(testMint, &token.Info{Mint: testMint, Symbol: "TEST"})
	info, ok := c.Get(testMint)
	assert.True(t, ok)
	assert.Equal(t, "TEST", info.Symbol)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestTokenCache_Expiry(t *testing.T) {
	c := NewTokenCache(10*time.Millisecond, zap.NewNop())
	c.Set(testMint, &token.Info{Mint: testMint})

	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get(testMint)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Purge())
}
