// ================================
// File: internal/token/service.go
// ================================
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-gateway/internal/provider"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/quote"
)

// Fetcher — минимальный контракт цепочки провайдеров, нужный сервису.
type Fetcher interface {
	Fetch(ctx context.Context, resourcePath string, params map[string]string) (json.RawMessage, []provider.Failure, error)
}

// Service получает данные токена через fallback-цепочку провайдеров и
// нормализует резервы для движка котировок. Сервис конструируется явно и
// передается в обработчики — никаких глобальных синглтонов.
type Service struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewService создает новый сервис данных токена.
func NewService(fetcher Fetcher, logger *zap.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger.Named("token"),
	}
}

// GetToken запрашивает свежие сведения о токене. Снимок резервов строится
// заново на каждый вызов и не кэшируется здесь: кэширование метаданных —
// ответственность вызывающего слоя, и оно никогда не авторизует сделку.
func (s *Service) GetToken(ctx context.Context, mint string) (*Info, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	payload, failures, err := s.fetcher.Fetch(ctx, "coins/"+mintKey.String(), nil)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		s.logger.Warn("token fetched with degraded provider chain",
			zap.String("mint", mintKey.String()),
			zap.Int("failed_attempts", len(failures)))
	}

	var coin coinPayload
	if err := json.Unmarshal(payload, &coin); err != nil {
		// Провайдер ответил 2xx, но тело не разобрать — это сломанные
		// данные upstream, а не ошибка клиента.
		return nil, fmt.Errorf("decode coin payload: %v: %w", err, quote.ErrMissingReserves)
	}

	info := buildInfo(mintKey, &coin)
	s.logger.Debug("token info assembled",
		zap.String("mint", info.Mint),
		zap.String("symbol", info.Symbol),
		zap.Bool("complete", info.Complete),
		zap.Bool("has_reserves", info.Reserves != nil))
	return info, nil
}

// GetReserves возвращает только снимок резервов токена.
// Отсутствие резервов в ответе провайдера — ошибка MissingReserves.
func (s *Service) GetReserves(ctx context.Context, mint string) (*quote.ReserveState, error) {
	info, err := s.GetToken(ctx, mint)
	if err != nil {
		return nil, err
	}
	if info.Reserves == nil {
		return nil, fmt.Errorf("token %s: %w", mint, quote.ErrMissingReserves)
	}
	return info.Reserves, nil
}

// ListTrending запрашивает агрегированный листинг токенов.
func (s *Service) ListTrending(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	payload, _, err := s.fetcher.Fetch(ctx, "coins", map[string]string{
		"limit": fmt.Sprintf("%d", limit),
		"sort":  "market_cap",
		"order": "DESC",
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func buildInfo(mint solana.PublicKey, coin *coinPayload) *Info {
	info := &Info{
		Mint:         mint.String(),
		Name:         coin.Name,
		Symbol:       coin.Symbol,
		Description:  coin.Description,
		ImageURI:     coin.ImageURI,
		TotalSupply:  coin.TotalSupply,
		MarketCapSol: coin.MarketCap,
		USDMarketCap: coin.USDMarketCap,
		Complete:     coin.Complete,
	}
	if coin.CreatedTimestamp > 0 {
		info.CreatedAt = time.UnixMilli(coin.CreatedTimestamp)
	}

	if curve, err := BondingCurveAddress(mint); err == nil {
		info.BondingCurve = curve.String()
	}

	if coin.VirtualSolReserves != nil && coin.VirtualTokenReserves != nil {
		info.RawSolReserves = *coin.VirtualSolReserves
		info.RawTokenReserves = *coin.VirtualTokenReserves
		info.Reserves = &quote.ReserveState{
			VirtualSolReserves:   float64(*coin.VirtualSolReserves) / math.Pow10(solDecimals),
			VirtualTokenReserves: float64(*coin.VirtualTokenReserves) / math.Pow10(tokenDecimals),
			CapturedAt:           time.Now(),
		}
	}
	return info
}

// BondingCurveAddress выводит адрес bonding curve для минта.
// Сиды: литерал "bonding-curve" и байты минта.
func BondingCurveAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		PumpFunProgramID,
	)
	return addr, err
}
