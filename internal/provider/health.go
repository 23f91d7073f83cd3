// =================================
// File: internal/provider/health.go
// =================================
package provider

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status — агрегированное состояние всех классов провайдеров.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusError    Status = "error"
)

// Состояние одного класса провайдеров в отчете.
const (
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
)

// Health — отчет health-агрегации по классам провайдеров.
type Health struct {
	Status    Status            `json:"status"`
	Providers map[string]string `json:"providers"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// CheckHealth пробует легкий probe против каждого класса провайдеров.
// Пробы независимы и read-only, поэтому выполняются параллельно;
// классификация считается после завершения всех проб.
func (f *Fetcher) CheckHealth(ctx context.Context, classes []Provider) Health {
	states := make([]bool, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range classes {
		g.Go(func() error {
			states[i] = f.probe(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	health := Health{
		Providers: make(map[string]string, len(classes)),
		CheckedAt: time.Now(),
	}
	reachable := 0
	for i, p := range classes {
		if states[i] {
			health.Providers[p.Name] = StateConnected
			reachable++
		} else {
			health.Providers[p.Name] = StateDisconnected
		}
	}

	switch {
	case len(classes) == 0 || reachable == 0:
		health.Status = StatusError
	case reachable == len(classes):
		health.Status = StatusOK
	default:
		health.Status = StatusDegraded
	}

	f.logger.Debug("health aggregation completed",
		zap.String("status", string(health.Status)),
		zap.Int("reachable", reachable),
		zap.Int("classes", len(classes)))
	return health
}

// probe выполняет один health-запрос; достижимость = любой 2xx ответ.
func (f *Fetcher) probe(ctx context.Context, p Provider) bool {
	cctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, p.URL(p.HealthPath), nil)
	if err != nil {
		return false
	}
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("health probe failed",
			zap.String("provider", p.Name),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	f.logger.Debug("health probe completed",
		zap.String("provider", p.Name),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.Bool("reachable", ok))
	return ok
}
