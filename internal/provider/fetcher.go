// ==================================
// File: internal/provider/fetcher.go
// ==================================
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Fetcher обходит упорядоченную цепочку провайдеров и возвращает первый
// успешный ответ. Провайдеры пробуются строго последовательно: гонка
// провайдеров создавала бы лишнюю нагрузку на платные upstream API.
type Fetcher struct {
	providers []Provider
	client    *http.Client
	logger    *zap.Logger
}

// NewFetcher создает Fetcher с заданной цепочкой провайдеров.
// Провайдеры пробуются в порядке объявления; адаптивной маршрутизации
// по истории успехов нет.
func NewFetcher(providers []Provider, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		providers: providers,
		// Таймаут на каждую попытку задается контекстом per-provider,
		// а не транспортом.
		client: &http.Client{},
		logger: logger.Named("fetcher"),
	}
}

// Providers возвращает копию сконфигурированной цепочки.
func (f *Fetcher) Providers() []Provider {
	out := make([]Provider, len(f.providers))
	copy(out, f.providers)
	return out
}

// Fetch запрашивает JSON-ресурс у цепочки провайдеров.
//
// Успехом считается HTTP 2xx с непустым телом; первый успех завершает
// обход без обращения к оставшимся провайдерам. Каждая неудачная попытка
// (сетевая ошибка, таймаут, не-2xx, пустое тело) записывается в failures,
// после чего обход немедленно продолжается — без пауз и без повторов того
// же провайдера в рамках одного цикла.
//
// Общий дедлайн цепочки ограничивается контекстом вызывающего.
func (f *Fetcher) Fetch(ctx context.Context, resourcePath string, params map[string]string) (json.RawMessage, []Failure, error) {
	if len(f.providers) == 0 {
		return nil, nil, &ExhaustedError{Resource: resourcePath}
	}

	var failures []Failure
	for _, p := range f.providers {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{Provider: p.Name, Reason: err.Error()})
			break
		}

		payload, err := f.attempt(ctx, p, resourcePath, params)
		if err != nil {
			failures = append(failures, Failure{Provider: p.Name, Reason: err.Error()})
			continue
		}
		return payload, failures, nil
	}

	f.logger.Warn("all providers exhausted",
		zap.String("resource", resourcePath),
		zap.Int("attempts", len(failures)))
	return nil, failures, &ExhaustedError{Resource: resourcePath, Failures: failures}
}

// attempt выполняет один запрос к провайдеру с его собственным таймаутом.
func (f *Fetcher) attempt(ctx context.Context, p Provider, resourcePath string, params map[string]string) (json.RawMessage, error) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	reqURL := p.URL(resourcePath)
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		reqURL += "?" + q.Encode()
	}

	start := time.Now()
	payload, err := f.doRequest(cctx, p, reqURL)
	latency := time.Since(start)

	if err != nil {
		f.logger.Debug("provider attempt failed",
			zap.String("provider", p.Name),
			zap.String("resource", resourcePath),
			zap.Duration("latency", latency),
			zap.Error(err))
		return nil, err
	}

	f.logger.Debug("provider attempt succeeded",
		zap.String("provider", p.Name),
		zap.String("resource", resourcePath),
		zap.Duration("latency", latency),
		zap.Int("bytes", len(payload)))
	return payload, nil
}

func (f *Fetcher) doRequest(ctx context.Context, p Provider, reqURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	return body, nil
}
