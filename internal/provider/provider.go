// ===================================
// File: internal/provider/provider.go
// ===================================
package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout применяется к попытке провайдера, когда таймаут
// не задан конфигурацией.
const DefaultTimeout = 10 * time.Second

// ErrAllProvidersExhausted возвращается, когда ни один провайдер в цепочке
// не ответил успешно.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")

// Provider описывает один upstream-источник данных в цепочке fallback.
type Provider struct {
	Name    string            `json:"name"`
	BaseURL string            `json:"baseUrl"`
	Headers map[string]string `json:"headers,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty"`
	// HealthPath — относительный путь для health-пробы класса провайдера.
	// Пустое значение пробует корень BaseURL.
	HealthPath string `json:"healthPath,omitempty"`
}

// URL собирает полный URL ресурса относительно BaseURL провайдера.
func (p Provider) URL(resourcePath string) string {
	base := strings.TrimRight(p.BaseURL, "/")
	if resourcePath == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(resourcePath, "/")
}

func (p Provider) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

// Failure — результат одной неудачной попытки провайдера.
type Failure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// ExhaustedError агрегирует неудачи всех провайдеров одного fallback-цикла.
type ExhaustedError struct {
	Resource string
	Failures []Failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d providers failed for %s", len(e.Failures), e.Resource)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrAllProvidersExhausted
}
