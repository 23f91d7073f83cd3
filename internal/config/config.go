// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderConfig описывает один upstream-источник данных в цепочке fallback.
type ProviderConfig struct {
	Name       string            `mapstructure:"name"`
	BaseURL    string            `mapstructure:"base_url"`
	Headers    map[string]string `mapstructure:"headers"`
	TimeoutMs  int               `mapstructure:"timeout_ms"`
	HealthPath string            `mapstructure:"health_path"`
}

// Timeout возвращает таймаут попытки провайдера.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

type Config struct {
	ListenAddr    string           `mapstructure:"listen_addr"`
	Providers     []ProviderConfig `mapstructure:"providers"`
	RelayerURL    string           `mapstructure:"relayer_url"`
	RelayerAPIKey string           `mapstructure:"relayer_api_key"`
	CacheTTLMs    int              `mapstructure:"cache_ttl_ms"`
	LogFile       string           `mapstructure:"log_file"`
	DebugLogging  bool             `mapstructure:"debug_logging"`
}

const (
	DefaultListenAddr        = ":8080"
	DefaultProviderTimeoutMs = 10000
	DefaultCacheTTLMs        = 15000
	DefaultLogFile           = "gateway.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":  DefaultListenAddr,
		"cache_ttl_ms": DefaultCacheTTLMs,
		"log_file":     DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	applyProviderDefaults(&cfg)

	return &cfg, validateConfig(&cfg)
}

func applyProviderDefaults(cfg *Config) {
	for i := range cfg.Providers {
		if cfg.Providers[i].TimeoutMs <= 0 {
			cfg.Providers[i].TimeoutMs = DefaultProviderTimeoutMs
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("missing listen_addr in configuration")
	}
	if len(cfg.Providers) == 0 {
		return errors.New("providers list is empty")
	}
	for _, p := range cfg.Providers {
		if p.Name == "" {
			return errors.New("provider with empty name")
		}
		if err := validateURL(p.BaseURL, "http"); err != nil {
			return errors.New("invalid provider base_url for " + p.Name)
		}
	}
	if cfg.RelayerURL != "" {
		if err := validateURL(cfg.RelayerURL, "http"); err != nil {
			return errors.New("invalid relayer_url")
		}
	}
	if cfg.CacheTTLMs < 0 {
		return errors.New("invalid cache_ttl_ms")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	if rawURL == "" {
		return errors.New("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("PUMP_GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envAddr := v.GetString("LISTEN_ADDR"); envAddr != "" {
		cfg.ListenAddr = envAddr
	}
	if envRelayer := v.GetString("RELAYER_URL"); envRelayer != "" {
		cfg.RelayerURL = envRelayer
	}
	// API-ключ релеера не хранится в конфиг-файле.
	if envKey := v.GetString("RELAYER_API_KEY"); envKey != "" {
		cfg.RelayerAPIKey = envKey
	}
	return nil
}
