package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	KIS struct {
		BaseURL          string        `yaml:"base_url"`
		RealtimeURL      string        `yaml:"realtime_url"`
		AppKey           string        `yaml:"app_key"`
		AppSecret        string        `yaml:"app_secret"`
		CANO             string        `yaml:"cano"`
		AcntPrdtCd       string        `yaml:"acnt_prdt_cd"`
		CustType         string        `yaml:"custtype"`
		Mode             string        `yaml:"mode"`               // real or virtual
		Mock             bool          `yaml:"mock"`               // deterministic, network-free gateway
		TokenTTLStrategy string        `yaml:"token_ttl_strategy"` // short (24h) or long (90d)
		Timeout          time.Duration `yaml:"timeout"`            // per-call HTTP timeout
		RateLimit        struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"kis"`
	Cache struct {
		QuotesTTL time.Duration `yaml:"quotes_ttl"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	OrderEvents struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		Compression  string        `yaml:"compression"`
		RequiredAcks int           `yaml:"required_acks"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		MaxAttempts  int           `yaml:"max_attempts"`
	} `yaml:"order_events"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. The KIS_* names match the original deployment surface.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides configuration from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("KIS_BASE_URL"); v != "" {
		c.KIS.BaseURL = v
	}
	if v := os.Getenv("KIS_REALTIME_URL"); v != "" {
		c.KIS.RealtimeURL = v
	}
	if v := os.Getenv("KIS_APP_KEY"); v != "" {
		c.KIS.AppKey = v
	}
	if v := os.Getenv("KIS_APP_SECRET"); v != "" {
		c.KIS.AppSecret = v
	}
	if v := os.Getenv("KIS_CANO"); v != "" {
		c.KIS.CANO = v
	}
	if v := os.Getenv("KIS_ACNT_PRDT_CD"); v != "" {
		c.KIS.AcntPrdtCd = v
	}
	if v := os.Getenv("KIS_CUSTTYPE"); v != "" {
		c.KIS.CustType = v
	}
	if v := os.Getenv("KIS_MODE"); v != "" {
		c.KIS.Mode = v
	}
	if v := os.Getenv("KIS_MOCK"); v != "" {
		c.KIS.Mock = v == "1"
	}
	if v := os.Getenv("TOKEN_TTL_STRATEGY"); v != "" {
		c.KIS.TokenTTLStrategy = v
	}
	if v := os.Getenv("ORDER_EVENT_BROKERS"); v != "" {
		c.OrderEvents.Brokers = strings.Split(v, ",")
		c.OrderEvents.Enabled = true
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "console"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.KIS.BaseURL == "" {
		c.KIS.BaseURL = "https://openapivts.koreainvestment.com:29443"
	}
	if c.KIS.RealtimeURL == "" {
		c.KIS.RealtimeURL = "ws://ops.koreainvestment.com:21000"
	}
	if c.KIS.CustType == "" {
		c.KIS.CustType = "P"
	}
	if c.KIS.Mode == "" {
		c.KIS.Mode = "virtual"
	}
	if c.KIS.TokenTTLStrategy == "" {
		c.KIS.TokenTTLStrategy = "short"
	}
	if c.KIS.Timeout == 0 {
		c.KIS.Timeout = 10 * time.Second
	}
	if c.KIS.RateLimit.Capacity == 0 {
		c.KIS.RateLimit.Capacity = 20
	}
	if c.KIS.RateLimit.RefillPerSec == 0 {
		c.KIS.RateLimit.RefillPerSec = 20
	}
	if c.Cache.QuotesTTL == 0 {
		c.Cache.QuotesTTL = 30 * time.Second
	}
	if c.Cache.Redis.Host == "" {
		c.Cache.Redis.Host = "localhost"
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.OrderEvents.Topic == "" {
		c.OrderEvents.Topic = "kis.orders.submitted"
	}
	if c.OrderEvents.Compression == "" {
		c.OrderEvents.Compression = "gzip"
	}
	if c.OrderEvents.RequiredAcks == 0 {
		c.OrderEvents.RequiredAcks = -1
	}
	if c.OrderEvents.MaxAttempts == 0 {
		c.OrderEvents.MaxAttempts = 3
	}
	if c.OrderEvents.WriteTimeout == 0 {
		c.OrderEvents.WriteTimeout = 10 * time.Second
	}
	if c.OrderEvents.ReadTimeout == 0 {
		c.OrderEvents.ReadTimeout = 10 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.KIS.Mode != "real" && c.KIS.Mode != "virtual" {
		return fmt.Errorf("kis.mode must be 'real' or 'virtual', got '%s'", c.KIS.Mode)
	}
	if c.KIS.TokenTTLStrategy != "short" && c.KIS.TokenTTLStrategy != "long" {
		return fmt.Errorf("kis.token_ttl_strategy must be 'short' or 'long', got '%s'", c.KIS.TokenTTLStrategy)
	}
	if !c.KIS.Mock && c.KIS.BaseURL == "" {
		return fmt.Errorf("kis.base_url is required in live mode")
	}
	if c.OrderEvents.Enabled && len(c.OrderEvents.Brokers) == 0 {
		return fmt.Errorf("order_events.brokers cannot be empty when enabled")
	}
	return nil
}
