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
		TrustProxy      bool          `yaml:"trust_proxy"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Providers struct {
		APIKey         string        `yaml:"api_key"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		Symbols        []string      `yaml:"symbols"`
	} `yaml:"providers"`
	Quota struct {
		MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`
		MaxRequestsPerDay    int `yaml:"max_requests_per_day"`
	} `yaml:"quota"`
	ClientLimiter struct {
		Limit      int           `yaml:"limit"`
		Interval   time.Duration `yaml:"interval"`
		MaxEntries int           `yaml:"max_entries"`
	} `yaml:"client_limiter"`
	Beginner struct {
		Enabled                  bool    `yaml:"enabled"`
		ConfidenceThreshold      float64 `yaml:"confidence_threshold"`
		AutoRiskEnabled          bool    `yaml:"auto_risk_enabled"`
		DefaultStopLossPercent   float64 `yaml:"default_stop_loss_percent"`
		DefaultTakeProfitPercent float64 `yaml:"default_take_profit_percent"`
		MinIndicatorAgreement    int     `yaml:"min_indicator_agreement"`
		MinExpectedValue         float64 `yaml:"min_expected_value"`
		Capital                  float64 `yaml:"capital"`
		RiskPerTradePercent      float64 `yaml:"risk_per_trade_percent"`
	} `yaml:"beginner"`
	Cache struct {
		PriceTTL  time.Duration `yaml:"price_ttl"`
		RegimeTTL time.Duration `yaml:"regime_ttl"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic"`
		TicksTopic   string   `yaml:"ticks_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
	} `yaml:"kafka"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
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

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		c.Providers.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Providers.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

// applyDefaults merges defaults once at load so call sites never re-derive them.
func (c *Config) applyDefaults() {
	if c.Quota.MaxRequestsPerMinute == 0 {
		c.Quota.MaxRequestsPerMinute = 5 // free-tier upstream quota
	}
	if c.Quota.MaxRequestsPerDay == 0 {
		c.Quota.MaxRequestsPerDay = 25
	}
	if c.ClientLimiter.Limit == 0 {
		c.ClientLimiter.Limit = 120
	}
	if c.ClientLimiter.Interval == 0 {
		c.ClientLimiter.Interval = time.Minute
	}
	if c.ClientLimiter.MaxEntries == 0 {
		c.ClientLimiter.MaxEntries = 10000
	}
	if c.Beginner.ConfidenceThreshold == 0 {
		c.Beginner.ConfidenceThreshold = 75
	}
	if c.Beginner.DefaultStopLossPercent == 0 {
		c.Beginner.DefaultStopLossPercent = 2
	}
	if c.Beginner.DefaultTakeProfitPercent == 0 {
		c.Beginner.DefaultTakeProfitPercent = 4
	}
	if c.Beginner.MinIndicatorAgreement == 0 {
		c.Beginner.MinIndicatorAgreement = 2
	}
	if c.Beginner.MinExpectedValue == 0 {
		c.Beginner.MinExpectedValue = 0.5
	}
	if c.Beginner.Capital == 0 {
		c.Beginner.Capital = 10000
	}
	if c.Beginner.RiskPerTradePercent == 0 {
		c.Beginner.RiskPerTradePercent = 1
	}
	if c.Cache.PriceTTL == 0 {
		c.Cache.PriceTTL = 15 * time.Second
	}
	if c.Cache.RegimeTTL == 0 {
		c.Cache.RegimeTTL = time.Minute
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
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
	if c.Providers.RequestTimeout == 0 {
		c.Providers.RequestTimeout = 10 * time.Second
	}
	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = 5 * time.Second
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = 20 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Providers.Symbols) == 0 {
		return fmt.Errorf("providers.symbols cannot be empty")
	}
	if c.Quota.MaxRequestsPerMinute < 1 || c.Quota.MaxRequestsPerDay < 1 {
		return fmt.Errorf("quota limits must be positive")
	}
	if c.Quota.MaxRequestsPerMinute > c.Quota.MaxRequestsPerDay {
		return fmt.Errorf("quota.max_requests_per_minute cannot exceed max_requests_per_day")
	}
	if c.Beginner.ConfidenceThreshold < 0 || c.Beginner.ConfidenceThreshold > 100 {
		return fmt.Errorf("beginner.confidence_threshold must be within [0,100]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.Stream.Enabled && c.Stream.WebSocketURL == "" {
		return fmt.Errorf("stream.websocket_url required when stream is enabled")
	}
	return nil
}
