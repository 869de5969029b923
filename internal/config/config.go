package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Orderly   OrderlyConfig   `mapstructure:"orderly"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	ReadOnly bool   `mapstructure:"read_only"`
}

type AuthConfig struct {
	AdminKey       string `mapstructure:"admin_key"`
	AdminSecretKey string `mapstructure:"admin_secret_key"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type OrderlyConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	WSURL          string `mapstructure:"ws_url"`
	BrokerID       string `mapstructure:"broker_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

type RiskConfig struct {
	// Max notional per order in USDC. Zero disables the check.
	MaxOrderValue string `mapstructure:"max_order_value"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. ORDERLYGATE_ORDERLY_BASE_URL
	viper.SetEnvPrefix("orderlygate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.read_only", false)
	viper.SetDefault("orderly.base_url", "https://testnet-api.orderly.org")
	viper.SetDefault("orderly.ws_url", "wss://testnet-ws-evm.orderly.org/ws/stream")
	viper.SetDefault("orderly.broker_id", "honeypot")
	viper.SetDefault("orderly.timeout_seconds", 30)
	viper.SetDefault("rate_limit.qps", 10)
	viper.SetDefault("rate_limit.burst", 20)
	viper.SetDefault("risk.max_order_value", "0")
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
