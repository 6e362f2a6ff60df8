// Package config loads market and server parameters from a config file
// plus environment overrides, using viper in the common
// file-plus-env-prefix shape.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// MarketConfig holds the lot/tick sizing and capacity limits for one
// trading pair.
type MarketConfig struct {
	BaseLotSize   uint64 `mapstructure:"base_lot_size"`
	QuoteTickSize uint64 `mapstructure:"quote_tick_size"`
	MaxOrders     int    `mapstructure:"max_orders"`
	MaxEvents     int    `mapstructure:"max_events"`
}

// ServerConfig holds the wire server's bind parameters.
type ServerConfig struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	Workers     int    `mapstructure:"workers"`
}

// Config is the whole parsed configuration surface.
type Config struct {
	Market MarketConfig `mapstructure:"market"`
	Server ServerConfig `mapstructure:"server"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("market.base_lot_size", 1_000_000)
	v.SetDefault("market.quote_tick_size", 1_000)
	v.SetDefault("market.max_orders", 1024)
	v.SetDefault("market.max_events", 256)
	v.SetDefault("server.listen_addr", ":9090")
	v.SetDefault("server.metrics_addr", ":9091")
	v.SetDefault("server.workers", 8)
}

// Load reads configPath (if non-empty) plus CLOB_-prefixed environment
// variables, falling back to defaults for anything neither sets.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("CLOB")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
