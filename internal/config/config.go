package config

import "time"

// Config holds server configuration values.
type Config struct {
	TCPAddr           string        `mapstructure:"tcp_addr" yaml:"tcp_addr"`
	HTTPAddr          string        `mapstructure:"http_addr" yaml:"http_addr"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	BcryptCost        int           `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	MaxClientsPerChannel int `mapstructure:"max_clients_per_channel" yaml:"max_clients_per_channel"`
	HistorySize          int `mapstructure:"history_size" yaml:"history_size"`
	OutboundBuffer       int `mapstructure:"outbound_buffer" yaml:"outbound_buffer"`

	MaxLineBytes       int           `mapstructure:"max_line_bytes" yaml:"max_line_bytes"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		TCPAddr:              ":6667",
		HTTPAddr:             ":8080",
		LogLevel:             "info",
		DatabasePath:         ":memory:",
		BcryptCost:           10,
		ReadHeaderTimeout:    5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		MaxClientsPerChannel: 10,
		HistorySize:          5,
		OutboundBuffer:       64,
		MaxLineBytes:         4096,
		IdleTimeout:          5 * time.Minute,
		RateLimitPerMinute:   120,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.TCPAddr != "" {
		c.TCPAddr = other.TCPAddr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.BcryptCost != 0 {
		c.BcryptCost = other.BcryptCost
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.MaxClientsPerChannel != 0 {
		c.MaxClientsPerChannel = other.MaxClientsPerChannel
	}
	if other.HistorySize != 0 {
		c.HistorySize = other.HistorySize
	}
	if other.OutboundBuffer != 0 {
		c.OutboundBuffer = other.OutboundBuffer
	}
	if other.MaxLineBytes != 0 {
		c.MaxLineBytes = other.MaxLineBytes
	}
	if other.IdleTimeout != 0 {
		c.IdleTimeout = other.IdleTimeout
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
}
