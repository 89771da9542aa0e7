// Package config holds the gateway's runtime configuration.
//
// Values are layered in this order, later layers winning:
//  1. Defaults()
//  2. Config file (.yaml/.yml/.json/.toml)
//  3. .env file entries
//  4. Process environment (OPENAI_* and OLLAMAPROXY_* variables)
//  5. api_key_file resolution
//
// CLI flags are applied by internal/cli after Resolve, then Validate runs.
package config

import "time"

// Config holds runtime parameters for the gateway. It is built once at
// startup and passed by value to the components that need it.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Upstream OpenAI-compatible service.
	UpstreamURL        string `json:"upstream_url" yaml:"upstream_url" toml:"upstream_url"`
	APIKey             string `json:"api_key" yaml:"api_key" toml:"api_key"`
	APIKeyFile         string `json:"api_key_file" yaml:"api_key_file" toml:"api_key_file"`
	UpstreamTimeoutSec int    `json:"upstream_timeout_sec" yaml:"upstream_timeout_sec" toml:"upstream_timeout_sec"`
	ConnectTimeoutSec  int    `json:"connect_timeout_sec" yaml:"connect_timeout_sec" toml:"connect_timeout_sec"`

	// ChatModel is the upstream model used for /api/chat. With PinChatModel
	// set, it replaces whatever model the caller asked for; otherwise it is
	// only used when the caller sends no model.
	ChatModel    string `json:"chat_model" yaml:"chat_model" toml:"chat_model"`
	PinChatModel bool   `json:"pin_chat_model" yaml:"pin_chat_model" toml:"pin_chat_model"`

	// EmbedModel and EmbedDimensions are always sent for /api/embed(dings);
	// callers cannot pick another model or vector size.
	EmbedModel      string `json:"embed_model" yaml:"embed_model" toml:"embed_model"`
	EmbedDimensions int    `json:"embed_dimensions" yaml:"embed_dimensions" toml:"embed_dimensions"`

	// CatalogFile replaces the built-in /api/tags catalog when set.
	CatalogFile     string `json:"catalog_file" yaml:"catalog_file" toml:"catalog_file"`
	ReportedVersion string `json:"reported_version" yaml:"reported_version" toml:"reported_version"`

	MaxBodyBytes       int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat          string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	RequestLog         string   `json:"request_log" yaml:"request_log" toml:"request_log"`
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	ShutdownTimeoutSec int      `json:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" toml:"shutdown_timeout_sec"`
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		Addr:               ":11434",
		UpstreamURL:        "https://api.openai.com/v1",
		UpstreamTimeoutSec: 90,
		ConnectTimeoutSec:  10,
		ChatModel:          "gpt-4o-mini",
		PinChatModel:       true,
		EmbedModel:         "text-embedding-3-small",
		EmbedDimensions:    768,
		ReportedVersion:    "0.6.0",
		MaxBodyBytes:       8 << 20,
		LogLevel:           "info",
		LogFormat:          "console",
		RequestLog:         "info",
		ShutdownTimeoutSec: 5,
	}
}

// UpstreamTimeout is the per-call upstream timeout.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSec) * time.Second
}

// ConnectTimeout bounds TCP dial and TLS handshake to the upstream.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

// ShutdownTimeout bounds graceful server shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
