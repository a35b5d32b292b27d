// Package config holds the runtime configuration for the atende gateway:
// HTTP surface, WhatsApp bridge channel, completion providers, escalation
// behavior, and telemetry export.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Gateway    GatewayConfig    `json:"gateway"`
	Channels   ChannelsConfig   `json:"channels"`
	Providers  ProvidersConfig  `json:"providers"`
	Escalation EscalationConfig `json:"escalation"`
	Telemetry  TelemetryConfig  `json:"telemetry,omitempty"`
}

// GatewayConfig configures the operator HTTP API.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// AllowedOrigins is the CORS whitelist for the dashboard.
	// Empty means allow all (dev mode).
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// ChannelsConfig groups messaging channel settings.
type ChannelsConfig struct {
	WhatsApp WhatsAppConfig `json:"whatsapp"`
}

// WhatsAppConfig configures the WebSocket connection to the WhatsApp bridge
// process (whatsapp-web.js based); the bridge owns the actual protocol and
// the QR login flow.
type WhatsAppConfig struct {
	Enabled   bool     `json:"enabled"`
	BridgeURL string   `json:"bridge_url"`
	AllowFrom []string `json:"allow_from,omitempty"`
	// SendRate limits outbound bridge messages per second; SendBurst is the
	// limiter burst size. Zero values fall back to defaults.
	SendRate  float64 `json:"send_rate,omitempty"`
	SendBurst int     `json:"send_burst,omitempty"`
}

// ProvidersConfig holds completion provider credentials and endpoints.
// API keys are never read from config.json — env only.
type ProvidersConfig struct {
	OpenRouter ProviderConfig `json:"openrouter"`
	OpenAI     ProviderConfig `json:"openai"`
}

// ProviderConfig is a single OpenAI-compatible provider entry.
type ProviderConfig struct {
	APIKey  string `json:"-"`
	APIBase string `json:"api_base,omitempty"`
	Model   string `json:"model,omitempty"`
}

// EscalationConfig configures message classification and the fixed reply
// texts. These fields are hot-reloadable via the config watcher.
type EscalationConfig struct {
	// Keyword is the trigger substring; any message whose normalized body
	// contains it is routed to the human queue.
	Keyword      string `json:"keyword"`
	AckMessage   string `json:"ack_message"`
	ErrorMessage string `json:"error_message"`
	SystemPrompt string `json:"system_prompt"`
	// Provider names the registry entry used for AI replies.
	Provider string `json:"provider,omitempty"`
	// CompletionTimeout bounds a single AI call (Go duration string).
	CompletionTimeout string `json:"completion_timeout,omitempty"`
}

// CompletionTimeoutDuration parses CompletionTimeout, falling back to 60s.
func (e EscalationConfig) CompletionTimeoutDuration() time.Duration {
	if e.CompletionTimeout != "" {
		if d, err := time.ParseDuration(e.CompletionTimeout); err == nil && d > 0 {
			return d
		}
	}
	return 60 * time.Second
}

// TelemetryConfig configures optional OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`     // e.g. "localhost:4317"
	Protocol    string `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	ServiceName string `json:"service_name,omitempty"` // default "atende"
	Insecure    bool   `json:"insecure,omitempty"`
}

// HasAnyProvider reports whether at least one completion provider has an
// API key configured.
func (c *Config) HasAnyProvider() bool {
	return c.Providers.OpenRouter.APIKey != "" || c.Providers.OpenAI.APIKey != ""
}
