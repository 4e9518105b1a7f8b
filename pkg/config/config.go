package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for nudge-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// AI provider configuration
	AI AIConfig `yaml:"ai"`

	// Shopify integration configuration
	Shopify ShopifyConfig `yaml:"shopify"`

	// Twilio SMS gateway configuration (optional)
	Twilio TwilioConfig `yaml:"twilio"`

	// SendGrid transactional email configuration (optional)
	SendGrid SendGridConfig `yaml:"sendgrid"`

	// TokenEncryptionKey enables encryption at rest for Shopify access
	// tokens. Base64-encoded 32-byte key or any passphrase; empty disables
	// encryption.
	TokenEncryptionKey string `yaml:"-" env:"TOKEN_ENCRYPTION_KEY"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"nudge"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"nudge_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// AIConfig holds the language-model provider configuration.
// Exactly one provider is active per process; the API key for the selected
// provider is required and the server fails to start without it.
type AIConfig struct {
	// Provider selects the completion API: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`

	// BaseURL overrides the provider endpoint (useful for proxies/local models).
	BaseURL string `yaml:"base_url" env:"AI_BASE_URL" env-default:""`

	// Model is the completion model name.
	Model string `yaml:"model" env:"AI_MODEL" env-default:"gpt-5"`

	// MaxResponseTokens caps the assistant reply length.
	MaxResponseTokens int `yaml:"max_response_tokens" env:"AI_MAX_RESPONSE_TOKENS" env-default:"300"`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// APIKey returns the credential for the selected provider.
func (c *AIConfig) APIKey() string {
	if c.Provider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// ShopifyConfig holds Shopify OAuth app credentials.
type ShopifyConfig struct {
	ClientID     string `yaml:"client_id" env:"SHOPIFY_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"SHOPIFY_CLIENT_SECRET"` // Secret - not in YAML
	Scopes       string `yaml:"scopes" env:"SHOPIFY_SCOPES" env-default:"read_products,read_orders,read_customers,write_checkouts"`
}

// IsConfigured returns true if Shopify OAuth credentials are present.
func (c *ShopifyConfig) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// TwilioConfig holds SMS gateway credentials.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_SID" env-default:""`
	AuthToken  string `yaml:"-" env:"TWILIO_TOKEN"` // Secret - not in YAML
	FromNumber string `yaml:"from_number" env:"TWILIO_FROM_NUMBER" env-default:""`
}

// IsConfigured returns true if SMS sending is possible.
func (c *TwilioConfig) IsConfigured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// SendGridConfig holds transactional email credentials.
type SendGridConfig struct {
	APIKey    string `yaml:"-" env:"SENDGRID_API_KEY"` // Secret - not in YAML
	FromEmail string `yaml:"from_email" env:"SENDGRID_FROM_EMAIL" env-default:"noreply@nudge.ai"`
}

// IsConfigured returns true if email sending is possible.
func (c *SendGridConfig) IsConfigured() bool {
	return c.APIKey != ""
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Configuration is resolved exactly once here; a required credential missing at
// startup is a fatal error rather than a deferred first-use failure.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported ai provider %q (want openai or anthropic)", c.AI.Provider)
	}

	if c.AI.APIKey() == "" {
		return fmt.Errorf("missing API key for ai provider %q", c.AI.Provider)
	}

	if c.AI.MaxResponseTokens <= 0 {
		return fmt.Errorf("ai max_response_tokens must be positive, got %d", c.AI.MaxResponseTokens)
	}

	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
