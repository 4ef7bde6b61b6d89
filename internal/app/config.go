package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (CAFE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	CatalogPath string `default:"products.json" usage:"Path to the products.json catalog file" flag:"catalog-path"`
	DatabaseURL string `usage:"PostgreSQL URL; when set, the catalog is loaded from the database instead of the JSON file" flag:"database-url"`
	Push        PushConfig
	Mail        MailConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// PushConfig configures the chat-bot push channel. Empty BotToken or ChatID
// disables the channel; sends are then soft-skipped.
type PushConfig struct {
	BotToken string        `usage:"Bot token for the push channel (CAFE_PUSH_BOTTOKEN)" flag:"push-bot-token"`
	ChatID   string        `usage:"Chat id receiving operator notifications" flag:"push-chat-id"`
	APIBase  string        `default:"https://api.telegram.org" usage:"Bot API base URL" flag:"push-api-base"`
	Timeout  time.Duration `default:"10s" usage:"Per-send push timeout" flag:"push-timeout"`
}

// MailConfig configures the transactional email channel. An empty Host or
// Username disables the channel.
type MailConfig struct {
	Host     string `usage:"SMTP host; empty disables the email channel" flag:"mail-host"`
	Port     int    `default:"587" usage:"SMTP port" flag:"mail-port"`
	Username string `usage:"SMTP username" flag:"mail-username"`
	Password string `usage:"SMTP password" flag:"mail-password"`
	From     string `usage:"Sender address for transactional email" flag:"mail-from"`
}

// SessionConfig controls session cookies and cart lifetime.
type SessionConfig struct {
	CookieName    string        `default:"session_id" usage:"Session cookie name" flag:"session-cookie"`
	TTL           time.Duration `default:"2h" usage:"Idle time before a session's cart is dropped" flag:"session-ttl"`
	SweepInterval time.Duration `default:"10m" usage:"How often idle carts are swept" flag:"session-sweep"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CAFE",
		Files:     []string{"config.yaml", "/etc/cafe/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's CAFE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
