package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the functions server
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Profiles ProfilesConfig `mapstructure:"profiles"`
	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Site     SiteConfig     `mapstructure:"site"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SupabaseConfig holds identity provider configuration.
// The two keys are deliberately separate: AnonKey is only ever paired with a
// caller's own token, ServiceRoleKey is only used for administrative calls.
type SupabaseConfig struct {
	URL            string `mapstructure:"url"`
	AnonKey        string `mapstructure:"anon_key"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
}

// ProfilesConfig selects where the admin flag is read from
type ProfilesConfig struct {
	// Source is "rest" (PostgREST with the caller's token) or "postgres"
	Source string `mapstructure:"source"`
	Table  string `mapstructure:"table"`
}

// DatabaseConfig holds the direct Postgres connection used when
// profiles.source is "postgres"
type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the email provider to use: "resend", "gmail" or "ses"
	Provider string `mapstructure:"provider"`
	// DefaultFrom is used when a request carries no sender override
	DefaultFrom string `mapstructure:"default_from"`
	// ResetFrom is always used for password reset emails
	ResetFrom string            `mapstructure:"reset_from"`
	AppName   string            `mapstructure:"app_name"`
	Resend    ResendEmailConfig `mapstructure:"resend"`
	Gmail     GmailEmailConfig  `mapstructure:"gmail"`
	SES       SESEmailConfig    `mapstructure:"ses"`
}

// ResendEmailConfig holds Resend API configuration
type ResendEmailConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GmailEmailConfig holds Gmail API configuration
type GmailEmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	// SenderAddress is the mailbox that is impersonated
	SenderAddress string `mapstructure:"sender_address"`
}

// SESEmailConfig holds Amazon SES v2 configuration.
// Empty keys fall back to the default AWS credential chain.
type SESEmailConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// SiteConfig holds public website configuration
type SiteConfig struct {
	// URL is the public base URL used to build the password reset redirect
	URL string `mapstructure:"url"`
	// AuthPath is appended to URL for the password reset redirect
	AuthPath string `mapstructure:"auth_path"`
}

// HTTPConfig holds outbound HTTP client configuration
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// ResetRedirectURL returns the page users land on after following a reset link
func (c SiteConfig) ResetRedirectURL() string {
	base := strings.TrimRight(c.URL, "/")
	if base == "" {
		base = DefaultSiteURL
	}
	return base + c.AuthPath
}

// DefaultSiteURL is the local development fallback for site.url
const DefaultSiteURL = "http://localhost:5173"

// DefaultSender is the branded sender address
const DefaultSender = "HaDirot <noreply@hadirot.com>"

// envAliases maps config keys to the conventional variable names set by the
// hosting platform, in addition to the HADIROT_ prefixed form.
var envAliases = map[string]string{
	"supabase.url":              "SUPABASE_URL",
	"supabase.anon_key":         "SUPABASE_ANON_KEY",
	"supabase.service_role_key": "SUPABASE_SERVICE_ROLE_KEY",
	"database.url":              "SUPABASE_DB_URL",
	"email.resend.api_key":      "RESEND_API_KEY",
	"site.url":                  "PUBLIC_SITE_URL",
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is loaded first when present.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	if len(paths) > 0 && paths[0] != "" {
		v.SetConfigFile(paths[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/hadirot")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("HADIROT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envAliases {
		if err := v.BindEnv(key, "HADIROT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option values that have a closed set of choices.
// Missing credentials are not an error here: the affected handler answers
// 500 instead, so the server still serves the functions that are configured.
func (c *Config) Validate() error {
	switch c.Email.Provider {
	case "resend", "gmail", "ses":
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}

	switch c.Profiles.Source {
	case "rest":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required when profiles.source is postgres")
		}
	default:
		return fmt.Errorf("unknown profiles source %q", c.Profiles.Source)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Identity provider defaults
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("supabase.service_role_key", "")

	v.SetDefault("profiles.source", "rest")
	v.SetDefault("profiles.table", "profiles")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 5)

	// Email defaults
	v.SetDefault("email.provider", "resend")
	v.SetDefault("email.default_from", DefaultSender)
	v.SetDefault("email.reset_from", DefaultSender)
	v.SetDefault("email.app_name", "HaDirot")
	v.SetDefault("email.resend.api_key", "")
	v.SetDefault("email.resend.base_url", "https://api.resend.com")
	v.SetDefault("email.gmail.sender_address", "")
	v.SetDefault("email.ses.region", "us-east-1")

	// Site defaults
	v.SetDefault("site.url", DefaultSiteURL)
	v.SetDefault("site.auth_path", "/auth")

	// Outbound HTTP defaults
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.max_retries", 2)
}
