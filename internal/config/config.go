// Package config reads service settings from the environment and an optional
// env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EmailProviderPostmark = "postmark"
	EmailProviderGmail    = "gmail"
	EmailProviderDev      = "dev"
)

var (
	ErrParsingConfig        = errors.New("failed to parse environment variables into config")
	ErrUnknownEmailProvider = errors.New("unknown email provider")
)

// Config holds provider credentials and choices. Nothing is required here:
// a missing key is reported by the provider that needs it, on first use.
type Config struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	EmailProvider        string `env:"EMAIL_PROVIDER" envDefault:"postmark"`
	FromEmail            string `env:"FROM_EMAIL"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	DevMailDir           string `env:"DEV_MAIL_DIR" envDefault:"./data/mail"`

	OAuthClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	OAuthClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
}

// Load parses the process environment. Values from envFile, when given, fill
// in variables the process environment does not set.
func Load(envFile string) (Config, error) {
	environ := env.ToMap(os.Environ())

	if envFile != "" {
		fileVals, err := godotenv.Read(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("godotenv.Read failed: %w", err)
		}
		for k, v := range fileVals {
			if _, ok := environ[k]; !ok {
				environ[k] = v
			}
		}
	}

	return Parse(environ)
}

// Parse builds a Config from an explicit variable set.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	switch cfg.EmailProvider {
	case EmailProviderPostmark, EmailProviderGmail, EmailProviderDev:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownEmailProvider, cfg.EmailProvider)
	}

	return cfg, nil
}
