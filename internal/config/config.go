package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Required
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	IdentityJWTKey     string `envconfig:"IDENTITY_JWT_KEY" required:"true"`
	WebhookSecret      string `envconfig:"WEBHOOK_SECRET" required:"true"`
	ClientURL          string `envconfig:"CLIENT_URL" required:"true"`

	// Server
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	DBMigrate   bool   `envconfig:"DB_MIGRATE" default:"false"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	// User directory sync
	UsernameMaxAttempts   int    `envconfig:"USERNAME_MAX_ATTEMPTS" default:"100"`
	GCPProjectID          string `envconfig:"GCP_PROJECT_ID"`
	PubSubUserEventsTopic string `envconfig:"PUBSUB_USER_EVENTS_TOPIC"`

	// Course images (optional; uploads are disabled without a bucket)
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`
}

// ClientConfig is what coursectl needs to reach the catalog API.
type ClientConfig struct {
	ClientURL string `envconfig:"CLIENT_URL" required:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envconfig only checks that required keys are set, not that they are non-empty.
func (c *Config) validate() error {
	required := map[string]string{
		"DB_CONNECTION_STRING": c.DBConnectionString,
		"IDENTITY_JWT_KEY":     c.IdentityJWTKey,
		"WEBHOOK_SECRET":       c.WebhookSecret,
		"CLIENT_URL":           c.ClientURL,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("required key %s is empty", key)
		}
	}
	if c.UsernameMaxAttempts < 1 {
		return fmt.Errorf("USERNAME_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	if cfg.ClientURL == "" {
		return nil, fmt.Errorf("required key CLIENT_URL is empty")
	}
	return &cfg, nil
}

// WebhookSecretIsResource reports whether WEBHOOK_SECRET names a Secret Manager
// version rather than holding the secret itself.
func (c *Config) WebhookSecretIsResource() bool {
	return strings.HasPrefix(c.WebhookSecret, "projects/") && strings.Contains(c.WebhookSecret, "/secrets/")
}

// ImageUploadsEnabled reports whether course image uploads can be presigned.
func (c *Config) ImageUploadsEnabled() bool {
	return c.S3Bucket != ""
}
