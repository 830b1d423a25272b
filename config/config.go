package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every environment value the server consumes.
type Config struct {
	Port        string `env:"PORT,default=8000"`
	Environment string `env:"APP_ENV,default=development"`

	MongoURI string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB,default=maryland"`

	// Separate signing secrets keep client and admin tokens mutually invalid.
	JWTSecret      string `env:"JWT_SECRET,required"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,required"`

	// The single administrator identity lives in the environment, not the
	// account store.
	AdminEmail string `env:"ADMIN_EMAIL"`
	AdminPass  string `env:"ADMIN_PASS"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	EmailSender    string `env:"EMAIL_SENDER,default=onboarding@marylandpharmacy.com"`
	NotifyEmail    string `env:"NOTIFY_EMAIL"`

	// Base URL embedded in outbound email links (reset password, dashboard).
	ClientURL string `env:"CLIENT_URL,default=http://localhost:5173"`
}

// Load reads .env when present, then decodes the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in production mode. Outside
// production, 500 responses include a stack trace.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
