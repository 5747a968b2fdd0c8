package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the server's environment surface. JWT_SECRET is the only
// value without a default: refusing to boot beats minting forgeable
// sessions.
type Config struct {
	Port          string `envconfig:"PORT"            default:"3000"`
	AppEnv        string `envconfig:"APP_ENV"         default:"development"`
	JWTSecret     string `envconfig:"JWT_SECRET"      required:"true"`
	JWTIssuer     string `envconfig:"JWT_ISSUER"      default:"learnex"`
	CORSOrigin    string `envconfig:"CORS_ORIGIN"     default:"http://localhost:5173"`
	DatabaseURL   string `envconfig:"DATABASE_URL"    default:"file:learnex.db?cache=shared&mode=rwc"`
	BcryptCost    int    `envconfig:"BCRYPT_COST"     default:"12"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"720"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c *Config) GetTokenExpiration() int {
	return c.TokenTTLHours
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c *Config) GetPasswordHashCost() int {
	return c.BcryptCost
}

// GetCookieSecure keeps the Secure attribute off in development so the
// cookie survives plain-HTTP localhost.
func (c *Config) GetCookieSecure() bool {
	return c.IsProduction()
}
