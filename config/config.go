// Package config loads runtime configuration from environment variables.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type ServerConf struct {
	Port string
	Env  string
}

type MongoConf struct {
	URI      string
	Database string
}

type JWTConf struct {
	Secret    string
	ExpiresIn time.Duration
}

type EmailConf struct {
	APIKey string
	Sender string
}

type Config struct {
	Server ServerConf
	Mongo  MongoConf
	JWT    JWTConf
	Email  EmailConf
}

// Development reports whether the server runs in development mode.
func (c *Config) Development() bool {
	return c.Server.Env != "production"
}

// Load reads configuration from the environment, applying defaults for
// everything except the JWT secret, which has no safe default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "storefront")
	v.SetDefault("JWT_EXPIRES_HOURS", 24)
	v.SetDefault("EMAIL_SENDER", "no-reply@storefront.local")

	cfg := &Config{
		Server: ServerConf{
			Port: v.GetString("PORT"),
			Env:  v.GetString("APP_ENV"),
		},
		Mongo: MongoConf{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
		},
		JWT: JWTConf{
			Secret:    v.GetString("JWT_SECRET"),
			ExpiresIn: time.Duration(v.GetInt("JWT_EXPIRES_HOURS")) * time.Hour,
		},
		Email: EmailConf{
			APIKey: v.GetString("SENDGRID_API_KEY"),
			Sender: v.GetString("EMAIL_SENDER"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}
