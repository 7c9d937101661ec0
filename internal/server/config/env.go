package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig lists the environment variables understood by the server.
// Unset variables leave the corresponding Config field untouched.
type EnvConfig struct {
	EndpointAddrHTTP        string        `envconfig:"HTTP_ADDR"`
	EndpointAddrGRPC        string        `envconfig:"GRPC_ADDR"`
	DatabaseDSN             string        `envconfig:"DATABASE_DSN"`
	SecretKey               string        `envconfig:"JWT_SECRET_KEY"`
	SessionIssuer           string        `envconfig:"SESSION_ISSUER"`
	SessionValidityDuration time.Duration `envconfig:"SESSION_TTL"`
	CORSAllowedOrigin       string        `envconfig:"CORS_ORIGIN"`
	LogLevel                string        `envconfig:"LOG_LEVEL"`
	LogBackend              string        `envconfig:"LOG_BACKEND"`
	AuthRateLimit           float64       `envconfig:"AUTH_RATE_LIMIT"`
	AuthRateBurst           int           `envconfig:"AUTH_RATE_BURST"`
}

// parseEnv loads the dotenv file given by -env (or ./.env when present),
// then overlays environment variables onto config. Variables already set in
// the process environment win over the dotenv file.
func parseEnv(config *Config, args []string) {
	if err := loadDotEnv(flagx.EnvFilePath(args)); err != nil {
		panic(err)
	}

	var e EnvConfig
	if err := envconfig.Process("", &e); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	setString(&config.SessionIssuer, e.SessionIssuer)
	setString(&config.CORSAllowedOrigin, e.CORSAllowedOrigin)
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.LogBackend, e.LogBackend)
	if e.SessionValidityDuration > 0 {
		config.SessionValidityDuration = e.SessionValidityDuration
	}
	if e.AuthRateLimit > 0 {
		config.AuthRateLimit = e.AuthRateLimit
	}
	if e.AuthRateBurst > 0 {
		config.AuthRateBurst = e.AuthRateBurst
	}
}

// loadDotEnv reads path into the environment. With an empty path it falls
// back to ./.env and silently skips a missing file.
func loadDotEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}
