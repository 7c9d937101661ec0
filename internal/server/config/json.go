package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ponyexpress/internal/flagx"
	"github.com/dmitrijs2005/ponyexpress/internal/timex"
)

// JsonConfig is the on-disk JSON shape of Config. Durations use timex.Duration
// so both "1h" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionIssuer           string         `json:"session_issuer"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	CORSAllowedOrigin       string         `json:"cors_allowed_origin"`
	LogLevel                string         `json:"log_level"`
	LogBackend              string         `json:"log_backend"`
	AuthRateLimit           float64        `json:"auth_rate_limit"`
	AuthRateBurst           int            `json:"auth_rate_burst"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Keys missing from the file keep their current value. An unreadable or
// malformed file is a startup error and panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SessionIssuer, c.SessionIssuer)
	setString(&config.CORSAllowedOrigin, c.CORSAllowedOrigin)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthRateBurst > 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
