package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names
const (
	EnvURL        = "USERDESK_URL"
	EnvResource   = "USERDESK_RESOURCE"
	EnvTimeout    = "USERDESK_TIMEOUT"
	EnvConfig     = "USERDESK_CONFIG"
	EnvJSON       = "USERDESK_JSON"
	EnvLogLevel   = "USERDESK_LOG_LEVEL"
	EnvLogFormat  = "USERDESK_LOG_FORMAT"
	EnvLogFile    = "USERDESK_LOG_FILE"
	EnvServerAddr = "USERDESK_SERVER_ADDR"
	EnvIDStyle    = "USERDESK_ID_STYLE"
	EnvMaxItems   = "USERDESK_MAX_ITEMS"
	EnvSeedFile   = "USERDESK_SEED_FILE"
	EnvRateLimit  = "USERDESK_RATE_LIMIT"
)

// LoadEnvConfig applies environment variables to cfg. Only variables that are
// set are applied; a set but malformed value is an error.
func LoadEnvConfig(cfg *Config) error {
	if v := os.Getenv(EnvURL); v != "" {
		cfg.URL = v
		cfg.Mark("url", SourceEnv)
	}
	if v := os.Getenv(EnvResource); v != "" {
		cfg.Resource = v
		cfg.Mark("resource", SourceEnv)
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
		cfg.Mark("timeout", SourceEnv)
	}
	if v := os.Getenv(EnvJSON); v != "" {
		cfg.JSON = v == "true" || v == "1" || v == "yes"
		cfg.Mark("json", SourceEnv)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
		cfg.Mark("log.level", SourceEnv)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
		cfg.Mark("log.format", SourceEnv)
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
		cfg.Mark("log.file", SourceEnv)
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		cfg.Server.Addr = v
		cfg.Mark("server.addr", SourceEnv)
	}
	if v := os.Getenv(EnvIDStyle); v != "" {
		cfg.Server.IDStyle = v
		cfg.Mark("server.idStyle", SourceEnv)
	}
	if v := os.Getenv(EnvMaxItems); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvMaxItems, v)
		}
		cfg.Server.MaxItems = n
		cfg.Mark("server.maxItems", SourceEnv)
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", EnvRateLimit, v)
		}
		cfg.Server.RateLimit = n
		cfg.Mark("server.rateLimit", SourceEnv)
	}
	if v := os.Getenv(EnvSeedFile); v != "" {
		cfg.Server.SeedFile = v
		cfg.Mark("server.seedFile", SourceEnv)
	}
	return nil
}

// ParseTimeout accepts a Go duration ("5s", "1m30s") or a bare number of
// seconds.
func ParseTimeout(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: use a duration like 5s or a number of seconds", s)
	}
	return d, nil
}
