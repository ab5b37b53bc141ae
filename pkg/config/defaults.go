package config

import "time"

// DefaultURL is the default remote base URL (json-server's default port).
const DefaultURL = "http://localhost:3000"

// DefaultResource is the default collection name.
const DefaultResource = "Users"

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

// DefaultLogLevel keeps command output free of log lines unless asked.
// Failed operations are already reported as command errors.
const DefaultLogLevel = "error"

// DefaultLogFormat is the default log output format.
const DefaultLogFormat = "text"

// DefaultServerAddr is the listen address for `userdesk serve`.
const DefaultServerAddr = ":3000"

// DefaultIDStyle is the identifier style used by `userdesk serve`.
const DefaultIDStyle = "sequence"

// NewDefault creates a new Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		URL:      DefaultURL,
		Resource: DefaultResource,
		Timeout:  DefaultTimeout,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			Addr:    DefaultServerAddr,
			IDStyle: DefaultIDStyle,
		},
		Sources: make(map[string]string),
	}
	for _, key := range Keys {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}
