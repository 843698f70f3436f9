// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/sethvargo/go-envconfig"
)

// Options holds the configuration values for the client.
type Options struct {
	// BaseURL is the base URL of the SaveLook API.
	BaseURL string `json:"base_url" env:"SAVELOOK_API_URL"`

	// SessionFile is the path of the persisted session record
	// when the file backend is selected.
	SessionFile string `json:"session_file" env:"SAVELOOK_SESSION_FILE"`

	// SessionBackend selects the durable backing for the session
	// store: "file" or "sqlite".
	SessionBackend string `json:"session_backend" env:"SAVELOOK_SESSION_BACKEND"`

	// SessionDSN is the SQLite database path used when SessionBackend
	// is "sqlite".
	SessionDSN string `json:"session_dsn" env:"SAVELOOK_SESSION_DSN"`

	// LogLevel configures the zap logger ("debug", "info", ...).
	LogLevel string `json:"log_level" env:"SAVELOOK_LOG_LEVEL"`

	// Config is the path to the JSON config file.
	Config string `json:"-" env:"CONFIG"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.BaseURL, "u", "https://savelook.duckdns.org:8443", "base URL of the SaveLook API")
	flag.StringVar(&options.SessionFile, "s", "session.json", "path to the persisted session file")
	flag.StringVar(&options.SessionBackend, "b", "file", "session backend: file or sqlite")
	flag.StringVar(&options.SessionDSN, "d", "savelook.db", "sqlite database path for the sqlite backend")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses command-line flags, overlays environment variables, and
// finally applies the JSON config file if one is present. It returns a
// pointer to the Options struct containing the resolved values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if err := envconfig.Process(context.Background(), options); err != nil {
		log.Fatalf("error while reading environment: %v", err)
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	return options
}
