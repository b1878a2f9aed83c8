// Package config provides configuration for the jabbercracky client, read from the
// environment, and for the game server emulator, read from flags, environment
// variables and an optional JSON config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// ErrMissingCredential is returned when no bearer token is configured.
var ErrMissingCredential = errors.New("environment variable JABBERCRACKY_API_KEY is not set")

// ClientOptions holds the client configuration.
type ClientOptions struct {
	// APIKey is the bearer token presented on every request.
	APIKey string `env:"JABBERCRACKY_API_KEY"`

	// APIKeyFromFile holds the contents of the file named by JABBERCRACKY_API_KEY_FILE.
	// It is consulted only when APIKey is empty.
	APIKeyFromFile string `env:"JABBERCRACKY_API_KEY_FILE,file"`

	// BaseURL is the game service root.
	BaseURL string `env:"JABBERCRACKY_URL" envDefault:"https://jabbercracky.com"`

	// Timeout bounds every HTTP exchange.
	Timeout time.Duration `env:"JABBERCRACKY_TIMEOUT" envDefault:"30s"`

	// CAFile is an extra PEM root CA, used against a local emulator over HTTPS.
	CAFile string `env:"JABBERCRACKY_CA_FILE"`

	// StateDir holds downloaded <id>.left files and <id>.submitted records.
	StateDir string `env:"JABBERCRACKY_STATE_DIR" envDefault:"."`

	// LogLevel is the minimum level of diagnostics written to stderr.
	LogLevel string `env:"JABBERCRACKY_LOG_LEVEL" envDefault:"warn"`
}

// ParseClient reads ClientOptions from environ, or from the process
// environment when environ is nil.
func ParseClient(environ map[string]string) (*ClientOptions, error) {
	opts := &ClientOptions{}
	if err := env.Parse(opts, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return opts, nil
}

// Token returns the configured bearer token trimmed of surrounding whitespace.
func (o *ClientOptions) Token() (string, error) {
	if token := strings.TrimSpace(o.APIKey); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(o.APIKeyFromFile); token != "" {
		return token, nil
	}
	return "", ErrMissingCredential
}
