package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
)

// ServerOptions holds the configuration values for the game server emulator.
type ServerOptions struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN selects the Postgres repository when non-empty.
	DatabaseDSN string

	// Config is the path to the JSON config file.
	Config string

	// Seed is the path to the YAML file with users and hash lists.
	Seed string

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// MaxUpload caps the submit body, in human units ("10MB").
	MaxUpload string

	// CloseInterval is how often expired hash lists are closed (Postgres only).
	CloseInterval time.Duration `json:"-"`

	// LogLevel is the zap level name.
	LogLevel string
}

// ParseServer parses args, then the JSON config file, then environment
// overrides, in that order of increasing precedence.
func ParseServer(args []string) (*ServerOptions, error) {
	options := &ServerOptions{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.Seed, "seed", "seed.yaml", "path to seed file")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to server certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to server key")
	fs.StringVar(&options.MaxUpload, "max-upload", "10MB", "maximum submission size")
	fs.DurationVar(&options.CloseInterval, "close-interval", time.Minute, "how often expired hash lists are closed")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	return options, nil
}

// MaxUploadBytes converts MaxUpload into a byte count.
func (o *ServerOptions) MaxUploadBytes() (int64, error) {
	n, err := units.RAMInBytes(o.MaxUpload)
	if err != nil {
		return 0, fmt.Errorf("max upload %q: %w", o.MaxUpload, err)
	}
	return n, nil
}

// TLSEnabled reports whether both certificate and key are configured.
func (o *ServerOptions) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
