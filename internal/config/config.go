// Package config loads server settings from the environment and command-line
// flags. Flags override environment values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read before the environment when present. Variables that
// are already set win over the file.
const DefaultEnvFile = ".env"

// Config is the server configuration.
type Config struct {
	DBPath          string        `env:"RECLAIM_DB"               envDefault:"reclaim.sqlite3"`
	Addr            string        `env:"RECLAIM_ADDR"             envDefault:":8080"`
	LogPath         string        `env:"RECLAIM_LOG"`
	EmailDomain     string        `env:"RECLAIM_EMAIL_DOMAIN"     envDefault:"@cit.edu.in"`
	TokenTTL        time.Duration `env:"RECLAIM_TOKEN_TTL"        envDefault:"168h"`
	MaxUploadBytes  int64         `env:"RECLAIM_MAX_UPLOAD_BYTES" envDefault:"5242880"`
	ShutdownTimeout time.Duration `env:"RECLAIM_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ErrHelp is returned by Load when -h or -help was given.
var ErrHelp = flag.ErrHelp

// Usage is the help text for the command-line flags.
const Usage = `Usage: reclaim [flags]

Flags:
  -d, -db <path>          SQLite database path (env RECLAIM_DB, default: reclaim.sqlite3)
  -a, -addr <host:port>   listen address (env RECLAIM_ADDR, default: :8080)
  -l, -log <path>         log file path (env RECLAIM_LOG, default: stdout/stderr only)
  -h, -help               show this help and exit

Environment:
  RECLAIM_EMAIL_DOMAIN      allowed registration email suffix (default: @cit.edu.in)
  RECLAIM_TOKEN_TTL         session token lifetime (default: 168h)
  RECLAIM_MAX_UPLOAD_BYTES  image upload limit in bytes (default: 5242880)
  RECLAIM_SHUTDOWN_TIMEOUT  graceful shutdown timeout (default: 5s)
  RECLAIM_ENV_FILE          dotenv file read on startup (default: .env)
`

// LoadEnvFile applies the dotenv file named by RECLAIM_ENV_FILE, or .env.
// A missing file is not an error.
func LoadEnvFile() error {
	path := os.Getenv("RECLAIM_ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	if err := LoadEnvFile(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load reads the environment, then applies command-line args on top.
func Load(args []string, output io.Writer) (Config, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("reclaim", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { fmt.Fprint(output, Usage) }

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("database path is required")
	case c.TokenTTL <= 0:
		return errors.New("token TTL must be positive")
	case c.MaxUploadBytes <= 0:
		return errors.New("upload limit must be positive")
	case c.ShutdownTimeout <= 0:
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}
