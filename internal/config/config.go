package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/harrylevesque/clientdir/internal/utils"
)

// Config holds the server settings. Every field can be set from the
// environment or from a .env file at the project root.
type Config struct {
	Addr          string        `env:"CLIENTDIR_ADDR" envDefault:":8080"`
	UsersAPIURL   string        `env:"CLIENTDIR_USERS_API_URL" envDefault:"https://jsonplaceholder.typicode.com"`
	CEPAPIURL     string        `env:"CLIENTDIR_CEP_API_URL" envDefault:"https://viacep.com.br"`
	HTTPTimeout   time.Duration `env:"CLIENTDIR_HTTP_TIMEOUT" envDefault:"10s"`
	SessionTTL    time.Duration `env:"CLIENTDIR_SESSION_TTL" envDefault:"24h"`
	UsersFile     string        `env:"CLIENTDIR_USERS_FILE"`
	LogLevel      string        `env:"CLIENTDIR_LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"CLIENTDIR_LOG_FORMAT" envDefault:"text"`
	LogFile       string        `env:"CLIENTDIR_LOG_FILE"`
	LoginRate     float64       `env:"CLIENTDIR_LOGIN_RATE" envDefault:"1"`
	LoginBurst    int           `env:"CLIENTDIR_LOGIN_BURST" envDefault:"5"`
	TLSCertFile   string        `env:"CLIENTDIR_TLS_CERT"`
	TLSKeyFile    string        `env:"CLIENTDIR_TLS_KEY"`
	ShutdownGrace time.Duration `env:"CLIENTDIR_SHUTDOWN_GRACE" envDefault:"10s"`
}

// Load reads .env from the project root when present, then parses the
// environment. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(filepath.Join(utils.GetProjectRoot(), ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: CLIENTDIR_ADDR is empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("config: CLIENTDIR_HTTP_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: CLIENTDIR_SESSION_TTL must be positive")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("config: CLIENTDIR_TLS_CERT and CLIENTDIR_TLS_KEY must be set together")
	}
	return nil
}

// TLSEnabled reports whether the server should serve HTTPS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
