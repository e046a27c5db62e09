package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/caarlos0/env/v11"

	"smart-library/library"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver       string `env:"LIBRARY_DB_DRIVER" envDefault:"postgres"`
	DBHost         string `env:"LIBRARY_DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"LIBRARY_DB_PORT" envDefault:"5432"`
	DBName         string `env:"LIBRARY_DB_NAME" envDefault:"library"`
	DBUser         string `env:"LIBRARY_DB_USER" envDefault:"postgres"`
	DBPassword     string `env:"LIBRARY_DB_PASSWORD"`
	DBSSLMode      string `env:"LIBRARY_DB_SSLMODE" envDefault:"disable"`
	DBPath         string `env:"LIBRARY_DB_PATH" envDefault:"library.db"` // sqlite3 only
	DBMaxOpenConns int    `env:"LIBRARY_DB_MAX_OPEN_CONNS" envDefault:"4"`

	// Seeded on first start; an existing account is never touched.
	AdminUsername string `env:"LIBRARY_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"LIBRARY_ADMIN_PASSWORD" envDefault:"admin"`
	AdminFullName string `env:"LIBRARY_ADMIN_FULL_NAME" envDefault:"Administrator"`

	LoanDays       int    `env:"LIBRARY_LOAN_DAYS" envDefault:"14"`
	LoanDeleteMode string `env:"LIBRARY_LOAN_DELETE_MODE" envDefault:"lenient"`

	LogLevel string `env:"LIBRARY_LOG_LEVEL" envDefault:"info"`
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("LIBRARY_DB_DRIVER must be postgres or sqlite3, got %q", cfg.DBDriver)
	}
	if cfg.DBMaxOpenConns < 1 {
		return nil, fmt.Errorf("LIBRARY_DB_MAX_OPEN_CONNS must be positive, got %d", cfg.DBMaxOpenConns)
	}
	if cfg.LoanDays < 1 {
		return nil, fmt.Errorf("LIBRARY_LOAN_DAYS must be at least 1, got %d", cfg.LoanDays)
	}
	if _, err := library.ParseLoanDeleteMode(cfg.LoanDeleteMode); err != nil {
		return nil, fmt.Errorf("LIBRARY_LOAN_DELETE_MODE: %w", err)
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("LIBRARY_ADMIN_USERNAME and LIBRARY_ADMIN_PASSWORD must not be empty")
	}
	return cfg, nil
}

// Driver returns the database/sql driver name for the configured backend.
func (c Config) Driver() string {
	if c.DBDriver == "sqlite3" {
		return library.DriverSQLite
	}
	return library.DriverPostgres
}

// DSN returns the connection string for the configured backend.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite3" {
		return library.SQLiteDSN(c.DBPath)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + strconv.Itoa(c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	if c.DBPassword == "" {
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

// DeleteMode returns the parsed loan delete mode. Load has already rejected
// unknown values.
func (c Config) DeleteMode() library.LoanDeleteMode {
	m, _ := library.ParseLoanDeleteMode(c.LoanDeleteMode)
	return m
}

// Admin returns the account seeded by bootstrap.
func (c Config) Admin() library.AdminAccount {
	return library.AdminAccount{
		Username: c.AdminUsername,
		Password: c.AdminPassword,
		FullName: c.AdminFullName,
	}
}
