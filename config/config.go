// Package config reads server settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects the record store implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

type Config struct {
	Port        int
	DataFile    string // JSON document, loaded at start and saved at shutdown
	Backend     Backend
	DBPath      string
	LogLevel    string
	Development bool
	Autosave    time.Duration // 0 disables
	CORSOrigins []string
}

// Load reads .env if present, then the PAYROLL_* variables. Variables already
// set in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the PAYROLL_* variables without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		DataFile:    getEnvOrDefault("PAYROLL_DATA_FILE", "salary_data.json"),
		Backend:     Backend(strings.ToLower(getEnvOrDefault("PAYROLL_BACKEND", string(BackendJSON)))),
		DBPath:      getEnvOrDefault("PAYROLL_DB", "payroll.db"),
		LogLevel:    getEnvOrDefault("PAYROLL_LOG_LEVEL", "info"),
		Development: parseBoolEnv("PAYROLL_DEV", false),
		CORSOrigins: splitList(getEnvOrDefault("PAYROLL_CORS_ORIGINS", "*")),
	}

	port, err := strconv.Atoi(getEnvOrDefault("PAYROLL_PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PAYROLL_PORT: invalid port %q", os.Getenv("PAYROLL_PORT"))
	}
	cfg.Port = port

	autosave, err := time.ParseDuration(getEnvOrDefault("PAYROLL_AUTOSAVE", "0s"))
	if err != nil || autosave < 0 {
		return Config{}, fmt.Errorf("PAYROLL_AUTOSAVE: invalid duration %q", os.Getenv("PAYROLL_AUTOSAVE"))
	}
	cfg.Autosave = autosave

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags may have overridden.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("PAYROLL_BACKEND: unknown backend %q (want json or sqlite)", c.Backend)
	}
	if c.Backend == BackendJSON && c.DataFile == "" {
		return fmt.Errorf("PAYROLL_DATA_FILE: required for the json backend")
	}
	if c.Backend == BackendSQLite && c.DBPath == "" {
		return fmt.Errorf("PAYROLL_DB: required for the sqlite backend")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolEnv(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
