package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/config"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PAYROLL_PORT", "PAYROLL_DATA_FILE", "PAYROLL_BACKEND", "PAYROLL_DB",
		"PAYROLL_LOG_LEVEL", "PAYROLL_DEV", "PAYROLL_AUTOSAVE", "PAYROLL_CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, config.Config{
		Port:        8080,
		DataFile:    "salary_data.json",
		Backend:     config.BackendJSON,
		DBPath:      "payroll.db",
		LogLevel:    "info",
		CORSOrigins: []string{"*"},
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYROLL_PORT", "9090")
	t.Setenv("PAYROLL_BACKEND", "SQLite")
	t.Setenv("PAYROLL_DB", "/var/lib/payroll.db")
	t.Setenv("PAYROLL_DEV", "true")
	t.Setenv("PAYROLL_AUTOSAVE", "5m")
	t.Setenv("PAYROLL_CORS_ORIGINS", "http://localhost:5173, https://payroll.example.com ,")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, "/var/lib/payroll.db", cfg.DBPath)
	assert.True(t, cfg.Development)
	assert.Equal(t, 5*time.Minute, cfg.Autosave)
	assert.Equal(t, []string{"http://localhost:5173", "https://payroll.example.com"}, cfg.CORSOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PAYROLL_PORT", "http"},
		{"PAYROLL_PORT", "70000"},
		{"PAYROLL_AUTOSAVE", "often"},
		{"PAYROLL_AUTOSAVE", "-1s"},
		{"PAYROLL_BACKEND", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.FromEnv()

			assert.Error(t, err)
		})
	}
}
