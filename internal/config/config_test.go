package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)

	// Lending policy defaults: 14 day period, 20 per overdue day.
	assert.Equal(t, 14, cfg.Loans.PeriodDays)
	assert.Equal(t, 20.0, cfg.Loans.FinePerDay)

	assert.Equal(t, "./uploads", cfg.Uploads.Dir)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	os.Setenv("LIBNET_SERVER_PORT", "9090")
	os.Setenv("LIBNET_LOANS_PERIOD_DAYS", "21")
	defer func() {
		os.Unsetenv("LIBNET_SERVER_PORT")
		os.Unsetenv("LIBNET_LOANS_PERIOD_DAYS")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 21, cfg.Loans.PeriodDays)
}
