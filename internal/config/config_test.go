package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults 未设置环境变量时使用默认值
func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DEBUG", "DATABASE_URL", "FETCH_BATCH_SIZE",
		"STATUS_POLL_INTERVAL", "LEASE_MONTHLY_PRICE",
		"HUMAN_CLEAN_RATE_SQFT", "HOURLY_WAGE_USD",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, 50, cfg.FetchBatchSize)
	assert.Equal(t, 30*time.Second, cfg.StatusPollInterval)
	assert.Equal(t, 1500.0, cfg.MonthlyLeasePrice)
	assert.Equal(t, 8000.0, cfg.HumanCleanRate)
	assert.Equal(t, 25.0, cfg.HourlyWage)
}

// TestLoadOverrides 环境变量覆盖默认值，非法值回退默认
func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LEASE_MONTHLY_PRICE", "2000")
	t.Setenv("FETCH_BATCH_SIZE", "25")
	t.Setenv("STATUS_POLL_INTERVAL", "10s")
	t.Setenv("HOURLY_WAGE_USD", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 2000.0, cfg.MonthlyLeasePrice)
	assert.Equal(t, 25, cfg.FetchBatchSize)
	assert.Equal(t, 10*time.Second, cfg.StatusPollInterval)
	assert.Equal(t, 25.0, cfg.HourlyWage) // 非法值回退默认
}
