package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, DBDriverPostgres, cfg.DBDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.True(t, cfg.EnforceAccountStatus)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, time.Second, cfg.OutboxRetryBase)
	assert.Equal(t, 50, cfg.OutboxBatchSize)
	assert.Equal(t, 8, cfg.OutboxMaxAttempts)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"DB_DRIVER":                     " Memory ",
		"LEDGER_ENFORCE_ACCOUNT_STATUS": false,
		"CORS_ALLOWED_ORIGINS":          "https://a.example, ,https://b.example",
		"OUTBOX_POLL_INTERVAL":          "500ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, DBDriverMemory, cfg.DBDriver)
	assert.False(t, cfg.EnforceAccountStatus)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		errSubstr string
	}{
		{"unknown driver", map[string]any{"DB_DRIVER": "mysql"}, "invalid DB_DRIVER"},
		{"bad duration", map[string]any{"OUTBOX_RETRY_BASE": "soon"}, "OUTBOX_RETRY_BASE"},
		{"negative duration", map[string]any{"OUTBOX_POLL_INTERVAL": "-1s"}, "must be positive"},
		{"zero batch", map[string]any{"OUTBOX_BATCH_SIZE": 0}, "OUTBOX_BATCH_SIZE"},
		{"zero attempts", map[string]any{"OUTBOX_MAX_ATTEMPTS": 0}, "OUTBOX_MAX_ATTEMPTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newTestViper(tt.overrides))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
