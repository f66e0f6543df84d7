package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Batch.Size)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "migrate.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "inventory/object_inventory.csv", cfg.Inventory.LedgerPath)
	assert.Equal(t, []string{"schema/field_mapping.csv"}, cfg.Schema.MappingTables)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATE_BATCH_SIZE", "500")
	t.Setenv("MIGRATE_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Batch.Size)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
