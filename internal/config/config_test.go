package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANVIL_MASTER_SECRET", "test-secret")
	t.Setenv("ANVIL_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("ANVIL_SETTINGS_PATH", "")
	t.Setenv("ANVIL_DATABASE_PATH", "")
	t.Setenv("DEBUG", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":3010", cfg.Addr)
	require.Equal(t, "./anvil.settings.yaml", cfg.SettingsPath)
	require.Equal(t, "./anvil.db", cfg.DatabasePath)
	require.False(t, cfg.Debug)
}

func TestLoadAddrPrecedence(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "4000")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":4000", cfg.Addr)

	t.Setenv("ANVIL_ADDR", "127.0.0.1:5000")
	cfg, err = Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:5000", cfg.Addr)

	flagAddr := ":6000"
	cfg, err = Load(Overrides{Addr: &flagAddr})
	require.NoError(t, err)
	require.Equal(t, ":6000", cfg.Addr)
}

func TestLoadRequiresMasterSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ANVIL_MASTER_SECRET", "")

	_, err := Load(Overrides{})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)

	settingsPath := "/tmp/custom.yaml"
	dbPath := "/tmp/custom.db"
	debug := true
	cfg, err := Load(Overrides{
		SettingsPath: &settingsPath,
		DatabasePath: &dbPath,
		Debug:        &debug,
	})
	require.NoError(t, err)
	require.Equal(t, settingsPath, cfg.SettingsPath)
	require.Equal(t, dbPath, cfg.DatabasePath)
	require.True(t, cfg.Debug)
}
