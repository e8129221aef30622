package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Monitor: MonitorConfig{DebounceWindow: time.Second, ManifestPath: "/etc/assetmon/watch.yaml"},
		Reload:  ReloadConfig{ModelCacheSize: 256},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing env", func(c *Config) { c.App.Environment = "" }, "ENV is required"},
		{"bad env", func(c *Config) { c.App.Environment = "prod" }, "invalid environment"},
		{"bad level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"zero window", func(c *Config) { c.Monitor.DebounceWindow = 0 }, "debounce window"},
		{"negative cache", func(c *Config) { c.Reload.ModelCacheSize = -1 }, "model cache size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	abs, err := expandPath("watch.yaml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	expanded, err := expandPath("~/assetmon/watch.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "assetmon", "watch.yaml"), expanded)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nASSETMON_TEST_KEY=from_file\nASSETMON_TEST_QUOTED=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("ASSETMON_TEST_KEY", "")
	os.Unsetenv("ASSETMON_TEST_KEY")
	t.Setenv("ASSETMON_TEST_QUOTED", "")
	os.Unsetenv("ASSETMON_TEST_QUOTED")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from_file", os.Getenv("ASSETMON_TEST_KEY"))
	assert.Equal(t, "quoted", os.Getenv("ASSETMON_TEST_QUOTED"))
}

func TestLoadEnvFile_EnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ASSETMON_TEST_PRIO=file\n"), 0o644))

	t.Setenv("ASSETMON_TEST_PRIO", "env")
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "env", os.Getenv("ASSETMON_TEST_PRIO"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT A PAIR\n"), 0o644))

	err := loadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetIntConfigValue(t *testing.T) {
	assert.Equal(t, 7, getIntConfigValue("7", "ASSETMON_UNSET", 3))
	assert.Equal(t, 3, getIntConfigValue("", "ASSETMON_UNSET", 3))
	assert.Equal(t, 3, getIntConfigValue("not-a-number", "ASSETMON_UNSET", 3))

	t.Setenv("ASSETMON_TEST_INT", "11")
	assert.Equal(t, 11, getIntConfigValue("", "ASSETMON_TEST_INT", 3))
}
