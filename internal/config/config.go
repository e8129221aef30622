// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files, plus the
// YAML watch manifest declaring which directories feed which reloaders.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Monitor MonitorConfig
	Reload  ReloadConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MonitorConfig holds monitor service configuration.
type MonitorConfig struct {
	// DebounceWindow is the quiet period per watched directory (default: 1s).
	DebounceWindow time.Duration
	// ManifestPath points to the YAML watch manifest (default: watch.yaml).
	ManifestPath string
}

// ReloadConfig holds reload manager configuration.
type ReloadConfig struct {
	// ModelCacheSize bounds the decoded-model LRU cache (default: 256).
	ModelCacheSize int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	debounceWindow := flag.String("debounce-window", "", "Quiet period per watched directory (default: 1s)")
	manifestPath := flag.String("manifest", "", "Path to the watch manifest (default: watch.yaml)")
	modelCacheSize := flag.String("model-cache-size", "", "Decoded-model cache size (default: 256)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Monitor: MonitorConfig{
			ManifestPath: getConfigValue(*manifestPath, "WATCH_MANIFEST", "watch.yaml"),
		},
		Reload: ReloadConfig{
			ModelCacheSize: getIntConfigValue(*modelCacheSize, "MODEL_CACHE_SIZE", 256),
		},
	}

	windowStr := getConfigValue(*debounceWindow, "DEBOUNCE_WINDOW", "1s")
	window, err := time.ParseDuration(windowStr)
	if err != nil {
		return nil, fmt.Errorf("invalid debounce window %q: %w", windowStr, err)
	}
	cfg.Monitor.DebounceWindow = window

	if err := cfg.expandManifestPath(); err != nil {
		return nil, fmt.Errorf("invalid manifest path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Monitor.DebounceWindow <= 0 {
		return fmt.Errorf("debounce window must be positive, got %s", c.Monitor.DebounceWindow)
	}

	if c.Reload.ModelCacheSize <= 0 {
		return fmt.Errorf("model cache size must be positive, got %d", c.Reload.ModelCacheSize)
	}

	return nil
}

// expandManifestPath expands ~ and makes the manifest path absolute.
func (c *Config) expandManifestPath() error {
	expanded, err := expandPath(c.Monitor.ManifestPath)
	if err != nil {
		return err
	}
	c.Monitor.ManifestPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
