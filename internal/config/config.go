package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds daemon configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// SettingsPath is the toolchain settings YAML file.
	SettingsPath string
	// DatabasePath is the build history SQLite file.
	DatabasePath string
	// MasterSecret signs client tokens.
	MasterSecret string
	Debug        bool
	// AllowedOrigins for browser CORS.
	AllowedOrigins []string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	SettingsPath *string
	DatabasePath *string
	MasterSecret *string
	Debug        *bool
}

// Load loads daemon configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 3010
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if envAddr := os.Getenv("ANVIL_ADDR"); envAddr != "" {
		addr = envAddr
	}
	if overrides.Addr != nil && *overrides.Addr != "" {
		addr = *overrides.Addr
	}

	settingsPath := os.Getenv("ANVIL_SETTINGS_PATH")
	if settingsPath == "" {
		settingsPath = "./anvil.settings.yaml"
	}
	if overrides.SettingsPath != nil && *overrides.SettingsPath != "" {
		settingsPath = *overrides.SettingsPath
	}

	dbPath := os.Getenv("ANVIL_DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./anvil.db"
	}
	if overrides.DatabasePath != nil && *overrides.DatabasePath != "" {
		dbPath = *overrides.DatabasePath
	}

	masterSecret := os.Getenv("ANVIL_MASTER_SECRET")
	if overrides.MasterSecret != nil && *overrides.MasterSecret != "" {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("ANVIL_MASTER_SECRET environment variable is required")
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	return &Config{
		Addr:           addr,
		SettingsPath:   settingsPath,
		DatabasePath:   dbPath,
		MasterSecret:   masterSecret,
		Debug:          debug,
		AllowedOrigins: []string{"*"}, // Self-hosted, single user.
	}, nil
}
