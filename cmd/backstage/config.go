// Config loading for the backstage CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/stageworks/backstage/internal/config"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyMode           = "mode"
	cfgKeyHTTPAddr       = "http_addr"
	cfgKeyAllowedOrigins = "allowed_origins"
	cfgKeyAllowedEmails  = "allowed_emails"
	cfgKeyReturnURL      = "auth.return_url"
	cfgKeyDataDir        = "data_dir"
	cfgKeyUploadsDir     = "uploads_dir"
	cfgKeyBaseURL        = "base_url"
	cfgKeyFBProjectID    = "firebase.project_id"
	cfgKeyFBBucket       = "firebase.bucket"
	cfgKeyFBCredentials  = "firebase.credentials_file"
	cfgKeyFBAPIKey       = "firebase.api_key"
	cfgKeySMTPHost       = "smtp.host"
	cfgKeySMTPPort       = "smtp.port"
	cfgKeySMTPFrom       = "smtp.from"
	cfgKeySMTPUsername   = "smtp.username"
	cfgKeySMTPPassword   = "smtp.password"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Backstage server configuration

# Storage mode: "local" keeps documents and uploads on disk,
# "firebase" uses Firestore and Cloud Storage.
mode: local

http_addr: ":8080"

# Browser origins allowed to call the API. Leave empty for same-origin use.
# allowed_origins:
#   - https://sweetjay.example

# Admin addresses. Sign-in links are only issued to these.
allowed_emails:
  - admin@example.com

auth:
  # Admin page the emailed sign-in link returns to.
  return_url: http://localhost:8080/admin

# Local mode
base_url: http://localhost:8080
# data_dir:
# uploads_dir:

# Firebase mode
# firebase:
#   project_id:
#   bucket:
#   credentials_file:
#   api_key:
# smtp:
#   host:
#   port: 587
#   from:
#   username:
#   password:
`

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error. Environment variables prefixed
// BACKSTAGE_ override file values (BACKSTAGE_SMTP_PASSWORD, etc).
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyMode, config.ModeLocal)
	v.SetDefault(cfgKeyHTTPAddr, ":8080")
	v.SetDefault(cfgKeySMTPPort, 587)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("BACKSTAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// buildConfig maps the loaded viper values onto the typed Config and
// resolves the directory defaults.
func buildConfig(v *viper.Viper) (config.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	uploadsDir := v.GetString(cfgKeyUploadsDir)
	if uploadsDir == "" {
		uploadsDir = filepath.Join(dataDir, "uploads")
	}

	cfg := config.Config{
		Mode:           v.GetString(cfgKeyMode),
		HTTPAddr:       v.GetString(cfgKeyHTTPAddr),
		AllowedOrigins: v.GetStringSlice(cfgKeyAllowedOrigins),
		AllowedEmails:  v.GetStringSlice(cfgKeyAllowedEmails),
		ReturnURL:      v.GetString(cfgKeyReturnURL),
		DataDir:        dataDir,
		UploadsDir:     uploadsDir,
		BaseURL:        v.GetString(cfgKeyBaseURL),
		Firebase: config.Firebase{
			ProjectID:       v.GetString(cfgKeyFBProjectID),
			Bucket:          v.GetString(cfgKeyFBBucket),
			CredentialsFile: v.GetString(cfgKeyFBCredentials),
			APIKey:          v.GetString(cfgKeyFBAPIKey),
		},
		SMTP: config.SMTP{
			Host:     v.GetString(cfgKeySMTPHost),
			Port:     v.GetInt(cfgKeySMTPPort),
			From:     v.GetString(cfgKeySMTPFrom),
			Username: v.GetString(cfgKeySMTPUsername),
			Password: v.GetString(cfgKeySMTPPassword),
		},
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
