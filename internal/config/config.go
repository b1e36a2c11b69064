// Package config holds the global fitsync configuration and auth state under
// ~/.config/fitsync.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the global fitsync config stored at ~/.config/fitsync/config.json.
type Config struct {
	ServerURL    string `json:"server_url,omitempty"`
	Locale       string `json:"locale,omitempty"`
	AutoSync     *bool  `json:"auto_sync,omitempty"`     // nil = default true
	ProbeSeconds int    `json:"probe_seconds,omitempty"` // reachability poll interval
}

// AuthCredentials stores authentication state at ~/.config/fitsync/auth.json.
type AuthCredentials struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ServerURL string `json:"server_url"`
}

const defaultServerURL = "http://localhost:8080"

// ConfigDir returns ~/.config/fitsync, creating it if necessary.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "fitsync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// DataDir returns the database directory. Priority: FITSYNC_DATA_DIR env >
// ~/.local/share/fitsync.
func DataDir() (string, error) {
	if v := os.Getenv("FITSYNC_DATA_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "fitsync"), nil
}

// Load reads the global config, returning an empty config when none exists.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the global config using an atomic write (temp file + rename).
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, "config.json"), cfg, 0644)
}

// LoadAuth reads auth credentials; (nil, nil) when not logged in.
func LoadAuth() (*AuthCredentials, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds AuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveAuth writes auth credentials (0600 perms).
func SaveAuth(creds *AuthCredentials) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, "auth.json"), creds, 0600)
}

// ClearAuth removes auth.json.
func ClearAuth() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetServerURL returns the API base URL.
// Priority: FITSYNC_SERVER_URL env > auth.json > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("FITSYNC_SERVER_URL"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil && creds.ServerURL != "" {
		return creds.ServerURL
	}
	if cfg, err := Load(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// GetToken returns the bearer token. Priority: FITSYNC_TOKEN env > auth.json.
func GetToken() string {
	if v := os.Getenv("FITSYNC_TOKEN"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil {
		return creds.Token
	}
	return ""
}

// IsAuthenticated returns true when a bearer token is available.
func IsAuthenticated() bool {
	return GetToken() != ""
}

// GetLocale returns the Accept-Language value, empty when unset.
func GetLocale() string {
	if v := os.Getenv("FITSYNC_LOCALE"); v != "" {
		return v
	}
	if cfg, err := Load(); err == nil {
		return cfg.Locale
	}
	return ""
}

// AutoSyncEnabled reports whether the queue drains automatically after
// mutating commands. Priority: FITSYNC_AUTO_SYNC env > config > default true.
func AutoSyncEnabled() bool {
	if v := os.Getenv("FITSYNC_AUTO_SYNC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if cfg, err := Load(); err == nil && cfg.AutoSync != nil {
		return *cfg.AutoSync
	}
	return true
}

func writeAtomic(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
