package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setHome points HOME at a temp dir so config files never touch the real one.
func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FITSYNC_SERVER_URL", "")
	t.Setenv("FITSYNC_TOKEN", "")
	t.Setenv("FITSYNC_AUTO_SYNC", "")
	t.Setenv("FITSYNC_LOCALE", "")
	return home
}

func TestLoadMissingConfigIsEmpty(t *testing.T) {
	setHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "" || cfg.AutoSync != nil {
		t.Errorf("cfg = %+v, want zero value", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	setHome(t)
	auto := false
	if err := Save(&Config{ServerURL: "https://api.example.com", Locale: "de", AutoSync: &auto}); err != nil {
		t.Fatalf("save: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "https://api.example.com" || cfg.Locale != "de" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.AutoSync == nil || *cfg.AutoSync {
		t.Errorf("auto_sync = %v, want false", cfg.AutoSync)
	}
	if AutoSyncEnabled() {
		t.Error("AutoSyncEnabled ignored the saved config")
	}
}

func TestServerURLPriority(t *testing.T) {
	setHome(t)

	if got := GetServerURL(); got != defaultServerURL {
		t.Errorf("default url = %s", got)
	}

	if err := Save(&Config{ServerURL: "https://cfg.example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := GetServerURL(); got != "https://cfg.example.com" {
		t.Errorf("config url = %s", got)
	}

	if err := SaveAuth(&AuthCredentials{Token: "tok", ServerURL: "https://auth.example.com"}); err != nil {
		t.Fatalf("save auth: %v", err)
	}
	if got := GetServerURL(); got != "https://auth.example.com" {
		t.Errorf("auth url = %s", got)
	}

	t.Setenv("FITSYNC_SERVER_URL", "https://env.example.com")
	if got := GetServerURL(); got != "https://env.example.com" {
		t.Errorf("env url = %s", got)
	}
}

func TestAuthLifecycle(t *testing.T) {
	home := setHome(t)

	if creds, err := LoadAuth(); err != nil || creds != nil {
		t.Fatalf("fresh auth = %v %v, want nil nil", creds, err)
	}
	if IsAuthenticated() {
		t.Error("authenticated with no credentials")
	}

	if err := SaveAuth(&AuthCredentials{Token: "tok-1", UserID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("save auth: %v", err)
	}
	if !IsAuthenticated() || GetToken() != "tok-1" {
		t.Errorf("token = %q", GetToken())
	}

	info, err := os.Stat(filepath.Join(home, ".config", "fitsync", "auth.json"))
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("auth.json perms = %o, want 0600", perm)
	}

	if err := ClearAuth(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	// Clearing twice is fine.
	if err := ClearAuth(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	setHome(t)
	t.Setenv("FITSYNC_DATA_DIR", "/tmp/fitsync-test-data")
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("data dir: %v", err)
	}
	if dir != "/tmp/fitsync-test-data" {
		t.Errorf("dir = %s", dir)
	}
}
