package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeGlobalConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return tmpDir
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/bibsync/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "bibsync", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.LibraryPath != "" {
		t.Errorf("LibraryPath = %q, want empty", cfg.LibraryPath)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := writeGlobalConfig(t, "library_path: ~/papers\nlocale: es\nworkers: 3\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "papers"); cfg.LibraryPath != want {
		t.Errorf("LibraryPath = %q, want %q", cfg.LibraryPath, want)
	}
	if cfg.Locale != "es" {
		t.Errorf("Locale = %q, want es", cfg.Locale)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := writeGlobalConfig(t, "locale: es\nworkers: 3\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("BIBSYNC_LOCALE", "fr")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Locale != "fr" {
		t.Errorf("Locale = %q, want fr from environment", cfg.Locale)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3 from file", cfg.Workers)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := writeGlobalConfig(t, "locale: [unclosed\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestValidateLibraryPath(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := ValidateLibraryPath(); !errors.Is(err, ErrLibraryPathNotConfigured) {
		t.Errorf("ValidateLibraryPath() error = %v, want ErrLibraryPathNotConfigured", err)
	}

	ResetGlobalConfigCache()
	t.Setenv("BIBSYNC_LIBRARY_PATH", "/definitely/not/here")
	if _, err := ValidateLibraryPath(); !errors.Is(err, ErrLibraryPathNotExist) {
		t.Errorf("ValidateLibraryPath() error = %v, want ErrLibraryPathNotExist", err)
	}

	ResetGlobalConfigCache()
	lib := t.TempDir()
	t.Setenv("BIBSYNC_LIBRARY_PATH", lib)
	got, err := ValidateLibraryPath()
	if err != nil {
		t.Fatalf("ValidateLibraryPath() error = %v", err)
	}
	if got != lib {
		t.Errorf("ValidateLibraryPath() = %q, want %q", got, lib)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	if msg == "" {
		t.Error("HelpfulConfigMessage() returned empty string")
	}
	if len(msg) < 50 {
		t.Error("HelpfulConfigMessage() seems too short")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := writeGlobalConfig(t, "locale: es\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	configFile := filepath.Join(tmpDir, GlobalConfigDir, GlobalConfigFile)

	cfg1, _ := LoadGlobalConfig()
	if cfg1.Locale != "es" {
		t.Errorf("First load: Locale = %q, want es", cfg1.Locale)
	}

	os.WriteFile(configFile, []byte("locale: fr\n"), 0644)

	cfg2, _ := LoadGlobalConfig()
	if cfg2.Locale != "es" {
		t.Errorf("Second load: Locale = %q, want es (cached)", cfg2.Locale)
	}

	ResetGlobalConfigCache()

	cfg3, _ := LoadGlobalConfig()
	if cfg3.Locale != "fr" {
		t.Errorf("Third load: Locale = %q, want fr", cfg3.Locale)
	}
}
