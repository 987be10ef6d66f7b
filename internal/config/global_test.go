package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGlobalConfig(t *testing.T, configHome, data string) string {
	t.Helper()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, GlobalConfigFile)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/skp/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	want := filepath.Join(home, ".config", "skp", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
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
	if cfg.DataRoot != "" {
		t.Errorf("DataRoot = %q, want empty", cfg.DataRoot)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "data_root: ~/work/skills\nollama_url: http://gpu:11434\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "work/skills"); cfg.DataRoot != want {
		t.Errorf("DataRoot = %q, want %q", cfg.DataRoot, want)
	}
	if cfg.OllamaURL != "http://gpu:11434" {
		t.Errorf("OllamaURL = %q, want http://gpu:11434", cfg.OllamaURL)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "data_root: [unclosed")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	path := writeGlobalConfig(t, tmpDir, "data_root: /first\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg1, _ := LoadGlobalConfig()
	if cfg1.DataRoot != "/first" {
		t.Errorf("First load: DataRoot = %q, want /first", cfg1.DataRoot)
	}

	if err := os.WriteFile(path, []byte("data_root: /second\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg2, _ := LoadGlobalConfig()
	if cfg2.DataRoot != "/first" {
		t.Errorf("Second load: DataRoot = %q, want /first (cached)", cfg2.DataRoot)
	}

	ResetGlobalConfigCache()

	cfg3, _ := LoadGlobalConfig()
	if cfg3.DataRoot != "/second" {
		t.Errorf("Third load: DataRoot = %q, want /second", cfg3.DataRoot)
	}
}

func TestResolveRoot_Explicit(t *testing.T) {
	root := makeRepo(t)

	got, err := ResolveRoot(root)
	if err != nil {
		t.Fatalf("ResolveRoot() error = %v", err)
	}
	if got != root {
		t.Errorf("ResolveRoot() = %q, want %q", got, root)
	}

	if _, err := ResolveRoot(t.TempDir()); !errors.Is(err, ErrNoRepository) {
		t.Errorf("ResolveRoot(non-repo) error = %v, want ErrNoRepository", err)
	}
}

func TestResolveRoot_GlobalFallback(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	root := makeRepo(t)
	configHome := t.TempDir()
	writeGlobalConfig(t, configHome, "data_root: "+root+"\n")
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Chdir(t.TempDir())

	got, err := ResolveRoot("")
	if err != nil {
		t.Fatalf("ResolveRoot() error = %v", err)
	}
	if got != root {
		t.Errorf("ResolveRoot() = %q, want %q", got, root)
	}
}

func TestResolveRoot_GlobalMissingDir(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	configHome := t.TempDir()
	writeGlobalConfig(t, configHome, "data_root: "+t.TempDir()+"\n")
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Chdir(t.TempDir())

	if _, err := ResolveRoot(""); !errors.Is(err, ErrDataRootNotExist) {
		t.Errorf("ResolveRoot() error = %v, want ErrDataRootNotExist", err)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	if !strings.Contains(msg, "skp init") {
		t.Errorf("HelpfulConfigMessage() = %q, want mention of skp init", msg)
	}
	if !strings.Contains(msg, "data_root") {
		t.Errorf("HelpfulConfigMessage() = %q, want mention of data_root", msg)
	}
}
