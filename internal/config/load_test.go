package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadBootstrapsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, paths, err := Load("", home)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !strings.HasSuffix(paths.ConfigPath, filepath.Join(".prodfmt", "config.yaml")) {
		t.Fatalf("unexpected config path: %s", paths.ConfigPath)
	}
	if _, err := os.Stat(paths.ConfigPath); err != nil {
		t.Fatalf("config not bootstrapped: %v", err)
	}
	if _, err := os.Stat(paths.EnvExample); err != nil {
		t.Fatalf("env example not bootstrapped: %v", err)
	}
	if !cfg.Categorizer.Enabled {
		t.Fatalf("default config should enable the categorizer")
	}
	if cfg.Categorizer.Endpoint != "http://localhost:3000/generate" {
		t.Fatalf("endpoint default mismatch: %s", cfg.Categorizer.Endpoint)
	}
	if cfg.Categorizer.TimeoutSec != 30 {
		t.Fatalf("timeout default mismatch: %d", cfg.Categorizer.TimeoutSec)
	}
	if cfg.Separator != "―" {
		t.Fatalf("separator default mismatch: %q", cfg.Separator)
	}
}

func TestLoadExplicitPathAndDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	content := "categorizer:\n  enabled: false\nconcurrency: 9\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, paths, err := Load(p, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if paths.ConfigSource != p {
		t.Fatalf("config source mismatch: %s", paths.ConfigSource)
	}
	if cfg.Categorizer.Enabled {
		t.Fatalf("enabled should stay false")
	}
	if cfg.Concurrency != 9 {
		t.Fatalf("concurrency mismatch: %d", cfg.Concurrency)
	}
	if cfg.Categorizer.Model == "" {
		t.Fatalf("model default missing")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(p, ""); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PRODFMT_CATEGORIZER_URL", "http://127.0.0.1:9999/generate")
	t.Setenv("PRODFMT_CATEGORIZER_MODEL", "other-model")

	cfg, _, err := Load("", home)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Categorizer.Endpoint != "http://127.0.0.1:9999/generate" {
		t.Fatalf("endpoint override not applied: %s", cfg.Categorizer.Endpoint)
	}
	if cfg.Categorizer.Model != "other-model" {
		t.Fatalf("model override not applied: %s", cfg.Categorizer.Model)
	}
}

func TestEnvFileOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PRODFMT_CATEGORIZER_URL", "")
	os.Unsetenv("PRODFMT_CATEGORIZER_URL")
	root := filepath.Join(home, ".prodfmt")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	envFile := "PRODFMT_CATEGORIZER_URL=http://10.0.0.1:3000/generate\n"
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(envFile), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load("", home)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Categorizer.Endpoint != "http://10.0.0.1:3000/generate" {
		t.Fatalf(".env override not applied: %s", cfg.Categorizer.Endpoint)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if cfg.Concurrency != 4 || cfg.Categorizer.RatePerMin != 60 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Output.Dir != "." {
		t.Fatalf("output dir default mismatch: %q", cfg.Output.Dir)
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("~/x/cfg.yaml", "/home/u"); got != "/home/u/x/cfg.yaml" {
		t.Fatalf("expandPath = %q", got)
	}
	if got := expandPath("/abs/cfg.yaml", "/home/u"); got != "/abs/cfg.yaml" {
		t.Fatalf("expandPath abs = %q", got)
	}
}
