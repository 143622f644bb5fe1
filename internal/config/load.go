package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var embeddedDefaultConfig []byte

//go:embed default_env.example
var embeddedEnvExample []byte

func Load(pathArg, cwd string) (*Config, *Paths, error) {
	paths, err := resolvePaths(pathArg)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureBootstrap(paths); err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read config file (%s): %w", paths.ConfigPath, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, nil, fmt.Errorf("malformed config file (%s): %w", paths.ConfigPath, err)
	}
	cfg.applyDefaults()
	applyEnvOverrides(cfg, paths.EnvPath)

	paths.ConfigSource = paths.ConfigPath
	if !filepath.IsAbs(cfg.Output.Dir) && strings.TrimSpace(cwd) != "" {
		cfg.Output.Dir = filepath.Join(cwd, cfg.Output.Dir)
	}
	return cfg, paths, nil
}

// applyEnvOverrides lets a .env file or the process environment override the
// categorizer endpoint and model without editing config.yaml.
func applyEnvOverrides(cfg *Config, envPath string) {
	_ = godotenv.Load(envPath)
	if v := strings.TrimSpace(os.Getenv("PRODFMT_CATEGORIZER_URL")); v != "" {
		cfg.Categorizer.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("PRODFMT_CATEGORIZER_MODEL")); v != "" {
		cfg.Categorizer.Model = v
	}
}

func resolvePaths(configArg string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	root := filepath.Join(home, ".prodfmt")
	configPath := filepath.Join(root, "config.yaml")
	if strings.TrimSpace(configArg) != "" {
		configPath = expandPath(configArg, home)
	}

	return &Paths{
		HomeDir:    home,
		RootDir:    root,
		ConfigPath: configPath,
		EnvPath:    filepath.Join(root, ".env"),
		EnvExample: filepath.Join(root, ".env.example"),
	}, nil
}

func ensureBootstrap(paths *Paths) error {
	if err := os.MkdirAll(paths.RootDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(paths.ConfigPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := ensureFile(paths.ConfigPath, embeddedDefaultConfig, 0o644); err != nil {
		return err
	}
	return ensureFile(paths.EnvExample, embeddedEnvExample, 0o644)
}

func ensureFile(path string, data []byte, mode os.FileMode) error {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return nil
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write default file (%s): %w", path, err)
	}
	return nil
}

func expandPath(v, home string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	return v
}
