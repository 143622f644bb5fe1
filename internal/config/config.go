package config

import "strings"

type Config struct {
	Categorizer CategorizerConfig `yaml:"categorizer"`
	Concurrency int               `yaml:"concurrency"`
	Separator   string            `yaml:"separator"`
	Output      OutputConfig      `yaml:"output"`
}

type CategorizerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	Language   string `yaml:"language"`
	TimeoutSec int    `yaml:"timeout_sec"`
	RatePerMin int    `yaml:"rate_per_min"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type Paths struct {
	HomeDir      string
	RootDir      string
	ConfigPath   string
	EnvPath      string
	EnvExample   string
	ConfigSource string
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Categorizer.Endpoint) == "" {
		c.Categorizer.Endpoint = "http://localhost:3000/generate"
	}
	if strings.TrimSpace(c.Categorizer.Model) == "" {
		c.Categorizer.Model = "meta-llama/llama-4-maverick:free"
	}
	if strings.TrimSpace(c.Categorizer.Language) == "" {
		c.Categorizer.Language = "text"
	}
	if c.Categorizer.TimeoutSec <= 0 {
		c.Categorizer.TimeoutSec = 30
	}
	if c.Categorizer.RatePerMin <= 0 {
		c.Categorizer.RatePerMin = 60
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Separator == "" {
		c.Separator = "―"
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = "."
	}
}
