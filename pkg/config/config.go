package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

// ScanConfig holds per-run defaults the CLI applies when flags are absent.
type ScanConfig struct {
	// FailOn lists the severities that block the gate. Defaults to critical.
	FailOn []string `yaml:"fail_on"`
	// Timeouts maps scanner name to a per-run timeout in seconds.
	Timeouts map[string]int `yaml:"timeouts"`
	// Rules overrides the semgrep ruleset (defaults to "auto").
	Rules string `yaml:"rules"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
	Scan             ScanConfig                `yaml:"scan"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".praetor")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Return default config
		return &Config{
			SelectedProvider: "gemini",
			SelectedModel:    "gemini-pro",
			Providers:        make(map[string]ProviderConfig),
			Scan:             ScanConfig{FailOn: []string{"critical"}},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if len(cfg.Scan.FailOn) == 0 {
		cfg.Scan.FailOn = []string{"critical"}
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions for security (api keys)
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

func (c *Config) GetAPIKey(provider string) string {
	return c.Providers[provider].APIKey
}

// ScannerConfig builds the per-adapter config map the orchestrator passes
// through to each adapter.
func (c *Config) ScannerConfig() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for name, secs := range c.Scan.Timeouts {
		out[name] = map[string]any{"timeout": secs}
	}
	if c.Scan.Rules != "" {
		if out["semgrep"] == nil {
			out["semgrep"] = make(map[string]any)
		}
		out["semgrep"]["rules"] = c.Scan.Rules
	}
	return out
}
