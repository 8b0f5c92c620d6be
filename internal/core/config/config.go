package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is read from ~/.config/docchat/config.toml. Missing file or fields
// fall back to defaults; a config problem never blocks startup.
type Config struct {
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Theme      string `toml:"theme"` // glamour style name for rendered answers
	TTSCommand string `toml:"tts_command"`
	STTCommand string `toml:"stt_command"`

	// SystemPrompt overrides the built-in system instruction template.
	// Loaded from system_prompt.txt next to the config, not from TOML.
	SystemPrompt string `toml:"-"`
}

// DefaultDir returns the data directory, ~/.config/docchat.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docchat"
	}
	return filepath.Join(home, ".config", "docchat")
}

// SessionsPath returns the session store file within dir.
func SessionsPath(dir string) string {
	return filepath.Join(dir, "sessions.json")
}

// BlobsPath returns the blob database within dir.
func BlobsPath(dir string) string {
	return filepath.Join(dir, "blobs.db")
}

// Load reads config from dir, applying defaults for anything missing.
func Load(dir string) (*Config, error) {
	cfg := &Config{Theme: "auto"}

	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	}

	// If a custom system prompt exists, use it
	if data, err := os.ReadFile(filepath.Join(dir, "system_prompt.txt")); err == nil {
		cfg.SystemPrompt = string(data)
	}

	if cfg.Theme == "" {
		cfg.Theme = "auto"
	}
	return cfg, nil
}

// Save writes the config back to dir, creating it if needed.
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "config.toml"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ResolveAPIKey returns the key to use: the GEMINI_API_KEY environment
// variable wins over the stored one.
func (c *Config) ResolveAPIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return c.APIKey
}
