// Package config loads and saves the morrow configuration file. The
// pipeline treats every field as an opaque input; validation beyond YAML
// well-formedness happens where the value is used.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

const (
	xdgAppName      = "morrow"
	configFile      = "config.yaml"
	credentialsFile = "credentials.json"

	// APIKeyEnv holds the LLM provider key (BYOK, never written to disk).
	APIKeyEnv = "MORROW_LLM_API_KEY"
	// ClientIDEnv and ClientSecretEnv hold the Google OAuth client pair.
	ClientIDEnv     = "MORROW_GOOGLE_CLIENT_ID"
	ClientSecretEnv = "MORROW_GOOGLE_CLIENT_SECRET"
)

// APIFormat selects the LLM backend wire shape.
type APIFormat string

const (
	FormatOpenAI    APIFormat = "openai"
	FormatAnthropic APIFormat = "anthropic"
	FormatGemini    APIFormat = "gemini"
)

// GoogleConfig names the two remote task lists the pipeline touches.
type GoogleConfig struct {
	SourceList string `yaml:"source_list"`
	OutputList string `yaml:"output_list"`
}

// LLMConfig selects the completion backend. The API key is read from the
// environment, never from this file.
type LLMConfig struct {
	APIFormat APIFormat `yaml:"api_format"`
	BaseURL   string    `yaml:"base_url"`
	Model     string    `yaml:"model"`
}

// APIKey returns the provider key from the environment, or "".
func (c LLMConfig) APIKey() string {
	return os.Getenv(APIKeyEnv)
}

// Config is the full configuration file.
type Config struct {
	Timezone    string       `yaml:"timezone"`
	Google      GoogleConfig `yaml:"google"`
	LLM         LLMConfig    `yaml:"llm"`
	Preferences Preferences  `yaml:"preferences"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Timezone: "Asia/Shanghai",
		Google: GoogleConfig{
			SourceList: "Tomorrow Tasks",
			OutputList: "Morrow Schedule",
		},
		LLM: LLMConfig{
			APIFormat: FormatOpenAI,
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o",
		},
		Preferences: DefaultPreferences(),
	}
}

// Dir returns the morrow configuration directory (~/.config/morrow).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// CredentialsPath returns the Google credential file path, next to the
// configuration file.
func CredentialsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credentialsFile), nil
}

// Load reads the configuration from path, or from the default location
// when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errs.Wrap(errs.CodeConfigInvalid, fmt.Sprintf("failed to parse %s", path), err)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = Default().Timezone
	}
	return cfg, nil
}

// Save writes the configuration to path, or to the default location when
// path is empty, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return errs.Wrap(errs.CodeConfigInvalid, "failed to encode config", err)
	}

	header := []byte("# morrow configuration\n" +
		"# Set " + APIKeyEnv + " in the environment for the LLM key.\n" +
		"# Run `morrow config path` to locate this file.\n\n")
	return os.WriteFile(path, append(header, b...), 0o600)
}
