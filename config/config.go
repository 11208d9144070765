// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	appName        = "hospital-agent"
	configFileName = "config.json"
)

// DefaultRecordSeconds is the maximum length of one captured segment.
const DefaultRecordSeconds = 5

// DefaultSystemPrompt is used when no prompt is configured for direct
// provider mode.
const DefaultSystemPrompt = "You are the Clifton Hospital voice assistant. " +
	"Help patients book appointments with doctors, give guidance for common " +
	"health issues, answer questions about hospital services, and refer " +
	"serious cases to the appropriate specialist. Keep answers short and " +
	"speakable."

// OpenAIConfig holds credentials and model choices for direct provider mode.
type OpenAIConfig struct {
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url,omitempty"`
	ChatModel       string `json:"chat_model,omitempty"`
	TranscribeModel string `json:"transcribe_model,omitempty"`
	SpeechModel     string `json:"speech_model,omitempty"`
	Voice           string `json:"voice,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	// BackendURL points at a voice backend exposing /process_voice.
	// When empty the app talks to the provider directly via OpenAI.
	BackendURL string `json:"backend_url,omitempty"`

	OpenAI *OpenAIConfig `json:"openai,omitempty"`

	SystemPrompt  string `json:"system_prompt,omitempty"`
	RecordSeconds int    `json:"record_seconds,omitempty"`

	// Muted is the startup value; the live flag is owned by the listener.
	Muted bool `json:"muted,omitempty"`
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// RecordDuration returns the per-segment capture window.
func (c *Config) RecordDuration() time.Duration {
	if c.RecordSeconds <= 0 {
		return DefaultRecordSeconds * time.Second
	}
	return time.Duration(c.RecordSeconds) * time.Second
}

// GetSystemPrompt returns the configured prompt or the default.
func (c *Config) GetSystemPrompt() string {
	if c.SystemPrompt != "" {
		return c.SystemPrompt
	}
	return DefaultSystemPrompt
}

// DataDir returns the directory holding durable application state
// (conversation history). The directory is created on first use.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

func configPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		RecordSeconds: DefaultRecordSeconds,
	}
}
