// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for ethan configuration.
	DefaultConfigDir = ".ethan"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Speech  SpeechConfig  `yaml:"speech,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Chat    ChatConfig    `yaml:"chat,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// SpeechConfig holds configuration for text-to-speech synthesis.
type SpeechConfig struct {
	Model string `yaml:"model,omitempty"`
	Voice string `yaml:"voice,omitempty"`
}

// StorageConfig selects and parameterizes the durable store backend.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend,omitempty"`

	// File backend paths, relative to the config directory unless absolute.
	PromptFile    string `yaml:"prompt_file,omitempty"`
	KnowledgeFile string `yaml:"knowledge_file,omitempty"`
	StateFile     string `yaml:"state_file,omitempty"`

	// SQLitePath is the sqlite backend's database file.
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// ChatConfig holds reply and learn tuning.
type ChatConfig struct {
	// HistoryLimit is how many recent messages feed reply generation.
	HistoryLimit int `yaml:"history_limit,omitempty"`
	// LearnFetchLimit is how many recent messages a learn pass fetches.
	LearnFetchLimit int `yaml:"learn_fetch_limit,omitempty"`
	// LearnWindow is how many of the fetched messages are analyzed.
	LearnWindow int `yaml:"learn_window,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Speech: SpeechConfig{
			Model: "tts-1",
			Voice: "onyx",
		},
		Storage: StorageConfig{
			Backend:       "file",
			PromptFile:    "prompt.json",
			KnowledgeFile: "knowledge.json",
			StateFile:     "state.json",
			SQLitePath:    "ethan.db",
		},
		Chat: ChatConfig{
			HistoryLimit:    20,
			LearnFetchLimit: 50,
			LearnWindow:     30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the .ethan directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'ethan init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
}

// ConfigDir returns the path to the .ethan config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if an ethan config exists in the given path.
func Exists(basePath string) bool {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
	_, err := os.Stat(configFile)
	return err == nil
}

// StoragePath resolves a storage file path against the config directory.
// Absolute paths are returned as-is.
func StoragePath(basePath, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(basePath, DefaultConfigDir, name)
}
