// Package config loads API credentials and classification tunables from the
// config file, .env file, and environment, with the environment taking
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DeepSeekAPIKey  string
	Classify        ClassifySettings
	ConfigDir       string
}

// FileConfig represents the structure of ~/.taxnav/config.yaml
type FileConfig struct {
	APIKeys  APIKeysConfig    `yaml:"api_keys"`
	Classify ClassifySettings `yaml:"classify"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
	DeepSeek  string `yaml:"deepseek"`
}

// ClassifySettings holds the classification pipeline tunables.
type ClassifySettings struct {
	Adapter          string `yaml:"adapter"`
	SummaryModel     string `yaml:"summary_model"`
	SelectionModel   string `yaml:"selection_model"`
	ArbitrationModel string `yaml:"arbitration_model"`
	BatchSize        int    `yaml:"batch_size"`
	MaxPerBatch      int    `yaml:"max_per_batch"`
	DomainCount      int    `yaml:"domain_count"`
	TaxonomyFile     string `yaml:"taxonomy_file"`
}

// Load reads configuration from the config file, .env, and environment
// variables. Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	// Best effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg := fromFile(loadFileConfig(filepath.Join(configDir, "config.yaml")))
	cfg.ConfigDir = configDir
	return cfg, nil
}

// LoadWithFile loads configuration from a specific config file path.
func LoadWithFile(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	fileConfig := &FileConfig{}
	if err := yaml.Unmarshal(data, fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := fromFile(fileConfig)
	cfg.ConfigDir = filepath.Dir(path)
	return cfg, nil
}

func fromFile(fileConfig *FileConfig) *Config {
	return &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		DeepSeekAPIKey:  getEnvOrDefault("DEEPSEEK_API_KEY", fileConfig.APIKeys.DeepSeek),
		Classify:        withDefaults(fileConfig.Classify),
	}
}

func withDefaults(s ClassifySettings) ClassifySettings {
	if s.Adapter == "" {
		s.Adapter = "openai"
	}
	return s
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".taxnav")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
