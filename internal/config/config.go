// Package config holds the biasctl configuration file schema and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/zombar/biasanalyzer/internal/wikipedia"
)

// AppName is the directory name used under the XDG config home
const AppName = "biasctl"

// Output formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatTable    = "table"
)

// Defaults
const (
	DefaultFormat      = FormatTable
	DefaultJobs        = 4
	MaxJobs            = 64
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
	DefaultLLMTimeout  = 60
)

var (
	// ErrInvalidProvider is returned for an unsupported llm.provider
	ErrInvalidProvider = errors.New("invalid llm provider")
	// ErrInvalidFormat is returned for an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidJobs is returned when jobs is outside 1..MaxJobs
	ErrInvalidJobs = errors.New("invalid number of jobs")
	// ErrConfigExists is returned by Write when the file is already there
	ErrConfigExists = errors.New("config file already exists")
)

// Config is the biasctl configuration. The mapstructure tags let viper
// decode the merged flags, environment and file into it.
type Config struct {
	Format       string `yaml:"format" mapstructure:"format"`
	Detailed     bool   `yaml:"detailed" mapstructure:"detailed"`
	Jobs         int    `yaml:"jobs" mapstructure:"jobs"`
	Lexicon      string `yaml:"lexicon" mapstructure:"lexicon"`
	AnnotatorURL string `yaml:"annotator_url" mapstructure:"annotator_url"`
	WikipediaURL string `yaml:"wikipedia_api_url" mapstructure:"wikipedia_api_url"`

	Ollama OllamaConfig `yaml:"ollama" mapstructure:"ollama"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
}

// OllamaConfig configures the local model used for sentiment
type OllamaConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// LLMConfig configures the rewrite and summary provider
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Format:       DefaultFormat,
		Jobs:         DefaultJobs,
		WikipediaURL: wikipedia.DefaultAPIURL,
		Ollama: OllamaConfig{
			URL:   DefaultOllamaURL,
			Model: DefaultOllamaModel,
		},
		LLM: LLMConfig{
			Timeout: DefaultLLMTimeout,
		},
	}
}

// Path returns the config file location, $XDG_CONFIG_HOME/biasctl/config.yaml
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Validate checks the enumerated and bounded settings
func (c Config) Validate() error {
	switch c.Format {
	case FormatJSON, FormatMarkdown, FormatTable:
	default:
		return fmt.Errorf("%w: %q (supported: json, markdown, table)", ErrInvalidFormat, c.Format)
	}
	if c.Jobs < 1 || c.Jobs > MaxJobs {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidJobs, c.Jobs, MaxJobs)
	}
	switch strings.ToLower(strings.TrimSpace(c.LLM.Provider)) {
	case "", "none", "openai", "ollama":
	default:
		return fmt.Errorf("%w: %q (supported: openai, ollama, none)", ErrInvalidProvider, c.LLM.Provider)
	}
	return nil
}

// Load reads a YAML file over the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Marshal renders the configuration as YAML. The API key is masked.
func (c Config) Marshal() ([]byte, error) {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "********"
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

const fileHeader = `# biasctl configuration
#
# Precedence (highest first):
#   1. command line flags
#   2. BIASCTL_* environment variables (nested keys use _, e.g. BIASCTL_LLM_PROVIDER)
#   3. this file
#   4. built-in defaults

`

// Write creates a config file holding c, creating parent directories. It
// refuses to overwrite an existing file.
func Write(path string, c Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
