package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the wordser gateway configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Thesaurus  ThesaurusConfig  `yaml:"thesaurus"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings. Level is re-applied on config file change.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"` // max drain duration
}

// ThesaurusConfig holds thesaurus provider settings. The API key comes from Secrets.
type ThesaurusConfig struct {
	BaseURL      string `yaml:"base_url"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// SummarizerConfig holds summarization engine settings (OpenAI-compatible endpoint).
type SummarizerConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	SystemPrompt   string `yaml:"system_prompt"`
	MaxTokens      int    `yaml:"max_tokens"`
	Candidates     int    `yaml:"candidates"`
	Workers        int    `yaml:"workers"` // 0 = runtime.NumCPU()
	LoadTimeoutSec int    `yaml:"load_timeout_sec"`
}

// TelemetryConfig holds OpenTelemetry exporter settings. Empty endpoint disables tracing.
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// DefaultSystemPrompt instructs the engine to return only the summary text.
const DefaultSystemPrompt = "Summarize the user's text in a few sentences. Reply with the summary only."

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(FindPath(env))
}

// LoadFile reads, expands, defaults and validates the configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Addr returns the listen address; an empty host binds all interfaces.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 30
	}
	if c.Thesaurus.BaseURL == "" {
		c.Thesaurus.BaseURL = "https://www.dictionaryapi.com/api/v3/references/thesaurus/json"
	}
	if c.Thesaurus.TimeoutSec <= 0 {
		c.Thesaurus.TimeoutSec = 10
	}
	if c.Thesaurus.MaxBodyBytes <= 0 {
		c.Thesaurus.MaxBodyBytes = 1 << 20
	}
	if c.Summarizer.SystemPrompt == "" {
		c.Summarizer.SystemPrompt = DefaultSystemPrompt
	}
	if c.Summarizer.MaxTokens <= 0 {
		c.Summarizer.MaxTokens = 256
	}
	if c.Summarizer.Candidates <= 0 {
		c.Summarizer.Candidates = 1
	}
	if c.Summarizer.Workers <= 0 {
		c.Summarizer.Workers = runtime.NumCPU()
	}
	if c.Summarizer.LoadTimeoutSec <= 0 {
		c.Summarizer.LoadTimeoutSec = 10
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "wordser"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := validateURL("thesaurus.base_url", c.Thesaurus.BaseURL); err != nil {
		return err
	}
	if c.Summarizer.BaseURL == "" {
		return fmt.Errorf("summarizer.base_url is required")
	}
	if err := validateURL("summarizer.base_url", c.Summarizer.BaseURL); err != nil {
		return err
	}
	if c.Summarizer.Model == "" {
		return fmt.Errorf("summarizer.model is required")
	}
	if c.Summarizer.Candidates > 8 {
		return fmt.Errorf("summarizer.candidates must be at most 8, got %d", c.Summarizer.Candidates)
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	return nil
}

// FindPath locates the config file for env.
func FindPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
