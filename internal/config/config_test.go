package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/domain"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Summarizer: SummarizerConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.2",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingSummarizer(t *testing.T) {
	cfg := validConfig()
	cfg.Summarizer.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing summarizer model")
	}

	cfg = validConfig()
	cfg.Summarizer.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing summarizer base_url")
	}
}

func TestValidate_BadThesaurusURL(t *testing.T) {
	cfg := validConfig()
	cfg.Thesaurus.BaseURL = "ftp://example.com"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for non-http thesaurus url")
	}
	expected := `thesaurus.base_url must be an http(s) URL, got "ftp://example.com"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.HTTP.ShutdownSec != 30 {
		t.Errorf("ShutdownSec = %d, want 30", cfg.HTTP.ShutdownSec)
	}
	if cfg.Thesaurus.BaseURL != "https://www.dictionaryapi.com/api/v3/references/thesaurus/json" {
		t.Errorf("unexpected thesaurus base url %q", cfg.Thesaurus.BaseURL)
	}
	if cfg.Summarizer.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Summarizer.Workers, runtime.NumCPU())
	}
	if cfg.Summarizer.Candidates != 1 {
		t.Errorf("Candidates = %d, want 1", cfg.Summarizer.Candidates)
	}
	if cfg.Summarizer.SystemPrompt != DefaultSystemPrompt {
		t.Errorf("unexpected system prompt %q", cfg.Summarizer.SystemPrompt)
	}
}

func TestHTTPConfig_Addr(t *testing.T) {
	if got := (HTTPConfig{Port: 8080}).Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want %q", got, ":8080")
	}
	if got := (HTTPConfig{Host: "0.0.0.0", Port: 9000}).Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:9000")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("WORDSER_TEST_MODEL", "mistral")

	got := string(expandEnvVars([]byte("a: ${WORDSER_TEST_MODEL}\nb: ${WORDSER_TEST_UNSET:-fallback}\nc: ${WORDSER_TEST_UNSET}")))
	want := "a: mistral\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("WORDSER_TEST_ENGINE_URL", "http://engine:8000/v1")

	path := filepath.Join(t.TempDir(), "test.yaml")
	writeFile(t, path, `
http:
  port: 9090
  shutdown_timeout_sec: 5
summarizer:
  base_url: ${WORDSER_TEST_ENGINE_URL}
  model: bart-large-cnn
  workers: 2
logging:
  level: debug
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.HTTP.ShutdownSec != 5 {
		t.Errorf("unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.Summarizer.BaseURL != "http://engine:8000/v1" {
		t.Errorf("BaseURL = %q", cfg.Summarizer.BaseURL)
	}
	if cfg.Summarizer.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Summarizer.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestShippedConfigsBindAllInterfaces(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SUMMARIZER_BASE_URL", "http://engine:8000/v1")
	t.Setenv("SUMMARIZER_MODEL", "m")

	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			cfg, err := LoadFile(FindPath(env))
			if err != nil {
				t.Fatalf("LoadFile(%s): %v", env, err)
			}
			if cfg.HTTP.Host != "" && cfg.HTTP.Host != "0.0.0.0" {
				t.Errorf("http.host = %q, want all interfaces", cfg.HTTP.Host)
			}
		})
	}
}

func TestLoadSecrets_FromEnv(t *testing.T) {
	t.Setenv("WEBSTER_THESAURUS_API_KEY", "thesaurus-key")
	t.Setenv("SUMMARIZER_API_KEY", "engine-key")

	s, err := LoadSecrets("")
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.ThesaurusAPIKey != "thesaurus-key" || s.SummarizerAPIKey != "engine-key" {
		t.Errorf("unexpected secrets: %+v", s)
	}
}

func TestLoadSecrets_FromDotenv(t *testing.T) {
	t.Setenv("WEBSTER_THESAURUS_API_KEY", "")
	os.Unsetenv("WEBSTER_THESAURUS_API_KEY")

	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "WEBSTER_THESAURUS_API_KEY=from-dotenv\n")

	s, err := LoadSecrets(path)
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.ThesaurusAPIKey != "from-dotenv" {
		t.Errorf("ThesaurusAPIKey = %q, want from-dotenv", s.ThesaurusAPIKey)
	}
}

func TestLoadSecrets_MissingKeyIsConfigurationError(t *testing.T) {
	t.Setenv("WEBSTER_THESAURUS_API_KEY", "")

	_, err := LoadSecrets(filepath.Join(t.TempDir(), "absent.env"))
	if err == nil {
		t.Fatal("expected error for missing thesaurus key")
	}
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	base := "summarizer:\n  base_url: http://localhost:11434/v1\n  model: m\nlogging:\n  level: %s\n"
	writeFile(t, path, fmt.Sprintf(base, "info"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zap.NewNop(), func(c Config) { got <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, fmt.Sprintf(base, "debug"))

	select {
	case c := <-got:
		if c.Logging.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", c.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}
