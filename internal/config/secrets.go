package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kailas-cloud/wordser/internal/domain"
)

// Secrets holds credentials read once at startup. They never live in YAML files.
type Secrets struct {
	ThesaurusAPIKey  string `env:"WEBSTER_THESAURUS_API_KEY" env-required:"true"`
	SummarizerAPIKey string `env:"SUMMARIZER_API_KEY"`
}

// LoadSecrets reads secrets from dotenvPath (if the file exists) and the process
// environment; environment values take precedence. A missing required secret is
// a configuration error.
func LoadSecrets(dotenvPath string) (Secrets, error) {
	var s Secrets
	var err error
	if dotenvPath != "" && fileExists(dotenvPath) {
		err = cleanenv.ReadConfig(dotenvPath, &s)
	} else {
		err = cleanenv.ReadEnv(&s)
	}
	if err != nil {
		return Secrets{}, fmt.Errorf("load secrets: %v: %w", err, domain.ErrConfiguration)
	}
	// cleanenv accepts a variable that is set but empty
	if s.ThesaurusAPIKey == "" {
		return Secrets{}, fmt.Errorf("WEBSTER_THESAURUS_API_KEY is empty: %w", domain.ErrConfiguration)
	}
	return s, nil
}
