// Package config — .xmltrans.yaml configuration file support.
//
// A .xmltrans.yaml next to the input file (or passed via --config) supplies
// defaults for language codes, the character budget, and provider settings.
// Command-line flags always win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".xmltrans.yaml"

// File is the top-level .xmltrans.yaml structure.
type File struct {
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// TargetLang is the target language code (default "es").
	TargetLang string `yaml:"target_lang,omitempty"`
	// MaxChars caps the character count of one translation request.
	MaxChars int `yaml:"max_chars,omitempty"`
	// MaxRetries is the per-chunk retry budget.
	MaxRetries int `yaml:"max_retries,omitempty"`
	// Provider selects the translation service ("google" or "openai").
	Provider ProviderConfig `yaml:"provider,omitempty"`
}

// ProviderConfig holds provider connection settings.
type ProviderConfig struct {
	// ID is the provider identifier.
	ID string `yaml:"id,omitempty"`
	// BaseURL overrides the provider's API base URL.
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKey authenticates openai-style providers. Prefer the
	// XMLTRANS_API_KEY environment variable over committing keys here.
	APIKey string `yaml:"api_key,omitempty"`
	// Model is the model identifier for openai-style providers.
	Model string `yaml:"model,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the configured request timeout, or zero when unset.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Load reads and validates a config file. A missing file at the default
// location is not an error and yields an empty config; a missing file at an
// explicit path is.
func Load(path string, explicit bool) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.MaxChars < 0 {
		return errors.New("max_chars must be positive")
	}
	if f.MaxRetries < 0 {
		return errors.New("max_retries must be positive")
	}
	switch f.Provider.ID {
	case "", "google", "openai":
	default:
		return fmt.Errorf("unknown provider %q (want google or openai)", f.Provider.ID)
	}
	return nil
}
