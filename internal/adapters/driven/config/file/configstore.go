package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/repovet-cli/internal/core/services"
)

// Config is the persisted configuration.
type Config struct {
	GitHub GitHubConfig `toml:"github"`
	Search SearchConfig `toml:"search"`
	Rubric RubricConfig `toml:"rubric"`
}

// GitHubConfig holds repository reader credentials.
type GitHubConfig struct {
	// Token is a personal access token. Optional; unauthenticated access
	// works for public repositories at a reduced quota.
	Token string `toml:"token"`
}

// SearchConfig holds web-search credentials.
type SearchConfig struct {
	// APIKey is the Google Programmable Search API key.
	APIKey string `toml:"api_key"`

	// EngineID is the search engine (cx) identifier.
	EngineID string `toml:"engine_id"`
}

// RubricConfig overrides scoring coefficients. Nil fields keep the default.
// The deduction values are policy, not canon, so they are configurable.
type RubricConfig struct {
	CriticalCap         *int `toml:"critical_cap"`
	HighDeduction       *int `toml:"high_deduction"`
	MediumDeduction     *int `toml:"medium_deduction"`
	LowDeduction        *int `toml:"low_deduction"`
	CorroboratedDefault *int `toml:"corroborated_default"`
	InsufficientDefault *int `toml:"insufficient_default"`
}

// Apply overlays the overrides onto a base rubric.
func (c RubricConfig) Apply(base services.Rubric) services.Rubric {
	if c.CriticalCap != nil {
		base.CriticalCap = *c.CriticalCap
	}
	if c.HighDeduction != nil {
		base.HighDeduction = *c.HighDeduction
	}
	if c.MediumDeduction != nil {
		base.MediumDeduction = *c.MediumDeduction
	}
	if c.LowDeduction != nil {
		base.LowDeduction = *c.LowDeduction
	}
	if c.CorroboratedDefault != nil {
		base.CorroboratedDefault = *c.CorroboratedDefault
	}
	if c.InsufficientDefault != nil {
		base.InsufficientDefault = *c.InsufficientDefault
	}
	return base
}

// ConfigStore reads and writes the TOML configuration file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates the store and loads any existing file.
// If configDir is empty, defaults to ~/.repovet.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".repovet")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{filePath: filepath.Join(configDir, "config.toml")}
	if err := s.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

// Load reads the configuration file from disk.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.config = cfg
	return nil
}

// Config returns a copy of the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update applies fn to the configuration and persists the result.
// The file is written 0600 since it holds credentials.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.config)
	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.filePath, err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
