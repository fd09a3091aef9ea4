// Package config loads agent settings from an optional YAML file and AGT_*
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel         = "gpt-4o"
	DefaultMaxIterations = 50
	DefaultWorkspace     = "workspace"
	DefaultArtifactsDir  = ".agent"
	DefaultAddr          = ":8080"
)

// Config is the full agent configuration.
type Config struct {
	Model         string    `yaml:"model"`
	MaxIterations int       `yaml:"max_iterations"`
	Pacing        Pacing    `yaml:"pacing"`
	Workspace     Workspace `yaml:"workspace"`
	Provider      Provider  `yaml:"provider"`
	// ArtifactsDir holds history, transcript, the code database and events.
	ArtifactsDir     string `yaml:"artifacts_dir"`
	HistoryPath      string `yaml:"history_path"`
	TranscriptPath   string `yaml:"transcript_path"`
	DatabasePath     string `yaml:"database_path"`
	InstructionsPath string `yaml:"instructions_path"`
	Addr             string `yaml:"addr"`
}

type Pacing struct {
	PassDelay    time.Duration `yaml:"pass_delay"`
	AnomalyDelay time.Duration `yaml:"anomaly_delay"`
}

type Workspace struct {
	ReadRoot  string `yaml:"read_root"`
	WriteRoot string `yaml:"write_root"`
}

type Provider struct {
	BaseURL   string `yaml:"base_url"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:         DefaultModel,
		MaxIterations: DefaultMaxIterations,
		Pacing:        Pacing{PassDelay: 2 * time.Second, AnomalyDelay: 5 * time.Second},
		Workspace:     Workspace{ReadRoot: DefaultWorkspace},
		ArtifactsDir:  DefaultArtifactsDir,
		Addr:          DefaultAddr,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment overrides. Derived paths are filled in last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(b); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(b []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"AGT_MODEL":         &c.Model,
		"AGT_READ_ROOT":     &c.Workspace.ReadRoot,
		"AGT_WRITE_ROOT":    &c.Workspace.WriteRoot,
		"AGT_ARTIFACTS_DIR": &c.ArtifactsDir,
		"AGT_HISTORY_PATH":  &c.HistoryPath,
		"AGT_DATABASE_PATH": &c.DatabasePath,
		"AGT_INSTRUCTIONS":  &c.InstructionsPath,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("AGT_MAX_ITERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_ITERATIONS %q: %w", v, err)
		}
		c.MaxIterations = n
	}
	return nil
}

func (c *Config) fillPaths() {
	if c.ArtifactsDir == "" {
		c.ArtifactsDir = DefaultArtifactsDir
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(c.ArtifactsDir, "history.json")
	}
	if c.TranscriptPath == "" {
		c.TranscriptPath = filepath.Join(c.ArtifactsDir, "conversation.json")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.ArtifactsDir, "codes.db")
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Model == "":
		return errors.New("config: model must not be empty")
	case c.MaxIterations < 1:
		return fmt.Errorf("config: max_iterations must be at least 1, got %d", c.MaxIterations)
	case c.Pacing.PassDelay < 0 || c.Pacing.AnomalyDelay < 0:
		return errors.New("config: pacing delays must not be negative")
	}
	return nil
}
