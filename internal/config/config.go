// Package config loads the YAML configuration shared by every command.
// Values in the file overlay the built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/versesplit/core/books"
	"github.com/FocuswithJustin/versesplit/core/segment"
	"github.com/FocuswithJustin/versesplit/internal/logging"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "versesplit.yaml"

// Config is the full configuration.
type Config struct {
	RawDir    string `yaml:"raw_dir"`
	ENOnlyDir string `yaml:"en_only_dir"`
	FinalDir  string `yaml:"final_dir"`
	BundleDir string `yaml:"bundle_dir"`
	Database  string `yaml:"database"`
	BooksFile string `yaml:"books_file"`

	Segment SegmentConfig     `yaml:"segment"`
	Glosses map[string]string `yaml:"glosses"`
	Fill    FillConfig        `yaml:"fill"`
	Logging LoggingConfig     `yaml:"logging"`
}

// SegmentConfig feeds segment.Options.
type SegmentConfig struct {
	IgnoreLiterals  []string `yaml:"ignore_literals"`
	IgnorePrefixes  []string `yaml:"ignore_prefixes"`
	DuplicatePolicy string   `yaml:"duplicate_policy"`
	// UseHeadings switches books on the heading lines of the book table.
	UseHeadings bool `yaml:"use_headings"`
}

// FillConfig controls the Korean fill step.
type FillConfig struct {
	// ResponsesDir holds canned translator responses, one per chapter.
	ResponsesDir    string        `yaml:"responses_dir"`
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RawDir:    "raw",
		ENOnlyDir: "out/en_only",
		FinalDir:  "out/final",
		BundleDir: "out/bundles",
		Database:  "out/kjv.db",
		Segment: SegmentConfig{
			IgnoreLiterals: []string{
				"The Old Testament of the King James Version of the Bible",
				"The New Testament of the King James Bible",
				"Otherwise Called:",
			},
			IgnorePrefixes:  []string{"CHAPTER", "PSALM"},
			DuplicatePolicy: segment.Merge.String(),
		},
		Glosses: map[string]string{"unto": "to"},
		Fill: FillConfig{
			ResponsesDir:    "out/responses",
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// falls back to the defaults when it does not exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and numeric ranges.
func (c *Config) Validate() error {
	if _, err := segment.ParseDuplicatePolicy(c.Segment.DuplicatePolicy); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return err
	}
	if c.Fill.MaxAttempts < 1 {
		return fmt.Errorf("fill.max_attempts must be at least 1, got %d", c.Fill.MaxAttempts)
	}
	if c.Fill.InitialInterval < 0 || c.Fill.MaxInterval < c.Fill.InitialInterval {
		return fmt.Errorf("fill intervals invalid: initial %s, max %s", c.Fill.InitialInterval, c.Fill.MaxInterval)
	}
	for word, gloss := range c.Glosses {
		if strings.TrimSpace(word) == "" || strings.TrimSpace(gloss) == "" {
			return fmt.Errorf("glosses: empty word or gloss in %q=%q", word, gloss)
		}
	}
	return nil
}

// Books loads the configured book table, or the built-in one.
func (c *Config) Books() (*books.Table, error) {
	return books.LoadOrDefault(c.BooksFile)
}

// SegmentOptions builds accumulator options. Book headings come from table
// when UseHeadings is set.
func (c *Config) SegmentOptions(table *books.Table) (segment.Options, error) {
	policy, err := segment.ParseDuplicatePolicy(c.Segment.DuplicatePolicy)
	if err != nil {
		return segment.Options{}, err
	}
	opts := segment.Options{
		IgnoreLiterals: c.Segment.IgnoreLiterals,
		IgnorePrefixes: c.Segment.IgnorePrefixes,
		Duplicates:     policy,
	}
	if c.Segment.UseHeadings && table != nil {
		opts.BookHeadings = table.Headings()
	}
	return opts, nil
}

// InitLogging applies the logging section to the global logger.
func (c *Config) InitLogging() error {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}
