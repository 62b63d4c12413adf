// Package config loads the optional YAML tuning file that overrides the
// engine's detection and segment-extraction defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/linuxmatters/deadair/internal/analyzer"
)

// DefaultMinSilence is the shortest silence worth cutting, in seconds.
const DefaultMinSilence = 0.5

// Config mirrors the YAML tuning file. All fields are optional; nil keeps
// the built-in default. Values are seconds.
type Config struct {
	MinSilence    *float64 `yaml:"min_silence"`
	Padding       *float64 `yaml:"padding"`
	MinSegment    *float64 `yaml:"min_segment"`
	MergeGap      *float64 `yaml:"merge_gap"`
	TimebackStart *float64 `yaml:"timeback_start"`
	TimebackEnd   *float64 `yaml:"timeback_end"`
}

// Load reads and validates the YAML tuning file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are built from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil // empty file keeps all defaults
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would corrupt the extraction pipeline.
// It returns a joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error
	check := func(name string, v *float64) {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("%s %.3f must not be negative", name, *v))
		}
	}
	check("min_silence", cfg.MinSilence)
	check("padding", cfg.Padding)
	check("min_segment", cfg.MinSegment)
	check("merge_gap", cfg.MergeGap)
	check("timeback_start", cfg.TimebackStart)
	check("timeback_end", cfg.TimebackEnd)
	return errors.Join(errs...)
}

// MinSilenceDuration returns the configured minimum silence duration.
func (c *Config) MinSilenceDuration() float64 {
	if c != nil && c.MinSilence != nil {
		return *c.MinSilence
	}
	return DefaultMinSilence
}

// ExtractOptions resolves the config into extraction options, starting from
// the engine defaults.
func (c *Config) ExtractOptions() analyzer.ExtractOptions {
	opts := analyzer.DefaultExtractOptions()
	if c == nil {
		return opts
	}
	if c.Padding != nil {
		opts.Padding = *c.Padding
	}
	if c.MinSegment != nil {
		opts.MinSegmentDuration = *c.MinSegment
	}
	if c.MergeGap != nil {
		opts.MergeGap = *c.MergeGap
	}
	if c.TimebackStart != nil {
		opts.TimebackStart = *c.TimebackStart
	}
	if c.TimebackEnd != nil {
		opts.TimebackEnd = *c.TimebackEnd
	}
	return opts
}
