// Package config reads the subscription files of the jsub command.
//
//	chunk_size: 4096
//	rate: 0
//	max_depth: 64
//	output:
//	  indent: 2
//	  labels: true
//	subscriptions:
//	  - pattern: /name
//	  - pattern: /pets/-/name
//	    label: pet
//	    limit: 10
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	yaml "github.com/goccy/go-yaml"

	"github.com/surajatreya/jsonstream/pointer"
)

// ErrConfig is wrapped by every error returned by this package.
var ErrConfig = errors.New("config error")

// Config is the content of a subscription file.  Zero values mean defaults.
type Config struct {
	ChunkSize     int            `yaml:"chunk_size,omitempty"`    // Bytes per chunk fed to the parser
	Rate          float64        `yaml:"rate,omitempty"`          // Input bytes per second, 0 for no limit
	MaxDepth      int            `yaml:"max_depth,omitempty"`     // Maximum nesting depth, 0 for no limit
	Output        Output         `yaml:"output,omitempty"`        // How matches are printed
	Subscriptions []Subscription `yaml:"subscriptions,omitempty"` // What to match
}

// Output configures the printing of matches.
type Output struct {
	Indent int  `yaml:"indent,omitempty"` // 0 verbatim, >0 pretty, <0 compact
	Width  int  `yaml:"width,omitempty"`  // Line width for pretty arrays
	Labels bool `yaml:"labels,omitempty"` // Print the label of each match
	Decode bool `yaml:"decode,omitempty"` // Print strings decoded
}

// A Subscription asks for the values matching Pattern.
type Subscription struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label,omitempty"` // Printed instead of the pattern
	Limit   int    `yaml:"limit,omitempty"` // Stop after that many matches, 0 for no limit
}

// Name returns the label of s, or its pattern if it has none.
func (s Subscription) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Pattern
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a YAML subscription file.  An empty file is
// a valid, empty configuration.
func Parse(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every pattern and the ranges of the numeric settings.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk_size must not be negative, got %d", ErrConfig, c.ChunkSize)
	}
	if c.Rate < 0 {
		return fmt.Errorf("%w: rate must not be negative, got %g", ErrConfig, c.Rate)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must not be negative, got %d", ErrConfig, c.MaxDepth)
	}
	if c.Output.Width < 0 {
		return fmt.Errorf("%w: output width must not be negative, got %d", ErrConfig, c.Output.Width)
	}
	seen := make(map[string]bool, len(c.Subscriptions))
	for i, s := range c.Subscriptions {
		if _, err := pointer.Parse(s.Pattern); err != nil {
			return fmt.Errorf("%w: subscription %d: %w", ErrConfig, i+1, err)
		}
		if seen[s.Pattern] {
			return fmt.Errorf("%w: subscription %d: duplicate pattern %q", ErrConfig, i+1, s.Pattern)
		}
		seen[s.Pattern] = true
		if s.Limit < 0 {
			return fmt.Errorf("%w: subscription %d: limit must not be negative, got %d", ErrConfig, i+1, s.Limit)
		}
	}
	return nil
}

// Add appends a subscription for each pattern not already subscribed to.
func (c *Config) Add(patterns ...string) {
	for _, p := range patterns {
		if !c.has(p) {
			c.Subscriptions = append(c.Subscriptions, Subscription{Pattern: p})
		}
	}
}

func (c *Config) has(pattern string) bool {
	for _, s := range c.Subscriptions {
		if s.Pattern == pattern {
			return true
		}
	}
	return false
}
