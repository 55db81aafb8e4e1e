// Package config loads VM tuning knobs — stack capacity, frame depth, GC
// growth factor — from an optional YAML file. It never touches language
// semantics; only how generously the VM is sized to run it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default VM sizing.
const (
	DefaultFrameCapacity = 64
	DefaultFrameSlots    = 256
	DefaultGCGrowFactor  = 2
)

// Config holds VM tuning parameters. Zero-value fields are filled with
// defaults by Load / setDefaults.
type Config struct {
	// FrameCapacity is the maximum number of live call frames.
	FrameCapacity int `yaml:"frame_capacity,omitempty"`
	// FrameSlots is the number of value-stack slots reserved per frame;
	// StackSlots = FrameCapacity * FrameSlots.
	FrameSlots int `yaml:"frame_slots,omitempty"`
	// GCGrowFactor is the multiplier applied to bytesAllocated to compute
	// the next collection threshold after a sweep.
	GCGrowFactor int `yaml:"gc_grow_factor,omitempty"`
}

// StackSlots returns the total value-stack capacity implied by the config.
func (c *Config) StackSlots() int { return c.FrameCapacity * c.FrameSlots }

// Defaults returns a Config with the recommended sizing.
func Defaults() *Config {
	return &Config{
		FrameCapacity: DefaultFrameCapacity,
		FrameSlots:    DefaultFrameSlots,
		GCGrowFactor:  DefaultGCGrowFactor,
	}
}

// Load reads a YAML tuning file at path. A missing file is not an error —
// it returns Defaults(). A present-but-malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.FrameCapacity == 0 {
		c.FrameCapacity = DefaultFrameCapacity
	}
	if c.FrameSlots == 0 {
		c.FrameSlots = DefaultFrameSlots
	}
	if c.GCGrowFactor == 0 {
		c.GCGrowFactor = DefaultGCGrowFactor
	}
}
