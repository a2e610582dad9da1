// Package config loads the YAML configuration shared by the logger façade
// and the bench CLI: which queue variant to run, its capacity hint, and the
// concurrency shape of a bench session.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultRingCapacity matches the reference logger's default capacity hint
// of 16 * 1024 * 1024 slots.
const defaultRingCapacity = 16 * 1024 * 1024

// Config is the on-disk shape; TestDuration is kept as a Go duration
// string (e.g. "5s") since yaml.v3 has no native time.Duration scalar.
type Config struct {
	Variant      string `yaml:"variant"`
	RingCapacity uint64 `yaml:"ring_capacity"`
	NumProducers int    `yaml:"num_producers"`
	NumConsumers int    `yaml:"num_consumers"`
	TestDuration string `yaml:"test_duration"`
}

// Default returns the configuration the logger uses when none is supplied:
// the ring variant at the reference default capacity.
func Default() Config {
	return Config{
		Variant:      "ring",
		RingCapacity: defaultRingCapacity,
		NumProducers: 4,
		NumConsumers: 1,
		TestDuration: "5s",
	}
}

// Load reads and parses a YAML config file, filling any unset field from
// Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Variant == "" {
		cfg.Variant = "ring"
	}
	return cfg, nil
}

// Duration parses TestDuration, falling back to 5s if it is empty or
// malformed.
func (c Config) Duration() time.Duration {
	if c.TestDuration == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.TestDuration)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// NormalizedRingCapacity rounds RingCapacity up to the next power of two,
// applying the reference default when unset.
func (c Config) NormalizedRingCapacity() uint64 {
	cap := c.RingCapacity
	if cap == 0 {
		cap = defaultRingCapacity
	}
	if cap < 2 {
		cap = 2
	}
	if cap&(cap-1) != 0 {
		p := uint64(1)
		for p < cap {
			p <<= 1
		}
		cap = p
	}
	return cap
}
