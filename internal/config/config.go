package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Strategy string

const (
	// StrategyCrawl pairs a crawling tree with a delta state manager.
	StrategyCrawl Strategy = "crawl"
	// StrategyJump pairs a jumping tree with a recalculating state
	// manager.
	StrategyJump Strategy = "jump"
)

// Profile selects how a search is run.
type Profile struct {
	Strategy           Strategy `yaml:"strategy"`
	SnapshotInterval   int      `yaml:"snapshotInterval"`
	DeactivateOnAscend bool     `yaml:"deactivateOnAscend"`
	Limit              int      `yaml:"limit"`
	MaxSolutions       int      `yaml:"maxSolutions"`
}

// Default returns the profile used when no file is given: crawl, keep
// a snapshot at every level, no limits, stop at the first solution.
func Default() Profile {
	return Profile{
		Strategy:         StrategyCrawl,
		SnapshotInterval: 1,
		MaxSolutions:     1,
	}
}

// Load reads a profile from a YAML file. Fields missing from the file
// keep their default value.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("error reading profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile on top of the defaults. Unknown fields
// are rejected.
func Parse(data []byte) (Profile, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) Validate() error {
	switch p.Strategy {
	case StrategyCrawl, StrategyJump:
	default:
		return fmt.Errorf("unknown strategy %q, expected %q or %q", p.Strategy, StrategyCrawl, StrategyJump)
	}
	if p.SnapshotInterval < 1 {
		return fmt.Errorf("snapshotInterval must be at least 1, got %d", p.SnapshotInterval)
	}
	if p.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", p.Limit)
	}
	if p.MaxSolutions < 0 {
		return fmt.Errorf("maxSolutions must not be negative, got %d", p.MaxSolutions)
	}
	return nil
}
