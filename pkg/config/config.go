// Package config holds runtime configuration: defaults, CLI flag parsing,
// an optional YAML file, and environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings. Defaults come from [Default]; a YAML
// file, BATCHGEOTAG_* environment variables and CLI flags are layered on
// top, in that order.
type Config struct {
	// Inputs.
	CoordinatesPath string `yaml:"coordinates" validate:"required"`
	Folder          string `yaml:"folder" validate:"required"`
	NoHeader        bool   `yaml:"no_header"`  // coordinates file has no header row
	Recursive       bool   `yaml:"recursive"`  // browse folder recursively

	// Geotagging behavior.
	Overwrite   bool   `yaml:"overwrite"`                              // replace existing EXIF coordinates
	StepSeconds int    `yaml:"step_seconds" validate:"gte=1"`          // resampling grid spacing
	Timezone    string `yaml:"timezone" validate:"required"`           // applied to naive EXIF timestamps
	Workers     int    `yaml:"workers" validate:"gte=1,lte=64"`        // parallel file shards

	// Display.
	Verbosity int  `yaml:"verbosity" validate:"gte=1,lte=3"` // 1=errors, 2=info, 3=debug
	AssumeYes bool `yaml:"assume_yes"`                       // skip the overwrite confirmation prompt
}

// Default returns the baseline configuration, matching the original tool's
// defaults where one exists.
func Default() Config {
	return Config{
		StepSeconds: 60,
		Timezone:    "UTC",
		Workers:     4,
		Verbosity:   2,
	}
}

// LoadFile layers a YAML config file over cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// FromEnv layers BATCHGEOTAG_* environment variables over cfg. Unset or
// malformed values are ignored; flags remain the last word.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BATCHGEOTAG_COORDINATES"); v != "" {
		cfg.CoordinatesPath = v
	}
	if v := os.Getenv("BATCHGEOTAG_FOLDER"); v != "" {
		cfg.Folder = v
	}
	if v := os.Getenv("BATCHGEOTAG_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("BATCHGEOTAG_STEP_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StepSeconds = n
		}
	}
	if v := os.Getenv("BATCHGEOTAG_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}

// Validate checks field constraints and that the timezone resolves.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: unknown timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Call Validate first; this
// panics only on a timezone Validate would have rejected.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		panic(err)
	}
	return loc
}

// Step returns the resampling spacing as a duration.
func (c *Config) Step() time.Duration {
	return time.Duration(c.StepSeconds) * time.Second
}
