package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// config is the merged configuration of one run. Flags override the
// config file, which overrides the defaults.
type config struct {
	Repository   string        `yaml:"repository"`
	Mode         string        `yaml:"mode"`
	Features     []string      `yaml:"features"`
	Sources      []string      `yaml:"sources"`
	Format       string        `yaml:"format"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	LogLevel     string        `yaml:"logLevel"`
}

func defaultConfig() config {
	return config{
		Repository: ".",
		Mode:       "plain",
		Format:     "text",
		LogLevel:   "warn",
	}
}

func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays the set fields of other onto c. With changed non-nil, only
// fields whose flag changed are taken; otherwise every non-zero field is.
func (c config) merge(other config, changed func(name string) bool) config {
	take := func(flag string, set bool) bool {
		if changed != nil {
			return changed(flag)
		}
		return set
	}
	if take("repository", other.Repository != "") {
		c.Repository = other.Repository
	}
	if take("mode", other.Mode != "") {
		c.Mode = other.Mode
	}
	if take("feature", len(other.Features) > 0) {
		c.Features = slices.Clone(other.Features)
	}
	if len(other.Sources) > 0 {
		c.Sources = slices.Clone(other.Sources)
	}
	if take("format", other.Format != "") {
		c.Format = other.Format
	}
	if take("timeout", other.FetchTimeout != 0) {
		c.FetchTimeout = other.FetchTimeout
	}
	if take("log-level", other.LogLevel != "") {
		c.LogLevel = other.LogLevel
	}
	return c
}

func (c config) validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources given")
	}
	if c.Repository == "" {
		return errors.New("repository must not be empty")
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.FetchTimeout)
	}
	return nil
}
