// Package config loads the settings of the demo scenarios.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of every scenario.
type Config struct {
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	Tree     Tree     `yaml:"tree"`
	Counter  Counter  `yaml:"counter"`
	Pipeline Pipeline `yaml:"pipeline"`
}

// Tree configures the ownership tree scenario.
type Tree struct {
	// Length of the longest root to leaf chain.
	Depth int `yaml:"depth"`
	// Extra leaves attached to every node of the chain.
	Fanout int `yaml:"fanout"`
}

// Counter configures the shared counter scenario.
type Counter struct {
	Threads    int `yaml:"threads"`
	Iterations int `yaml:"iterations"`
}

// Pipeline configures the multi-producer channel scenario.
type Pipeline struct {
	Producers int `yaml:"producers"`
	Messages  int `yaml:"messages"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
		Tree:      Tree{Depth: 1000, Fanout: 0},
		Counter:   Counter{Threads: 10, Iterations: 1000},
		Pipeline:  Pipeline{Producers: 4, Messages: 1000},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out of range setting.
func (c Config) Validate() error {
	var merr error
	check := func(ok bool, name string, v int) {
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("%s: invalid value %d", name, v))
		}
	}

	check(c.Tree.Depth >= 1, "tree.depth", c.Tree.Depth)
	check(c.Tree.Fanout >= 0, "tree.fanout", c.Tree.Fanout)
	check(c.Counter.Threads >= 1, "counter.threads", c.Counter.Threads)
	check(c.Counter.Iterations >= 0, "counter.iterations", c.Counter.Iterations)
	check(c.Pipeline.Producers >= 1, "pipeline.producers", c.Pipeline.Producers)
	check(c.Pipeline.Messages >= 0, "pipeline.messages", c.Pipeline.Messages)

	return merr
}
