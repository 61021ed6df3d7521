package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/clinic-sim/sim"
)

// loadConfig reads a clinic YAML file on top of sim.DefaultConfig. Fields
// absent from the file keep their defaults; unknown fields are an error so
// typos never silently fall back to a default.
func loadConfig(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return parseConfig(data)
}

// parseConfig decodes YAML with strict field checking. A file with no
// document yields the defaults.
func parseConfig(data []byte) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}
