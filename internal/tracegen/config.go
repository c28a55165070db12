package tracegen

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of GenOptions, for go:generate setups that
// prefer a checked-in .tracegen.yaml over a long flag line.
//
//	types: [Node, Tree]
//	source: ["./..."]
//	output: trace_gen.go
type Config struct {
	Types   []string `yaml:"types"`
	Source  []string `yaml:"source"`
	Package string   `yaml:"package"`
	Output  string   `yaml:"output"`
	Tags    []string `yaml:"tags"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(c.Types) == 0 {
		return Config{}, errors.New("config lists no types")
	}
	return c, nil
}

// Options converts the config into generation options.
func (c Config) Options() GenOptions {
	return GenOptions{
		Types:          c.Types,
		PackageName:    c.Package,
		Destination:    c.Output,
		SourcePatterns: c.Source,
		BuildTags:      c.Tags,
	}
}
