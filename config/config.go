// Package config loads the settings of the shadergraph command.
package config

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// RelPath is the location of the config file below the XDG config directories.
const RelPath = "shadergraph/config.yaml"

type Config struct {
	// Fold enables constant folding before code generation.
	Fold bool `yaml:"fold"`
	// DumpTokens prints the raw token list to stderr.
	DumpTokens bool `yaml:"dump_tokens"`
	// DumpAST prints the parsed program to stderr.
	DumpAST bool `yaml:"dump_ast"`
	// RootScope names the graph that receives top-level statements.
	RootScope string `yaml:"root_scope"`
	// Output is the file the graphs are written to. Empty means stdout.
	Output string `yaml:"output"`
}

func Default() Config {
	return Config{
		Fold:      true,
		RootScope: "main",
	}
}

// Load reads the config file at path. An empty path searches the XDG config
// directories; a missing file there yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(RelPath)
		if err != nil {
			return Default(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML config. Keys that are absent keep their defaults.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	if c.RootScope == "" {
		c.RootScope = Default().RootScope
	}
	return c, nil
}
