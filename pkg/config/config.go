// Package config loads the protogen configuration: the external tool
// invocation, the proto source tree, the destination tree and its
// categories, and driver tuning (staleness mode, workers, timeouts).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"protogen/pkg/errors"
)

// CategoryConfig describes one named group of proto files. Source and
// destination subdirectories are relative to ProtoRoot and DestRoot; an
// empty subdirectory means the root of the respective tree.
type CategoryConfig struct {
	Name      string `yaml:"name"`
	SourceDir string `yaml:"source_dir"`
	DestDir   string `yaml:"dest_dir"`
	InputExt  string `yaml:"input_ext"`
	OutputExt string `yaml:"output_ext"`
}

// Config is the flat top-level configuration, one struct rather than a
// nest of sections.
type Config struct {
	// External tool invocation: <tool> [tool_args...] <output_flag> <scratch> <input>
	Tool       string   `yaml:"tool"`
	ToolArgs   []string `yaml:"tool_args"`
	OutputFlag string   `yaml:"output_flag"`

	// Descriptor compiler used by the inspect command
	DescriptorTool string `yaml:"descriptor_tool"`

	// Tree layout
	ProtoRoot   string `yaml:"proto_root"`
	DestRoot    string `yaml:"dest_root"`
	ScratchRoot string `yaml:"scratch_root"` // empty means the system temp dir

	Categories []CategoryConfig `yaml:"categories"`

	// Driver tuning
	Staleness   string        `yaml:"staleness"` // "mtime" or "hash"
	Workers     int           `yaml:"workers"`
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	LogLevel string `yaml:"log_level"`
}

// GetDefaults returns a config matching the original repository layout:
// protos under protos/, generated code under src/proto/, with the base
// category at the tree roots and wrapped/dss in same-named subdirectories.
func GetDefaults() *Config {
	return &Config{
		Tool:           "protoc-rust",
		OutputFlag:     "--output",
		DescriptorTool: "protoc",
		ProtoRoot:      "protos",
		DestRoot:       filepath.Join("src", "proto"),
		Categories: []CategoryConfig{
			{Name: "base", InputExt: ".proto", OutputExt: ".rs"},
			{Name: "wrapped", SourceDir: "wrapped", DestDir: "wrapped", InputExt: ".proto", OutputExt: ".rs"},
			{Name: "dss", SourceDir: "dss", DestDir: "dss", InputExt: ".proto", OutputExt: ".rs"},
		},
		Staleness:   "mtime",
		Workers:     1,
		ToolTimeout: 2 * time.Minute,
		LogLevel:    "info",
	}
}

// Load reads the configuration from the given path, or from the first
// config file found in standard locations when the path is empty. A
// missing config file is not an error; the defaults describe the stock
// layout.
func Load(configPath string) (*Config, error) {
	cfg := GetDefaults()

	if configPath == "" {
		configPath = findConfig()
		if configPath == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapConfigError("file", fmt.Errorf("failed to read %s: %w", configPath, err))
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError("file", fmt.Errorf("failed to parse %s: %w", configPath, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfig searches for the protogen configuration file in standard
// locations. First checks the PROTOGEN_CONFIG environment variable, then
// common paths.
func findConfig() string {
	if envPath := os.Getenv("PROTOGEN_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	locations := []string{
		"./protogen.yml",
		"./config/protogen.yml",
		filepath.Join(os.Getenv("HOME"), ".protogen", "protogen.yml"),
		"/etc/protogen/protogen.yml",
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks the invariants the driver relies on.
func (c *Config) Validate() error {
	if c.Tool == "" {
		return errors.NewConfigError("tool", "tool command must not be empty")
	}
	if c.OutputFlag == "" {
		return errors.NewConfigError("output_flag", "output flag must not be empty")
	}
	if c.Staleness != "mtime" && c.Staleness != "hash" {
		return errors.NewConfigError("staleness", fmt.Sprintf("must be mtime or hash, got %q", c.Staleness))
	}
	if c.Workers < 1 {
		return errors.NewConfigError("workers", "must be at least 1")
	}
	if c.ToolTimeout <= 0 {
		return errors.NewConfigError("tool_timeout", "must be positive")
	}
	if len(c.Categories) == 0 {
		return errors.NewConfigError("categories", "at least one category is required")
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if cat.Name == "" {
			return errors.NewConfigError(field+".name", "category name must not be empty")
		}
		if seen[cat.Name] {
			return errors.NewConfigError(field+".name", fmt.Sprintf("duplicate category %q", cat.Name))
		}
		seen[cat.Name] = true
		if !strings.HasPrefix(cat.InputExt, ".") {
			return errors.NewConfigError(field+".input_ext", fmt.Sprintf("extension %q must start with a dot", cat.InputExt))
		}
		if !strings.HasPrefix(cat.OutputExt, ".") {
			return errors.NewConfigError(field+".output_ext", fmt.Sprintf("extension %q must start with a dot", cat.OutputExt))
		}
	}

	return nil
}

// CategoryNames returns the configured category names in order.
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// Category looks up one category by name.
func (c *Config) Category(name string) (CategoryConfig, error) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, nil
		}
	}
	return CategoryConfig{}, fmt.Errorf("%w: %q", errors.ErrUnknownCategory, name)
}
