package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/voxel-archive/internal/copier"
	"github.com/shinji-kodama/voxel-archive/internal/model"
	"github.com/shinji-kodama/voxel-archive/internal/snapshot"
)

// DefaultBanner is the file name printed in the "archiving as version"
// line. Scripts that parse the output expect it unchanged.
const DefaultBanner = "main.rs"

// FileNames lists the settings files looked up in the working directory,
// in priority order.
var FileNames = []string{
	".voxel-archive.yaml",
	".voxel-archive.yml",
	".voxel-archive.jsonc",
}

// Config holds the effective archive settings.
type Config struct {
	// Source is the directory name that gets archived.
	Source string `yaml:"source" json:"source"`

	// Prefix precedes the version digits in snapshot names.
	Prefix string `yaml:"prefix" json:"prefix"`

	// PadWidth is the minimum number of digits in a version string.
	PadWidth int `yaml:"pad_width" json:"padWidth"`

	// Sort is "lexical" (historical) or "numeric".
	Sort string `yaml:"sort" json:"sort"`

	// Exclude lists doublestar patterns, relative to the source root,
	// that are left out of snapshots.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Banner is the name shown in the "<banner> archiving as version" line.
	Banner string `yaml:"banner" json:"banner"`
}

// Default returns the historical settings.
func Default() *Config {
	return &Config{
		Source:   snapshot.DefaultSource,
		Prefix:   snapshot.DefaultPrefix,
		PadWidth: snapshot.DefaultPadWidth,
		Sort:     model.SortLexical.String(),
		Banner:   DefaultBanner,
	}
}

// Load reads the settings for workDir.
//
// If path is non-empty it names the file explicitly and must exist.
// Otherwise FileNames are tried in workDir and the first one present wins;
// with none present Load returns Default(). The second return value is the
// file that was used, or "" for defaults.
func Load(workDir, path string) (*Config, string, error) {
	if path == "" {
		for _, name := range FileNames {
			candidate := filepath.Join(workDir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return Default(), "", nil
		}
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadFile parses a single settings file on top of Default(). The format
// is chosen by extension: .yaml/.yml for YAML, .json/.jsonc for JSONC.
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitConfigInvalid,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	case ".json", ".jsonc":
		err = decodeJSONC(data, cfg)
	default:
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("unsupported config file extension %q (use .yaml, .yml or .jsonc)", ext))
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF; that just means "all defaults".
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSONC(data []byte, cfg *Config) error {
	// Strip // and /* */ comments and trailing commas.
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Validate checks the settings for values the planner or the copier
// cannot work with.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return model.NewCLIError(model.ExitConfigInvalid, fmt.Sprintf(format, args...))
	}

	if c.Source == "" {
		return invalid("source must not be empty")
	}
	if c.Prefix == "" {
		return invalid("prefix must not be empty")
	}
	if c.PadWidth < 1 {
		return invalid("pad width must be at least 1, got %d", c.PadWidth)
	}
	if _, err := model.ParseSortMode(c.Sort); err != nil {
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid sort setting", err)
	}
	if strings.ContainsAny(c.Source, `/\`) || strings.ContainsAny(c.Prefix, `/\`) {
		return invalid("source and prefix must be plain directory names without path separators")
	}
	if c.Source == "." || c.Source == ".." {
		return invalid("source %q would contain the snapshot written from it", c.Source)
	}
	// A source that looks like a snapshot would be counted as one and
	// could be chosen as its own destination.
	if _, ok := snapshot.NewMatcher(c.Prefix).Match(c.Source); ok {
		return invalid("source %q matches the snapshot pattern %s<digits>", c.Source, c.Prefix)
	}
	if err := copier.ValidateExcludes(c.Exclude); err != nil {
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid exclude setting", err)
	}
	return nil
}

// PlannerOptions converts the settings into snapshot planner options.
// Validate must have succeeded.
func (c *Config) PlannerOptions() snapshot.Options {
	mode, _ := model.ParseSortMode(c.Sort)
	return snapshot.Options{
		Prefix:   c.Prefix,
		Source:   c.Source,
		PadWidth: c.PadWidth,
		SortMode: mode,
	}
}

// CopyOptions converts the settings into copier options.
func (c *Config) CopyOptions() copier.Options {
	return copier.Options{Excludes: c.Exclude}
}
