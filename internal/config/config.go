// Package config merges the decompiler settings from their sources. A
// value set later wins: built-in defaults, then the config file, then
// the environment, then command line flags (applied by the caller).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/xyproto/env/v2"

	"github.com/grindlemire/go-unrpyc/internal/decompiler"
)

// DefaultFile is the config file looked for in the working directory.
const DefaultFile = "unrpyc.json"

// Environment variables.
const (
	EnvConfig       = "UNRPYC_CONFIG"
	EnvProcesses    = "UNRPYC_PROCESSES"
	EnvLineFidelity = "UNRPYC_LINE_FIDELITY"
	EnvInitOffset   = "UNRPYC_INIT_OFFSET"
)

// Config is the merged result.
type Config struct {
	Options decompiler.Options
	// Processes bounds the batch worker pool. 1 runs sequentially.
	Processes int
	// Clobber overwrites existing output files.
	Clobber bool
}

// file mirrors unrpyc.json. Pointers tell unset fields from zero ones.
type file struct {
	LineFidelity          *bool             `json:"line_fidelity"`
	InitOffset            *bool             `json:"init_offset"`
	DecompileEmbeddedCode *bool             `json:"decompile_embedded_code"`
	TagPlacement          *string           `json:"tag_placement"`
	Indent                *string           `json:"indent"`
	Processes             *int              `json:"processes"`
	Clobber               *bool             `json:"clobber"`
	Displayables          map[string]string `json:"displayables"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Options:   decompiler.DefaultOptions(),
		Processes: runtime.NumCPU(),
	}
}

// Load builds a Config from the defaults, the config file and the
// environment. An empty path falls back to $UNRPYC_CONFIG and then to
// DefaultFile; only an explicitly named file has to exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = env.Str(EnvConfig)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.apply(data); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Parse reads a config file body on top of the defaults. Comments and
// trailing commas are allowed.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.apply(data); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(data []byte) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	var f file
	if err := json.Unmarshal(std, &f); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	if f.LineFidelity != nil {
		c.Options.LineFidelity = *f.LineFidelity
	}
	if f.InitOffset != nil {
		c.Options.AssumeInitOffset = *f.InitOffset
	}
	if f.DecompileEmbeddedCode != nil {
		c.Options.DecompileEmbeddedCode = *f.DecompileEmbeddedCode
	}
	if f.TagPlacement != nil {
		p, err := ParseTagPlacement(*f.TagPlacement)
		if err != nil {
			return err
		}
		c.Options.TagPlacement = p
	}
	if f.Indent != nil {
		c.Options.Indent = *f.Indent
	}
	if f.Processes != nil {
		if *f.Processes < 1 {
			return fmt.Errorf("processes must be at least 1, got %d", *f.Processes)
		}
		c.Processes = *f.Processes
	}
	if f.Clobber != nil {
		c.Clobber = *f.Clobber
	}
	for class, value := range f.Displayables {
		name, err := parseDisplayableName(value)
		if err != nil {
			return fmt.Errorf("displayable %q: %w", class, err)
		}
		c.AddDisplayable(class, name)
	}
	return nil
}

func (c *Config) applyEnv() {
	if env.Has(EnvProcesses) {
		if n := env.Int(EnvProcesses, c.Processes); n >= 1 {
			c.Processes = n
		}
	}
	if env.Has(EnvLineFidelity) {
		c.Options.LineFidelity = env.Bool(EnvLineFidelity)
	}
	if env.Has(EnvInitOffset) {
		c.Options.AssumeInitOffset = env.Bool(EnvInitOffset)
	}
}

// AddDisplayable registers a custom displayable. The map is copied on
// first write so a Config never shares it with DefaultOptions.
func (c *Config) AddDisplayable(class string, name decompiler.DisplayableName) {
	names := make(map[string]decompiler.DisplayableName, len(c.Options.CustomDisplayableNames)+1)
	for k, v := range c.Options.CustomDisplayableNames {
		names[k] = v
	}
	names[class] = name
	c.Options.CustomDisplayableNames = names
}

// ParseTagPlacement accepts "block" or "header".
func ParseTagPlacement(s string) (decompiler.TagPlacement, error) {
	switch strings.ToLower(s) {
	case "block", "":
		return decompiler.TagInBlock, nil
	case "header":
		return decompiler.TagOnHeader, nil
	}
	return 0, fmt.Errorf("unknown tag placement %q (want block or header)", s)
}

// ParseDisplayable reads a class=name[-children] mapping, where children
// is 0, 1 or many. Without a count the displayable takes many children.
func ParseDisplayable(s string) (string, decompiler.DisplayableName, error) {
	class, value, ok := strings.Cut(s, "=")
	if !ok || class == "" {
		return "", decompiler.DisplayableName{}, fmt.Errorf("bad displayable mapping %q (want class=name[-children])", s)
	}
	name, err := parseDisplayableName(value)
	if err != nil {
		return "", decompiler.DisplayableName{}, fmt.Errorf("displayable %q: %w", class, err)
	}
	return class, name, nil
}

func parseDisplayableName(value string) (decompiler.DisplayableName, error) {
	name, count, hasCount := strings.Cut(value, "-")
	if name == "" {
		return decompiler.DisplayableName{}, errors.New("empty statement name")
	}
	out := decompiler.DisplayableName{Name: name, Children: decompiler.ChildrenMany}
	if !hasCount {
		return out, nil
	}
	switch count {
	case "0":
		out.Children = decompiler.ChildrenNone
	case "1":
		out.Children = decompiler.ChildrenOne
	case "many":
	default:
		return decompiler.DisplayableName{}, fmt.Errorf("children must be 0, 1 or many, got %q", count)
	}
	return out, nil
}
