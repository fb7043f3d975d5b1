// Package config handles txtpgen.toml and txtpgen.yaml project files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/txtpgen/internal/generator"
)

// FileNames are the project file names looked up, in this order.
var FileNames = []string{"txtpgen.toml", "txtpgen.yaml", "txtpgen.yml"}

// Config is a project file. Every field is optional; unset fields keep
// the generator defaults.
type Config struct {
	Output   Output   `toml:"output" yaml:"output"`
	Generate Generate `toml:"generate" yaml:"generate"`
	Store    Store    `toml:"store" yaml:"store"`

	// Path is the file the config was read from (set at load time).
	Path string `toml:"-" yaml:"-"`
	// Dir is the directory holding the file (set at load time).
	Dir string `toml:"-" yaml:"-"`
}

// Output configures where and how outputs are written.
type Output struct {
	Dir        string `toml:"dir" yaml:"dir"`
	WemDir     string `toml:"wem-dir" yaml:"wem-dir"`
	Lang       bool   `toml:"lang" yaml:"lang"`
	AltExts    bool   `toml:"alt-exts" yaml:"alt-exts"`
	BankMarks  bool   `toml:"bank-marks" yaml:"bank-marks"`
	BankSkip   bool   `toml:"bank-skip" yaml:"bank-skip"`
	Dupes      bool   `toml:"dupes" yaml:"dupes"`
	DupesExact bool   `toml:"dupes-exact" yaml:"dupes-exact"`
	// Externals is a file listing external source paths.
	Externals string `toml:"externals" yaml:"externals"`
}

// Generate configures what is generated.
type Generate struct {
	Params       string `toml:"params" yaml:"params"`
	MasterVolume string `toml:"master-volume" yaml:"master-volume"`
	Unused       bool   `toml:"unused" yaml:"unused"`
	BankOrder    bool   `toml:"bank-order" yaml:"bank-order"`
	RandomAll    bool   `toml:"random-all" yaml:"random-all"`
	RandomMulti  bool   `toml:"random-multi" yaml:"random-multi"`
	RandomForce  bool   `toml:"random-force" yaml:"random-force"`
	WriteDelays  bool   `toml:"write-delays" yaml:"write-delays"`
	SilencePaths bool   `toml:"silence-paths" yaml:"silence-paths"`
	SilenceAll   bool   `toml:"silence-all" yaml:"silence-all"`
	MaxCombos    *int   `toml:"max-combos" yaml:"max-combos"`
	Prune        Prune  `toml:"prune" yaml:"prune"`
}

// Prune toggles the removal of segments that never play.
type Prune struct {
	ZeroDuration       *bool `toml:"zero-duration" yaml:"zero-duration"`
	ZeroExitInPlaylist *bool `toml:"zero-exit-in-playlist" yaml:"zero-exit-in-playlist"`
}

// Store configures the run history database.
type Store struct {
	Path string `toml:"path" yaml:"path"`
}

// Load parses a project file. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, &c)
	case ".yaml", ".yml":
		err = decodeYAML(data, &c)
	default:
		return nil, fmt.Errorf("unknown config format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Path = path
	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if c.Generate.MaxCombos != nil && *c.Generate.MaxCombos < 0 {
		return nil, fmt.Errorf("parse error in %s: max-combos must not be negative", path)
	}
	return &c, nil
}

func decodeTOML(data []byte, c *Config) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// FindAndLoad walks up from startDir to find a project file, then loads
// it. Returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Apply overlays the config on opts. Boolean switches can only turn
// features on; prune policies and the combination limit replace the
// defaults when set.
func (c *Config) Apply(opts *generator.Options) {
	out := c.Output
	if out.WemDir != "" {
		opts.WemDir = out.WemDir
	}
	opts.Lang = opts.Lang || out.Lang
	opts.AltExts = opts.AltExts || out.AltExts
	opts.BankMarks = opts.BankMarks || out.BankMarks
	opts.BankSkip = opts.BankSkip || out.BankSkip
	opts.Dupes = opts.Dupes || out.Dupes
	opts.DupesExact = opts.DupesExact || out.DupesExact

	gen := c.Generate
	if gen.Params != "" {
		opts.Params = gen.Params
	}
	if gen.MasterVolume != "" {
		opts.MasterVolume = gen.MasterVolume
	}
	opts.GenerateUnused = opts.GenerateUnused || gen.Unused
	opts.BankOrder = opts.BankOrder || gen.BankOrder
	opts.RandomAll = opts.RandomAll || gen.RandomAll
	opts.RandomMulti = opts.RandomMulti || gen.RandomMulti
	opts.RandomForce = opts.RandomForce || gen.RandomForce
	opts.WriteDelays = opts.WriteDelays || gen.WriteDelays
	opts.SilencePaths = opts.SilencePaths || gen.SilencePaths
	opts.SilenceAll = opts.SilenceAll || gen.SilenceAll
	if gen.MaxCombos != nil {
		opts.MaxCombos = *gen.MaxCombos
	}
	if gen.Prune.ZeroDuration != nil {
		opts.PruneZeroDuration = *gen.Prune.ZeroDuration
	}
	if gen.Prune.ZeroExitInPlaylist != nil {
		opts.PruneZeroExitInPlaylist = *gen.Prune.ZeroExitInPlaylist
	}
}

// Resolve returns p relative to the config directory, unless absolute or
// empty.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// OutputDir returns the configured output directory, resolved.
func (c *Config) OutputDir() string {
	return c.Resolve(c.Output.Dir)
}

// StorePath returns the configured database path, resolved.
func (c *Config) StorePath() string {
	return c.Resolve(c.Store.Path)
}

// ExternalsPath returns the configured externals list, resolved.
func (c *Config) ExternalsPath() string {
	return c.Resolve(c.Output.Externals)
}
