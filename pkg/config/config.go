// Package config loads bedforge settings from a TOML file.
//
// Every setting has a default, so a missing file is not an error. Lookup
// order for the file is the explicit path (from --config), then
// $XDG_CONFIG_HOME/bedforge/config.toml (or the platform equivalent).
//
//	seed = 42
//	concurrency = 4
//	output_dir = "out"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[machines.laser-600]
//	bed_width_mm = 600
//	bed_height_mm = 400
//	gutter_mm = 5
//	keepouts = [{ x_mm = 0, y_mm = 0, w_mm = 30, h_mm = 30 }]
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// EnvRedisURL overrides [CacheConfig.RedisURL] when set.
const EnvRedisURL = "BEDFORGE_REDIS_URL"

// Defaults.
const (
	DefaultSeed       = 42
	DefaultAddr       = ":8080"
	DefaultOutputDir  = "."
	DefaultPNGScale   = 2.0
	DefaultCacheStore = "file"
)

// Config is the full settings file.
type Config struct {
	Seed        uint64             `toml:"seed"`
	Concurrency int                `toml:"concurrency"`
	OutputDir   string             `toml:"output_dir"`
	Formats     []string           `toml:"formats"`
	PNGScale    float64            `toml:"png_scale"`
	Cache       CacheConfig        `toml:"cache"`
	Server      ServerConfig       `toml:"server"`
	Registry    RegistryConfig     `toml:"registry"`
	Machines    map[string]Machine `toml:"machines"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"` // file | redis | none
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	// Namespace prefixes every key so several shops can share one Redis.
	Namespace string `toml:"namespace"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// RegistryConfig locates the template registry database.
type RegistryConfig struct {
	Path string `toml:"path"`
}

// Keepout is a rectangle on the bed no part may overlap, such as a clamp.
type Keepout struct {
	XMM float64 `toml:"x_mm"`
	YMM float64 `toml:"y_mm"`
	WMM float64 `toml:"w_mm"`
	HMM float64 `toml:"h_mm"`
}

// Machine describes a printer bed that overrides the template's bed.
type Machine struct {
	BedWidthMM  float64         `toml:"bed_width_mm"`
	BedHeightMM float64         `toml:"bed_height_mm"`
	Margin      template.Margin `toml:"margin_mm"`
	GutterMM    float64         `toml:"gutter_mm"`
	Keepouts    []Keepout       `toml:"keepouts"`
}

// KeepoutBoxes returns the keep-outs as boxes.
func (m Machine) KeepoutBoxes() []geom.Box {
	out := make([]geom.Box, len(m.Keepouts))
	for i, k := range m.Keepouts {
		out[i] = geom.Box{X: k.XMM, Y: k.YMM, W: k.WMM, H: k.HMM}
	}
	return out
}

// Apply returns a copy of tpl with the bed replaced by the machine's.
// Zero bed dimensions keep the template's values.
func (m Machine) Apply(tpl *template.Template) *template.Template {
	out := *tpl
	if m.BedWidthMM > 0 {
		out.Bed.WidthMM = m.BedWidthMM
	}
	if m.BedHeightMM > 0 {
		out.Bed.HeightMM = m.BedHeightMM
	}
	if m.Margin != (template.Margin{}) {
		out.Bed.Margin = m.Margin
	}
	return &out
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"svg"}
	}
	if c.PNGScale <= 0 {
		c.PNGScale = DefaultPNGScale
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheStore
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Registry.Path == "" {
		if dir, err := Dir(); err == nil {
			c.Registry.Path = filepath.Join(dir, "registry.db")
		}
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url: required for the redis backend (or set %s)", EnvRedisURL)
	}
	for _, name := range c.MachineNames() {
		m := c.Machines[name]
		if m.BedWidthMM < 0 || m.BedHeightMM < 0 || m.GutterMM < 0 {
			return fmt.Errorf("machines.%s: dimensions must be >= 0", name)
		}
		for i, k := range m.Keepouts {
			if k.WMM <= 0 || k.HMM <= 0 {
				return fmt.Errorf("machines.%s.keepouts[%d]: w_mm and h_mm must be > 0", name, i)
			}
		}
	}
	return nil
}

// Machine looks up a named machine profile.
func (c *Config) Machine(name string) (Machine, error) {
	m, ok := c.Machines[name]
	if !ok {
		return Machine{}, fmt.Errorf("unknown machine %q", name)
	}
	return m, nil
}

// MachineNames returns the configured machine names, sorted.
func (c *Config) MachineNames() []string {
	names := make([]string, 0, len(c.Machines))
	for n := range c.Machines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dir returns the bedforge config directory.
func Dir() (string, error) {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "bedforge"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bedforge"), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing default file yields defaults; a missing explicit file is
// an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}

	c := &Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, c)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		default:
			if undec := md.Undecoded(); len(undec) > 0 {
				return nil, fmt.Errorf("load config %s: unknown key %q", path, undec[0].String())
			}
			c.Path = path
		}
	}

	if url := os.Getenv(EnvRedisURL); url != "" {
		c.Cache.RedisURL = url
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
