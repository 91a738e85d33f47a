// Package config loads historygraph settings from a TOML file.
//
// Every section is optional; missing values keep their defaults and flags
// given on the command line override file values.
//
//	[layout]
//	lane_width = 48
//	row_height = 100
//
//	[render]
//	width = 800
//	height = 600
//	font_size = 14
//	sprites = "sprites.png"
//	load_timeout = "5s"
//	formats = ["json", "png"]
//
//	[colors]
//	active_line = "#5592f0"
//	head_background = "#c3fb9e"
//
//	[cache]
//	dir = "/tmp/historygraph"
//
//	[server]
//	addr = ":8080"
//	watch = true
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/historygraph/pkg/canvas"
	hgerrors "github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/layout"
	"github.com/matzehuels/historygraph/pkg/pipeline"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// DefaultAddr is the default listen address of the server.
const DefaultAddr = "127.0.0.1:8080"

// Config is the file representation of all settings.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Render Render        `toml:"render"`
	Colors canvas.Colors `toml:"colors"`
	Cache  Cache         `toml:"cache"`
	Server Server        `toml:"server"`
}

// Render holds viewport and output settings.
type Render struct {
	Width       int      `toml:"width"`
	Height      int      `toml:"height"`
	FontSize    float64  `toml:"font_size"`
	Sprites     string   `toml:"sprites"`
	LoadTimeout Duration `toml:"load_timeout"`
	Formats     []string `toml:"formats"`
	FullPage    bool     `toml:"full_page"`
}

// Cache holds cache settings.
type Cache struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Server holds settings for the serve command.
type Server struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Render: Render{
			Width:       pipeline.DefaultWidth,
			Height:      pipeline.DefaultHeight,
			FontSize:    pipeline.DefaultFontSize,
			LoadTimeout: Duration{pipeline.DefaultLoadTimeout},
			Formats:     []string{pipeline.FormatJSON},
		},
		Colors: canvas.DefaultColors(),
		Server: Server{Addr: DefaultAddr},
	}
}

// DefaultPath returns the config file location under the user config
// directory, honouring XDG_CONFIG_HOME.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, app, FileName), nil
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults. Unknown keys are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, hgerrors.Wrap(hgerrors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, hgerrors.Wrap(hgerrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, hgerrors.New(hgerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// LoadOptional is Load for a path that may legitimately be absent, such as
// the default location. A missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	if err := c.Layout.WithDefaults().Validate(); err != nil {
		return hgerrors.Wrap(hgerrors.ErrCodeInvalidConfig, err, "layout")
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return hgerrors.New(hgerrors.ErrCodeInvalidConfig, "render: negative viewport %dx%d", c.Render.Width, c.Render.Height)
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Options converts the settings into pipeline options for input.
func (c Config) Options(input string) pipeline.Options {
	return pipeline.Options{
		Input:       input,
		Layout:      c.Layout,
		Width:       c.Render.Width,
		Height:      c.Render.Height,
		FontSize:    c.Render.FontSize,
		Sprites:     c.Render.Sprites,
		LoadTimeout: c.Render.LoadTimeout.Duration,
		Colors:      c.Colors,
		Formats:     append([]string(nil), c.Render.Formats...),
		FullPage:    c.Render.FullPage,
	}
}
