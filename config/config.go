// Package config loads the runtime configuration of an engine application
// from YAML and builds the application logger from it.
package config

import (
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config describes a windowed engine application.
type Config struct {
	Window  WindowConfig `yaml:"window"`
	TPS     int          `yaml:"tps"`
	Log     LogConfig    `yaml:"log"`
	DebugUI bool         `yaml:"debug_ui"`
	Demo    DemoConfig   `yaml:"demo"`
}

type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Resizable  bool   `yaml:"resizable"`
	Background string `yaml:"background"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DemoConfig tunes the bundled demo scene.
type DemoConfig struct {
	Sprites int   `yaml:"sprites"`
	Seed    int64 `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "kestrel",
			Width:      1280,
			Height:     720,
			Resizable:  true,
			Background: "#101018",
		},
		TPS: 60,
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Demo: DemoConfig{
			Sprites: 64,
			Seed:    1,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := LoadYAML(f)
	if err != nil {
		return nil, eris.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// LoadYAML decodes YAML from r on top of the defaults and validates the result.
// An empty document yields the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "decode yaml")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return eris.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.TPS <= 0 {
		return eris.Errorf("tps must be positive, got %d", c.TPS)
	}
	if c.Demo.Sprites < 0 {
		return eris.Errorf("demo sprite count must not be negative, got %d", c.Demo.Sprites)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrapf(err, "invalid log level %q", c.Log.Level)
	}
	if _, err := ParseColor(c.Window.Background); err != nil {
		return err
	}
	return nil
}

// NewLogger builds the application logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), eris.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string is opaque black.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{A: 0xff}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, eris.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, eris.Wrapf(err, "invalid color %q", s)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
