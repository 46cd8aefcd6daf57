// Package config loads lathe settings from a TOML file and merges them
// with command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/lathe/pkg/preview"
)

// Output formats understood by the CLI.
const (
	FormatJSON = "json"
	FormatBin  = "bin"
	FormatSTL  = "stl"
	FormatWebP = "webp"
	FormatPNG  = "png"
)

var formats = []string{FormatJSON, FormatBin, FormatSTL, FormatWebP, FormatPNG}

// Config holds all configurable output and render settings.
type Config struct {
	Output     Output     `toml:"output"`
	Preview    Preview    `toml:"preview"`
	Tessellate Tessellate `toml:"tessellate"`
	Check      Check      `toml:"check"`
}

// Output selects where and how results are written.
type Output struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"`
}

// Preview holds image render settings. Colours are "#rrggbb" strings.
type Preview struct {
	Size        int     `toml:"size"`
	Supersample int     `toml:"supersample"`
	Yaw         float64 `toml:"yaw"`
	Pitch       float64 `toml:"pitch"`
	Background  string  `toml:"background"`
	Color       string  `toml:"color"`
	ShowBack    bool    `toml:"show_back"`
}

// Tessellate controls scene generation.
type Tessellate struct {
	Workers int  `toml:"workers"` // 0 means one per CPU
	Cache   bool `toml:"cache"`
}

// Check holds tolerances for -check.
type Check struct {
	Tolerance      float64 `toml:"tolerance"`       // max vertex distance from the reference solid
	ReferenceCells int     `toml:"reference_cells"` // marching cubes cells per axis for -reference; 0 is the sdfx default
}

// Flags carries command-line overrides. Zero values leave the config alone.
type Flags struct {
	OutputDir string
	Format    string
	Workers   int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Output: Output{Dir: ".", Format: FormatJSON},
		Preview: Preview{
			Size:        512,
			Supersample: 2,
			Yaw:         -30,
			Pitch:       25,
			Background:  "#202226",
			Color:       "#c8aa78",
		},
		Tessellate: Tessellate{Cache: true},
		Check:      Check{Tolerance: 1e-4},
	}
}

// Load reads a TOML config file over the defaults. Fields not set in the
// file keep their default values; unknown fields are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: parse %s: %s", path, strict.String())
		}
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies flag overrides. CLI flags take priority when
// non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.Output.Dir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Output.Format = strings.ToLower(flags.Format)
	}
	if flags.Workers > 0 {
		c.Tessellate.Workers = flags.Workers
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}

// Validate checks the settings that can be wrong.
func (c Config) Validate() error {
	if !knownFormat(c.Output.Format) {
		return fmt.Errorf("output format %q is not one of %s", c.Output.Format, strings.Join(formats, ", "))
	}
	if c.Preview.Size < 0 || c.Preview.Supersample < 0 {
		return fmt.Errorf("preview size and supersample must not be negative")
	}
	if c.Tessellate.Workers < 0 {
		return fmt.Errorf("tessellate workers must not be negative")
	}
	if c.Check.Tolerance < 0 {
		return fmt.Errorf("check tolerance must not be negative")
	}
	if c.Check.ReferenceCells < 0 {
		return fmt.Errorf("check reference_cells must not be negative")
	}
	for _, s := range []string{c.Preview.Background, c.Preview.Color} {
		if _, err := parseColor(s); err != nil {
			return err
		}
	}
	return nil
}

func knownFormat(f string) bool {
	for _, k := range formats {
		if f == k {
			return true
		}
	}
	return false
}

// OutputPath returns the file the result of scene is written to.
func (c Config) OutputPath(scene string) string {
	base := strings.TrimSuffix(filepath.Base(scene), filepath.Ext(scene))
	if base == "" || base == "." {
		base = "scene"
	}
	return filepath.Join(c.Output.Dir, base+"."+c.Output.Format)
}

// PreviewOptions converts the preview settings. Colours have already been
// checked by Validate; a bad one falls back to the renderer's default.
func (c Config) PreviewOptions() preview.Options {
	o := preview.Options{
		Size:        c.Preview.Size,
		Supersample: c.Preview.Supersample,
		Yaw:         c.Preview.Yaw,
		Pitch:       c.Preview.Pitch,
		ShowBack:    c.Preview.ShowBack,
	}
	if bg, err := parseColor(c.Preview.Background); err == nil {
		o.Background = bg
	}
	if fg, err := parseColor(c.Preview.Color); err == nil {
		o.Color = fg
	}
	return o
}

// parseColor reads "#rrggbb". The empty string is transparent, which the
// renderer treats as unset.
func parseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("colour %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q is not #rrggbb", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
