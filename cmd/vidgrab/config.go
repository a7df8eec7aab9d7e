package main

import (
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds default extraction and rendering settings. Values come from
// Defaults, are overridden by an optional YAML file, and finally by flags.
type Config struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Frames         int     `yaml:"frames"`
	FPSCap         float64 `yaml:"fps_cap"`
	AccurateSeek   bool    `yaml:"accurate_seek"`
	LoopShortReads bool    `yaml:"loop_short_reads"`

	Sheet SheetConfig `yaml:"sheet"`
}

// SheetConfig controls contact sheet layout.
type SheetConfig struct {
	Columns    int    `yaml:"columns"`
	ThumbWidth int    `yaml:"thumb_width"`
	Gap        int    `yaml:"gap"`
	Padding    int    `yaml:"padding"`
	Background string `yaml:"background_color"`
	Labels     bool   `yaml:"labels"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Frames: 16,

		Sheet: SheetConfig{
			Columns:    4,
			ThumbWidth: 320,
			Gap:        8,
			Padding:    16,
			Background: "#1a1a2e",
			Labels:     true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseColor parses a #rrggbb hex string, falling back to black.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.Black
	}

	v := func(c byte) uint8 {
		switch {
		case c >= '0' && c <= '9':
			return c - '0'
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10
		}
		return 0
	}
	return color.RGBA{
		R: v(hex[0])<<4 | v(hex[1]),
		G: v(hex[2])<<4 | v(hex[3]),
		B: v(hex[4])<<4 | v(hex[5]),
		A: 0xff,
	}
}
