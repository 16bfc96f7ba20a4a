package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/renderer"
	"github.com/wudi/docview/virtual"
)

// Config is the optional YAML file given with -config. Flags set on the
// command line override it.
type Config struct {
	ContentType   string       `yaml:"content_type"`
	Zoom          float64      `yaml:"zoom"`
	Continuous    *bool        `yaml:"continuous"`
	SearchContext int          `yaml:"search_context"`
	MaxSize       int64        `yaml:"max_size"`
	Gap           *float64     `yaml:"gap"`
	Viewport      SizeConfig   `yaml:"viewport"`
	Window        WindowConfig `yaml:"window"`
	OCR           OCRConfig    `yaml:"ocr"`
	LogLevel      string       `yaml:"log_level"`
}

type SizeConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type WindowConfig struct {
	RowHeight float64 `yaml:"row_height"`
	Visible   int     `yaml:"visible"`
	Overscan  int     `yaml:"overscan"`
	Threshold int     `yaml:"threshold"`
	MinRows   int     `yaml:"min_rows"`
}

type OCRConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Languages []string `yaml:"languages"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Zoom <= 0 {
		c.Zoom = 1
	}
	if c.SearchContext <= 0 {
		c.SearchContext = 40
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = SizeConfig{Width: renderer.DefaultViewport.Width, Height: renderer.DefaultViewport.Height}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OCR.Enabled && len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"eng"}
	}
}

func (c *Config) level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Options maps the file settings onto renderer options. The logger and OCR
// engine are added by the caller.
func (c *Config) Options() []renderer.Option {
	opts := []renderer.Option{
		renderer.WithViewport(geometry.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}),
		renderer.WithSearchContext(c.SearchContext),
		renderer.WithWindow(virtual.Config{
			RowHeight: c.Window.RowHeight,
			Visible:   c.Window.Visible,
			Overscan:  c.Window.Overscan,
			Threshold: c.Window.Threshold,
			MinRows:   c.Window.MinRows,
		}),
	}
	if c.Continuous != nil {
		opts = append(opts, renderer.WithContinuous(*c.Continuous))
	}
	if c.Gap != nil {
		opts = append(opts, renderer.WithGap(*c.Gap))
	}
	if c.MaxSize > 0 {
		opts = append(opts, renderer.WithMaxSize(c.MaxSize))
	}
	return opts
}
