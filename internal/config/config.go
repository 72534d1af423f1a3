// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/meshlens/internal/analysis"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source is the file Load read, or empty when only defaults and flags
	// apply.
	Source string `yaml:"-"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// AnalysisConfig holds bounds, octree and selection settings.
type AnalysisConfig struct {
	Depth           int        `yaml:"depth"`     // octree levels below the cumulative box
	EmitRoot        bool       `yaml:"emit_root"` // also emit a marker for the cumulative box itself
	ClearOnMiss     bool       `yaml:"clear_on_miss"`
	RestorePrevious bool       `yaml:"restore_previous"`
	HighlightColor  [3]float32 `yaml:"highlight_color"`
	Wireframe       bool       `yaml:"wireframe"`
}

// SubdivideOptions converts the settings for the octree.
func (a AnalysisConfig) SubdivideOptions() analysis.SubdivideOptions {
	return analysis.SubdivideOptions{MaxDepth: a.Depth, EmitRoot: a.EmitRoot}
}

// SelectorOptions converts the settings for the hover selector.
func (a AnalysisConfig) SelectorOptions() analysis.SelectorOptions {
	return analysis.SelectorOptions{
		ClearOnMiss:     a.ClearOnMiss,
		RestorePrevious: a.RestorePrevious,
		HighlightColor:  a.HighlightColor,
		Wireframe:       a.Wireframe,
	}
}

// StoreConfig holds blob store settings. An empty path keeps uploads in memory.
type StoreConfig struct {
	Path         string `yaml:"path"`
	ClearOnStart bool   `yaml:"clear_on_start"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ViewerConfig holds camera and overlay settings.
type ViewerConfig struct {
	FOV              float32 `yaml:"fov"` // degrees
	MoveSpeed        float32 `yaml:"move_speed"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	ShowMarkers      bool    `yaml:"show_markers"`
	ShowStats        bool    `yaml:"show_stats"`
	Watch            bool    `yaml:"watch"`         // reload files given on the command line when they change
	SunAzimuth       float32 `yaml:"sun_azimuth"`   // degrees around Y from +Z
	SunElevation     float32 `yaml:"sun_elevation"` // degrees above the horizon
	ScreenshotDir    string  `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Analysis: AnalysisConfig{
			Depth:           2,
			EmitRoot:        false,
			ClearOnMiss:     false,
			RestorePrevious: false,
			HighlightColor:  analysis.DefaultHighlightColor,
			Wireframe:       true,
		},
		Store: StoreConfig{
			Path:         "",
			ClearOnStart: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		Viewer: ViewerConfig{
			FOV:              45,
			MoveSpeed:        5,
			MouseSensitivity: 0.003,
			ShowMarkers:      true,
			ShowStats:        true,
			Watch:            false,
			SunAzimuth:       35,
			SunElevation:     60,
			ScreenshotDir:    "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would break analysis or rendering.
func (c *Config) Validate() error {
	if c.Analysis.Depth < 1 || c.Analysis.Depth > analysis.MaxDepthLimit {
		return fmt.Errorf("analysis.depth %d outside [1, %d]", c.Analysis.Depth, analysis.MaxDepthLimit)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180 {
		return fmt.Errorf("viewer.fov %.1f outside (0, 180)", c.Viewer.FOV)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics enabled without an address")
	}
	return nil
}
