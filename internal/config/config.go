// Package config loads, validates, and defaults the subsystem options
// file. Options are plain YAML; every field has a working default so an
// absent or empty file is fully usable.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/termclick/internal/logging"
)

// Options is the root of the options file.
type Options struct {
	// Input tunes gesture recognition.
	Input InputOptions `yaml:"input"`

	// Optimizer tunes the event pipeline.
	Optimizer OptimizerOptions `yaml:"optimizer"`

	// Registry tunes the region registry and its spatial index.
	Registry RegistryOptions `yaml:"registry"`

	// Logging configures diagnostic output.
	Logging LoggingOptions `yaml:"logging"`
}

// InputOptions tunes click and drag gesture recognition.
type InputOptions struct {
	// DoubleClickTimeMS is the maximum gap between clicks in a
	// double/triple-click sequence, in milliseconds.
	DoubleClickTimeMS int `yaml:"double_click_time_ms"`

	// DoubleClickDistance is the maximum Manhattan distance, in cells,
	// between clicks in a sequence.
	DoubleClickDistance int `yaml:"double_click_distance"`

	// DragThreshold is the movement, in cells, at which a held button
	// becomes a drag.
	DragThreshold int `yaml:"drag_threshold"`
}

// DoubleClickTime returns the click sequence window as a duration.
func (o InputOptions) DoubleClickTime() time.Duration {
	return time.Duration(o.DoubleClickTimeMS) * time.Millisecond
}

// OptimizerOptions tunes the event pipeline.
type OptimizerOptions struct {
	// FrameIntervalMS is the dedupe window and batch flush boundary, in
	// milliseconds.
	FrameIntervalMS int `yaml:"frame_interval_ms"`

	// MoveIntervalMS is the minimum spacing between move events, in
	// milliseconds.
	MoveIntervalMS int `yaml:"move_interval_ms"`

	// DragIntervalMS is the minimum spacing between drag events, in
	// milliseconds.
	DragIntervalMS int `yaml:"drag_interval_ms"`

	// CacheCapacity bounds the coordinate cache.
	CacheCapacity int `yaml:"cache_capacity"`

	// PoolCapacity bounds the event pool.
	PoolCapacity int `yaml:"pool_capacity"`

	// EnableBatching turns on frame batching.
	EnableBatching bool `yaml:"enable_batching"`
}

// FrameInterval returns the frame interval as a duration.
func (o OptimizerOptions) FrameInterval() time.Duration {
	return time.Duration(o.FrameIntervalMS) * time.Millisecond
}

// MoveInterval returns the move spacing as a duration.
func (o OptimizerOptions) MoveInterval() time.Duration {
	return time.Duration(o.MoveIntervalMS) * time.Millisecond
}

// DragInterval returns the drag spacing as a duration.
func (o OptimizerOptions) DragInterval() time.Duration {
	return time.Duration(o.DragIntervalMS) * time.Millisecond
}

// RegistryOptions tunes the region registry.
type RegistryOptions struct {
	// HistoryLimit bounds the retained change history.
	HistoryLimit int `yaml:"history_limit"`

	// MaxDepth limits quadtree subdivision depth.
	MaxDepth int `yaml:"max_depth"`

	// SplitThreshold is the leaf population that triggers subdivision.
	SplitThreshold int `yaml:"split_threshold"`
}

// LoggingOptions configures diagnostic output.
type LoggingOptions struct {
	// Level is the minimum severity: debug, info, warn, or error.
	Level string `yaml:"level"`

	// File, if set, routes log output to a size-rotated file. Leave empty
	// to log to stderr.
	File string `yaml:"file"`

	// FileMaxSizeMB is the rotation threshold in megabytes.
	FileMaxSizeMB int `yaml:"file_max_size_mb"`

	// FileMaxBackups is the number of rotated files to keep.
	FileMaxBackups int `yaml:"file_max_backups"`
}

// Default returns the built-in options.
func Default() Options {
	return Options{
		Input: InputOptions{
			DoubleClickTimeMS:   400,
			DoubleClickDistance: 4,
			DragThreshold:       1,
		},
		Optimizer: OptimizerOptions{
			FrameIntervalMS: 16,
			MoveIntervalMS:  8,
			DragIntervalMS:  12,
			CacheCapacity:   256,
			PoolCapacity:    64,
		},
		Registry: RegistryOptions{
			HistoryLimit:   64,
			MaxDepth:       5,
			SplitThreshold: 4,
		},
		Logging: LoggingOptions{
			Level:          "info",
			FileMaxSizeMB:  10,
			FileMaxBackups: 3,
		},
	}
}

// Load reads an options file, layered over the defaults. A missing file
// is not an error: the defaults come back unchanged. The file may omit
// any subset of fields.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("read options file: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Default(), fmt.Errorf("parse options file %s: %w", path, err)
	}

	if err := opts.Validate(); err != nil {
		return Default(), fmt.Errorf("options file %s: %w", path, err)
	}
	return opts, nil
}

// Validate checks every field and reports all violations, not just the
// first.
func (o Options) Validate() error {
	var errs []error

	check := func(field string, v int, ok bool, want string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %s (got %d)", field, want, v))
		}
	}

	check("input.double_click_time_ms", o.Input.DoubleClickTimeMS, o.Input.DoubleClickTimeMS > 0, "must be positive")
	check("input.double_click_distance", o.Input.DoubleClickDistance, o.Input.DoubleClickDistance >= 0, "must be non-negative")
	check("input.drag_threshold", o.Input.DragThreshold, o.Input.DragThreshold >= 0, "must be non-negative")

	check("optimizer.frame_interval_ms", o.Optimizer.FrameIntervalMS, o.Optimizer.FrameIntervalMS > 0, "must be positive")
	check("optimizer.move_interval_ms", o.Optimizer.MoveIntervalMS, o.Optimizer.MoveIntervalMS > 0, "must be positive")
	check("optimizer.drag_interval_ms", o.Optimizer.DragIntervalMS, o.Optimizer.DragIntervalMS > 0, "must be positive")
	check("optimizer.cache_capacity", o.Optimizer.CacheCapacity, o.Optimizer.CacheCapacity > 0, "must be positive")
	check("optimizer.pool_capacity", o.Optimizer.PoolCapacity, o.Optimizer.PoolCapacity > 0, "must be positive")

	check("registry.history_limit", o.Registry.HistoryLimit, o.Registry.HistoryLimit > 0, "must be positive")
	check("registry.max_depth", o.Registry.MaxDepth, o.Registry.MaxDepth > 0, "must be positive")
	check("registry.split_threshold", o.Registry.SplitThreshold, o.Registry.SplitThreshold > 0, "must be positive")

	switch o.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: must be one of debug, info, warn, error (got %q)", o.Logging.Level))
	}

	return errors.Join(errs...)
}

// ApplyEnv overlays environment overrides. TERMCLICK_DEBUG forces debug
// logging; TERMCLICK_LOG_FILE redirects log output. getenv defaults to
// os.Getenv when nil.
func (o *Options) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	switch getenv("TERMCLICK_DEBUG") {
	case "", "0", "false":
	default:
		o.Logging.Level = "debug"
	}
	if f := getenv("TERMCLICK_LOG_FILE"); f != "" {
		o.Logging.File = f
	}
}

// LoggerConfig translates the logging section into a logger
// configuration.
func (o Options) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(o.Logging.Level)
	cfg.File = o.Logging.File
	cfg.FileMaxSizeMB = o.Logging.FileMaxSizeMB
	cfg.FileMaxBackups = o.Logging.FileMaxBackups
	return cfg
}
