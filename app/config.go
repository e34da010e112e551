package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/plus3/facet/config"
	"github.com/plus3/facet/core"
)

// LoggingConfig selects the level and handler of the application logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// Config is the file form of an application.
type Config struct {
	Title   string `toml:"title" yaml:"title"`
	Width   int    `toml:"width" yaml:"width"`
	Height  int    `toml:"height" yaml:"height"`
	Threads int    `toml:"threads" yaml:"threads"`
	// MaxFixedSteps caps the fixed steps run in one frame; the backlog
	// beyond it is dropped. Zero selects DefaultMaxFixedSteps.
	MaxFixedSteps int                       `toml:"max_fixed_steps" yaml:"max_fixed_steps"`
	FrameLimit    core.FrameRateLimitConfig `toml:"frame_limit" yaml:"frame_limit"`
	Logging       LoggingConfig             `toml:"logging" yaml:"logging"`
}

// DefaultMaxFixedSteps bounds fixed-step catch-up after a stall.
const DefaultMaxFixedSteps = 8

// DefaultConfig returns a 1280x720 window limited to core.DefaultFPS.
func DefaultConfig() Config {
	return Config{
		Title:         "facet",
		Width:         1280,
		Height:        720,
		MaxFixedSteps: DefaultMaxFixedSteps,
		FrameLimit: core.FrameRateLimitConfig{
			Strategy: core.Yield.String(),
			FPS:      core.DefaultFPS,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.Load(path, &cfg, config.Strict()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger builds a logger writing to w.
func (c LoggingConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("app: logging level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("app: unknown logging format %q", c.Format)
}
