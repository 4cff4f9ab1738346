// Package config provides configuration loading from defaults, environment
// variables, an optional .env file and an optional YAML file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/linuxmatters/jivechunk/internal/detect"
	"github.com/linuxmatters/jivechunk/internal/repack"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "JIVECHUNK_"

// ErrInvalid is returned when configuration fails to load or validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings for one run.
type Config struct {
	// Silence detection
	SilenceMinLenMs int     `env:"SILENCE_MIN_LEN_MS, default=1000" yaml:"silence_min_len_ms" validate:"gt=0"`
	SilenceThreshDB float64 `env:"SILENCE_THRESH_DB, default=-60" yaml:"silence_thresh_db" validate:"lte=0"`
	PaddingMs       int     `env:"PADDING_MS, default=800" yaml:"padding_ms" validate:"gte=0"`
	ScanStepMs      int     `env:"SCAN_STEP_MS, default=2" yaml:"scan_step_ms" validate:"gt=0"`

	// Repacking
	Mode             string  `env:"MODE, default=max" yaml:"mode" validate:"oneof=max min"`
	DurationBoundSec float64 `env:"SECONDS, default=180" yaml:"seconds" validate:"gt=0"`

	// Output
	OutputDir    string `env:"OUTPUT_DIR, default=chunks" yaml:"output_dir" validate:"required"`
	CombinedPath string `env:"COMBINED, default=combined_audio.wav" yaml:"combined"`

	// Tools
	FFmpegPath string `env:"FFMPEG, default=ffmpeg" yaml:"ffmpeg" validate:"required"`

	// Logging
	LogFormat string `env:"LOG_FORMAT, default=text" yaml:"log_format" validate:"oneof=text json"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFile   string `env:"LOG_FILE" yaml:"log_file"`
}

// FromEnv builds a Config from defaults overlaid with JIVECHUNK_* variables
// found through lookuper.
func FromEnv(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config file %s: %w", ErrInvalid, path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse config file %s: %w", ErrInvalid, path, err)
	}
	return nil
}

// Load reads .env from the working directory if present, then the process
// environment, then the YAML file at path when path is not empty.
// Variables already set in the environment win over .env entries.
func Load(ctx context.Context, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrInvalid, err)
	}

	cfg, err := FromEnv(ctx, envconfig.OsLookuper())
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// DetectParams converts the detection settings.
func (c *Config) DetectParams() detect.Params {
	return detect.Params{
		MinSilenceLen:   time.Duration(c.SilenceMinLenMs) * time.Millisecond,
		SilenceThreshDB: c.SilenceThreshDB,
		Padding:         time.Duration(c.PaddingMs) * time.Millisecond,
		ScanStep:        time.Duration(c.ScanStepMs) * time.Millisecond,
	}
}

// RepackMode returns the configured repacking mode.
func (c *Config) RepackMode() repack.Mode {
	return repack.Mode(strings.ToLower(c.Mode))
}

// Bound returns the duration bound M or m.
func (c *Config) Bound() time.Duration {
	return time.Duration(c.DurationBoundSec * float64(time.Second))
}

// FirstIndex is the file number of the first chunk: bounded-max output is
// numbered from 0, bounded-min output from 1.
func (c *Config) FirstIndex() int {
	if c.RepackMode() == repack.ModeMin {
		return 1
	}
	return 0
}

// String returns a one-line summary of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Mode: %s, Seconds: %g, SilenceMinLenMs: %d, SilenceThreshDB: %g, PaddingMs: %d, ScanStepMs: %d, OutputDir: %s, Combined: %s, FFmpeg: %s}",
		c.Mode,
		c.DurationBoundSec,
		c.SilenceMinLenMs,
		c.SilenceThreshDB,
		c.PaddingMs,
		c.ScanStepMs,
		c.OutputDir,
		c.CombinedPath,
		c.FFmpegPath,
	)
}

// FileFromArgs returns the value of a --config flag in args, so the file
// can be read before the command line is parsed for real.
func FileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
