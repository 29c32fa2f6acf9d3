package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Timestamp sources for naming.timestamp_source.
const (
	TimestampNow   = "now"
	TimestampMtime = "mtime"
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Audio       AudioConfig       `yaml:"audio"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Tools       ToolsConfig       `yaml:"tools"`
	Naming      NamingConfig      `yaml:"naming"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Watch       WatchConfig       `yaml:"watch"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Gemini      GeminiConfig      `yaml:"gemini"`
}

type PathsConfig struct {
	// Input is the folder monitored by watch mode.
	Input string `yaml:"input"`
	// Output holds every canonical artifact. Empty means beside the input file.
	Output string `yaml:"output"`
}

type AudioConfig struct {
	Format  string `yaml:"format"`
	Bitrate string `yaml:"bitrate"`
}

type WhisperConfig struct {
	BinaryPath string   `yaml:"binary_path"`
	Model      string   `yaml:"model"`
	Languages  []string `yaml:"languages"`
}

type ToolsConfig struct {
	FFmpeg      string   `yaml:"ffmpeg"`
	FFprobe     string   `yaml:"ffprobe"`
	SearchPaths []string `yaml:"search_paths"`
}

type NamingConfig struct {
	TimestampSource string `yaml:"timestamp_source"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type WatchConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay"`
	Extensions  []string      `yaml:"extensions"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist and was not requested explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil && errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	return Load(path)
}

// Default returns a validated configuration built purely from defaults.
func Default() *Config {
	cfg := &Config{}
	// Defaults alone always validate.
	_ = cfg.Validate()
	return cfg
}

// Validate fills unset fields with defaults and rejects invalid values.
func (c *Config) Validate() error {
	c.applyDefaults()

	if _, ok := audioFormats[c.Audio.Format]; !ok {
		return fmt.Errorf("audio.format %q is not supported (m4a, mp3, opus, wav)", c.Audio.Format)
	}
	if _, ok := modelTiers[c.Whisper.Model]; !ok {
		return fmt.Errorf("whisper.model %q is not supported (tiny, base, small, medium, large)", c.Whisper.Model)
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}

	seen := make(map[string]struct{}, len(c.Whisper.Languages))
	for i, code := range c.Whisper.Languages {
		normalized, err := NormalizeLanguage(code)
		if err != nil {
			return fmt.Errorf("whisper.languages[%d]: %w", i, err)
		}
		if _, dup := seen[normalized]; dup {
			return fmt.Errorf("whisper.languages: duplicate language %q", normalized)
		}
		seen[normalized] = struct{}{}
		c.Whisper.Languages[i] = normalized
	}

	switch c.Naming.TimestampSource {
	case TimestampNow, TimestampMtime:
	default:
		return fmt.Errorf("naming.timestamp_source %q must be %q or %q", c.Naming.TimestampSource, TimestampNow, TimestampMtime)
	}

	if c.Performance.MaxConcurrent < 0 {
		return fmt.Errorf("performance.max_concurrent must not be negative")
	}
	if c.Watch.SettleDelay < 0 {
		return fmt.Errorf("watch.settle_delay must not be negative")
	}

	for i, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Watch.Extensions[i] = ext
	}

	return nil
}

var audioFormats = map[string]struct{}{
	"m4a":  {},
	"mp3":  {},
	"opus": {},
	"wav":  {},
}

var modelTiers = map[string]struct{}{
	"tiny":   {},
	"base":   {},
	"small":  {},
	"medium": {},
	"large":  {},
}

func (c *Config) applyDefaults() {
	c.Audio.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Audio.Format), "."))
	if c.Audio.Format == "" {
		c.Audio.Format = "m4a"
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = "192k"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper"
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "medium"
	}
	if len(c.Whisper.Languages) == 0 {
		c.Whisper.Languages = []string{"en", "he"}
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if c.Tools.SearchPaths == nil {
		c.Tools.SearchPaths = []string{"/opt/homebrew/bin", "/usr/local/bin"}
	}
	if c.Naming.TimestampSource == "" {
		c.Naming.TimestampSource = TimestampNow
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.File == "" {
		c.Logging.File = DefaultLogFile()
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Watch.SettleDelay == 0 {
		c.Watch.SettleDelay = 500 * time.Millisecond
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = []string{
			".mp4", ".mov", ".avi", ".mkv", ".webm", ".flv", ".wmv", ".m4v", ".mpg", ".mpeg",
			".m4a", ".mp3", ".opus", ".wav",
		}
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
}

// DefaultLogFile is the persistent log location used when logging.file is unset.
func DefaultLogFile() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "transcribe-flow", "pipeline.log")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "pipeline.log"
	}
	return filepath.Join(home, ".local", "state", "transcribe-flow", "pipeline.log")
}
