package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given on the command line.
const DefaultPath = "mdsite.yaml"

// CurrentVersion is the only configuration schema version understood by Load.
const CurrentVersion = "1"

// Config represents the site configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Content  ContentConfig  `yaml:"content"`
	Static   StaticConfig   `yaml:"static"`
	Template TemplateConfig `yaml:"template"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Output   OutputConfig   `yaml:"output"`
	Build    BuildConfig    `yaml:"build"`
	Logging  LoggingConfig  `yaml:"logging"`
	Preview  PreviewConfig  `yaml:"preview"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ContentConfig locates the Markdown sources.
type ContentConfig struct {
	Dir     string   `yaml:"dir"`
	Exclude []string `yaml:"exclude,omitempty"` // doublestar globs relative to Dir
}

// StaticConfig locates assets copied verbatim into the output tree.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// TemplateConfig selects the page template. An empty path uses the built-in template.
type TemplateConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MarkdownConfig selects the Markdown engine (native|commonmark).
type MarkdownConfig struct {
	Engine string `yaml:"engine,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean"` // Replace the output directory instead of writing into it
}

// BuildConfig holds build tuning knobs.
type BuildConfig struct {
	Workers     int    `yaml:"workers,omitempty"`
	FailFast    *bool  `yaml:"fail_fast,omitempty"`
	Incremental bool   `yaml:"incremental,omitempty"`
	StatePath   string `yaml:"state_path,omitempty"`
	CheckLinks  bool   `yaml:"check_links,omitempty"`
}

// FailFastEnabled reports whether the first page error aborts the build. Defaults to true.
func (b BuildConfig) FailFastEnabled() bool {
	return b.FailFast == nil || *b.FailFast
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Debounce string `yaml:"debounce,omitempty"`
}

// DebounceDuration parses Debounce. Load has already validated it.
func (p PreviewConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(p.Debounce)
	if err != nil {
		return defaultDebounce
	}
	return d
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.NotFoundError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to read configuration file").WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	return Parse(data)
}

// Parse builds a configuration from YAML bytes. ${VAR} references are expanded from the
// environment before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").Build()
	}

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	failFast := true
	example := Config{
		Version: CurrentVersion,
		Content: ContentConfig{
			Dir:     "content",
			Exclude: []string{"**/_drafts/**"},
		},
		Static:   StaticConfig{Dir: "static"},
		Template: TemplateConfig{Path: "template.html"},
		Markdown: MarkdownConfig{Engine: "native"},
		Output:   OutputConfig{Dir: "public", Clean: true},
		Build: BuildConfig{
			Workers:     4,
			FailFast:    &failFast,
			Incremental: false,
			StatePath:   defaultStatePath,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Preview: PreviewConfig{Addr: defaultPreviewAddr, Debounce: defaultDebounce.String()},
		Metrics: MetricsConfig{Enabled: false, Path: defaultMetricsPath},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example configuration").Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
