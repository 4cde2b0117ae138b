package config

import (
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
)

// ValidateConfig validates a configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	checks := []func() error{
		cv.validateVersion,
		cv.validatePaths,
		cv.validateExcludes,
		cv.validateMarkdown,
		cv.validateBuild,
		cv.validatePreview,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateVersion() error {
	if cv.config.Version != CurrentVersion {
		return ferrors.ConfigError("unsupported configuration version").
			WithContext("version", cv.config.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	return nil
}

// validatePaths rejects an output directory that would replace a source directory.
func (cv *configurationValidator) validatePaths() error {
	out := filepath.Clean(cv.config.Output.Dir)
	for field, dir := range map[string]string{
		"content.dir": cv.config.Content.Dir,
		"static.dir":  cv.config.Static.Dir,
	} {
		if out == filepath.Clean(dir) {
			return ferrors.ValidationError("output.dir must differ from " + field).
				WithContext("dir", out).
				Build()
		}
	}
	if out == "." || out == string(filepath.Separator) {
		return ferrors.ValidationError("output.dir must not be the working directory or filesystem root").
			WithContext("dir", cv.config.Output.Dir).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateExcludes() error {
	for _, pattern := range cv.config.Content.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return ferrors.ValidationError("invalid content.exclude pattern").
				WithContext("pattern", pattern).
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateMarkdown() error {
	if _, err := markdown.ParseEngine(cv.config.Markdown.Engine); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid markdown.engine").
			Fatal().
			WithContext("engine", cv.config.Markdown.Engine).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	if cv.config.Build.Workers < 1 {
		return ferrors.ValidationError("build.workers must be at least 1").
			WithContext("workers", cv.config.Build.Workers).
			Build()
	}
	if cv.config.Build.Incremental && cv.config.Build.StatePath == "" {
		return ferrors.ValidationError("build.state_path is required for incremental builds").Build()
	}
	return nil
}

func (cv *configurationValidator) validatePreview() error {
	d, err := time.ParseDuration(cv.config.Preview.Debounce)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid preview.debounce").
			Fatal().
			WithContext("debounce", cv.config.Preview.Debounce).
			Build()
	}
	if d < 0 {
		return ferrors.ValidationError("preview.debounce must not be negative").
			WithContext("debounce", cv.config.Preview.Debounce).
			Build()
	}
	return nil
}
