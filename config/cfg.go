package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	MarkdownConfig struct {
		Typographer bool `yaml:"typographer"`
		Unsafe      bool `yaml:"unsafe"`
	}

	DocumentConfig struct {
		WordsPerMinute  int            `yaml:"words_per_minute" validate:"min=1"`
		DefaultLanguage string         `yaml:"default_language" validate:"required,bcp47_language_tag"`
		Languages       []string       `yaml:"languages" validate:"min=1,dive,bcp47_language_tag"`
		Markdown        MarkdownConfig `yaml:"markdown"`
	}

	// TOCConfig holds timing and geometry of active heading tracking.
	TOCConfig struct {
		Throttle        time.Duration `yaml:"throttle" validate:"gt=0"`
		LockWindow      time.Duration `yaml:"lock_window" validate:"gt=0"`
		SettleTolerance float64       `yaml:"settle_tolerance" validate:"gte=0"`
		ReadingLine     float64       `yaml:"reading_line" validate:"gte=0"`
		ViewportAbove   float64       `yaml:"viewport_above" validate:"gte=0,lte=1"`
		ViewportBelow   float64       `yaml:"viewport_below" validate:"gt=0,lte=1"`
	}

	// GalleryConfig holds discovery rules and animation choreography of the
	// image overlay.
	GalleryConfig struct {
		ContentSelector     string        `yaml:"content_selector" validate:"required"`
		IgnoreMarker        string        `yaml:"ignore_marker" validate:"required"`
		ZoomDuration        time.Duration `yaml:"zoom_duration" validate:"gt=0"`
		FadeDuration        time.Duration `yaml:"fade_duration" validate:"gt=0"`
		CloseFallback       time.Duration `yaml:"close_fallback" validate:"gt=0"`
		ScrollSettle        time.Duration `yaml:"scroll_settle" validate:"gte=0"`
		MaxViewportFraction float64       `yaml:"max_viewport_fraction" validate:"gt=0,lte=1"`
		Easing              string        `yaml:"easing" validate:"required"`
	}

	ViewCountConfig struct {
		Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
		Token    SecretString  `yaml:"token,omitempty"`
		Attempts int           `yaml:"attempts" validate:"min=1,max=10"`
		Spacing  time.Duration `yaml:"spacing" validate:"gte=0"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig  `yaml:"document"`
		TOC       TOCConfig       `yaml:"toc"`
		Gallery   GalleryConfig   `yaml:"gallery"`
		ViewCount ViewCountConfig `yaml:"view_count"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Default returns validated configuration built from embedded template only.
// Handy for library users and tests which do not care about files.
func Default() *Config {
	cfg, err := LoadConfiguration("")
	if err != nil {
		// embedded template is part of the build, this should never happen
		panic(fmt.Sprintf("embedded configuration is broken: %v", err))
	}
	return cfg
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
