// Package config loads and validates the run configuration. A Config is
// built once at startup, validated before the first record, and read-only
// for the rest of the run.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mohammad-safakhou/corpusfilter/internal/quality"
)

// Config holds all configuration for a filtering run.
type Config struct {
	Filter      FilterConfig      `mapstructure:"filter"`
	Quality     QualityConfig     `mapstructure:"quality"`
	Classifiers ClassifiersConfig `mapstructure:"classifiers"`
	Workers     WorkersConfig     `mapstructure:"workers"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Server      ServerConfig      `mapstructure:"server"`
}

// FilterConfig drives the decision policy gates.
type FilterConfig struct {
	AllowedLanguages      []string `mapstructure:"allowed_languages"`
	MinLanguageConfidence float64  `mapstructure:"min_language_confidence"`
	NSFWThreshold         float64  `mapstructure:"nsfw_threshold"`
	ToxicThreshold        float64  `mapstructure:"toxic_threshold"`
	MaskPII               bool     `mapstructure:"mask_pii"`
}

// AllowsLanguage reports whether code is in the allowed set.
func (f FilterConfig) AllowsLanguage(code string) bool {
	for _, l := range f.AllowedLanguages {
		if strings.EqualFold(l, code) {
			return true
		}
	}
	return false
}

func (f FilterConfig) Validate() error {
	if len(f.AllowedLanguages) == 0 {
		return fmt.Errorf("filter.allowed_languages must not be empty")
	}
	for name, v := range map[string]float64{
		"filter.min_language_confidence": f.MinLanguageConfidence,
		"filter.nsfw_threshold":          f.NSFWThreshold,
		"filter.toxic_threshold":         f.ToxicThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	return nil
}

// QualityConfig toggles the heuristic filter and carries its bounds.
type QualityConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Bounds  quality.Bounds `mapstructure:"bounds"`
}

func (q QualityConfig) Validate() error {
	b := q.Bounds
	if b.MinWords < 0 || b.MaxWords < b.MinWords {
		return fmt.Errorf("quality.bounds word counts invalid: min=%d max=%d", b.MinWords, b.MaxWords)
	}
	if b.MinMeanWordLength < 0 || b.MaxMeanWordLength < b.MinMeanWordLength {
		return fmt.Errorf("quality.bounds mean word lengths invalid: min=%v max=%v", b.MinMeanWordLength, b.MaxMeanWordLength)
	}
	for name, v := range map[string]float64{
		"quality.bounds.max_ellipsis_line_ratio": b.MaxEllipsisLineRatio,
		"quality.bounds.max_bullet_line_ratio":   b.MaxBulletLineRatio,
		"quality.bounds.min_alpha_word_ratio":    b.MinAlphaWordRatio,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	return nil
}

// ClassifiersConfig points at the external model servers. An empty
// language endpoint selects the in-process detector, empty harmful
// endpoints degrade to benign, and an empty quality endpoint leaves the
// heuristic bounds as the only quality verdict.
type ClassifiersConfig struct {
	LanguageEndpoint string        `mapstructure:"language_endpoint"`
	NSFWEndpoint     string        `mapstructure:"nsfw_endpoint"`
	ToxicityEndpoint string        `mapstructure:"toxicity_endpoint"`
	QualityEndpoint  string        `mapstructure:"quality_endpoint"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

func (c ClassifiersConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("classifiers.timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// WorkersConfig bounds the record-parallel pool.
type WorkersConfig struct {
	Count int `mapstructure:"count"`
}

func (w WorkersConfig) Validate() error {
	if w.Count < 0 {
		return fmt.Errorf("workers.count must be >= 0 (0 = NumCPU), got %d", w.Count)
	}
	return nil
}

// TelemetryConfig controls the prometheus listener.
type TelemetryConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port must be > 0 when telemetry is enabled")
	}
	return nil
}

// ServerConfig configures the optional HTTP API.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// Validate checks every section. Any error here is fatal: the run must not
// start on a bad configuration.
func (c *Config) Validate() error {
	if err := c.Filter.Validate(); err != nil {
		return err
	}
	if err := c.Quality.Validate(); err != nil {
		return err
	}
	if err := c.Classifiers.Validate(); err != nil {
		return err
	}
	if err := c.Workers.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("filter.allowed_languages", []string{"en"})
	v.SetDefault("filter.min_language_confidence", 0.5)
	v.SetDefault("filter.nsfw_threshold", 0.95)
	v.SetDefault("filter.toxic_threshold", 0.99)
	v.SetDefault("filter.mask_pii", true)

	b := quality.DefaultBounds()
	v.SetDefault("quality.enabled", true)
	v.SetDefault("quality.bounds.min_words", b.MinWords)
	v.SetDefault("quality.bounds.max_words", b.MaxWords)
	v.SetDefault("quality.bounds.min_mean_word_length", b.MinMeanWordLength)
	v.SetDefault("quality.bounds.max_mean_word_length", b.MaxMeanWordLength)
	v.SetDefault("quality.bounds.max_ellipsis_line_ratio", b.MaxEllipsisLineRatio)
	v.SetDefault("quality.bounds.max_bullet_line_ratio", b.MaxBulletLineRatio)
	v.SetDefault("quality.bounds.min_alpha_word_ratio", b.MinAlphaWordRatio)
	v.SetDefault("quality.bounds.require_stopword", b.RequireStopword)

	v.SetDefault("classifiers.timeout", 10*time.Second)
	v.SetDefault("workers.count", 0)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.metrics_port", 9090)
	v.SetDefault("server.address", ":10010")
}

// LoadConfig reads the YAML config at path (or the defaults when path is
// empty and no config file is found) plus CORPUSFILTER_* environment
// overrides, then validates.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CORPUSFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
		// No config file anywhere on the search path: run on defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("fatal error config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
