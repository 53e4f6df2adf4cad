// Package config holds run settings for artsindex.
//
// Settings come from command-line flags whose defaults fall back to environment
// variables. Load normalizes and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pfrederiksen/artsindex/internal/export"
	"github.com/pfrederiksen/artsindex/internal/record"
	"github.com/pfrederiksen/artsindex/internal/scraper"
)

// Environment variables used as flag defaults
const (
	EnvBaseURL   = "ARTSINDEX_BASE_URL"
	EnvStates    = "ARTSINDEX_STATES"
	EnvOutput    = "ARTSINDEX_OUTPUT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// Config holds all run settings
type Config struct {
	States    []string      `validate:"required,min=1,dive,len=2,alpha,uppercase"`
	BaseURL   string        `validate:"required,http_url"`
	Metric    string        `validate:"required"`
	Output    string        `validate:"required"`
	Sheet     string        `validate:"required,max=31,excludesall=:\\/?*[]"`
	Format    string
	Workers   int           `validate:"min=1,max=32"`
	Retries   int           `validate:"min=0,max=10"`
	Timeout   time.Duration `validate:"gt=0"`
	Summary   string        `validate:"oneof=text json"`
	LogLevel  string        `validate:"oneof=debug info warn error"`
	LogFormat string        `validate:"oneof=json console"`
}

// Default returns the built-in settings: Delaware only, written to
// "Nonprofit Revenue.xlsx" in the working directory. Output stays empty unless
// ARTSINDEX_OUTPUT is set so Normalize can pick the extension for the format.
func Default() *Config {
	return &Config{
		States:    append([]string(nil), record.DefaultStates...),
		BaseURL:   EnvOrDefault(EnvBaseURL, scraper.DefaultBaseURL),
		Metric:    scraper.DefaultMetric,
		Output:    EnvOrDefault(EnvOutput, ""),
		Sheet:     export.DefaultSheet,
		Format:    string(export.FormatXLSX),
		Workers:   1,
		Retries:   0,
		Timeout:   scraper.Timeout,
		Summary:   "text",
		LogLevel:  EnvOrDefault(EnvLogLevel, "info"),
		LogFormat: EnvOrDefault(EnvLogFormat, "json"),
	}
}

// DefaultStates returns the state list from ARTSINDEX_STATES, or the built-in default
func DefaultStates() []string {
	if v := os.Getenv(EnvStates); v != "" {
		return SplitStates([]string{v})
	}
	return append([]string(nil), record.DefaultStates...)
}

// EnvOrDefault returns the environment variable or def when it is unset or empty
func EnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// SplitStates flattens comma-separated values and normalizes each code
func SplitStates(values []string) []string {
	var states []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				states = append(states, s)
			}
		}
	}
	return states
}

// Normalize trims and case-folds user-supplied values
func (c *Config) Normalize() {
	c.States = SplitStates(c.States)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Output = strings.TrimSpace(c.Output)
	if c.Output == "" {
		c.Output = export.DefaultPathFor(export.Format(c.Format))
	}
	c.Summary = strings.ToLower(strings.TrimSpace(c.Summary))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and reports all failures at once
func (c *Config) Validate() error {
	var msgs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	if format, err := export.ParseFormat(c.Format); err != nil {
		msgs = append(msgs, "Config.Format: "+err.Error())
	} else if err := export.CheckPath(c.Output, format); err != nil {
		msgs = append(msgs, "Config.Output: "+err.Error())
	}

	if len(msgs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Load normalizes and validates c
func (c *Config) Load() error {
	c.Normalize()
	return c.Validate()
}
