// Package config holds the settings of the ebmlwrite command.
package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Input formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Output compression.
const (
	CompressNone = "none"
	CompressZstd = "zstd"
)

// Config is filled from command line flags. The conf tag names the flag
// reported in validation errors.
type Config struct {
	Input    string `conf:"input" validate:"required"`
	Output   string `conf:"out"`
	Format   string `conf:"format" validate:"omitempty,oneof=yaml json"`
	Compress string `conf:"compress" validate:"oneof=none zstd"`
	LogLevel string `conf:"log-level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `conf:"log-json"`
}

// Default returns a config with every optional setting filled in.
func Default() Config {
	return Config{
		Compress: CompressNone,
		LogLevel: "warn",
	}
}

// Validate checks c against its validation rules and resolves the input
// format from the file extension when it was not given.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("conf"), ",", 2)[0]
	})
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if c.Format == "" {
		c.Format = formatOf(c.Input)
	}
	return nil
}

// Stdout reports whether output goes to standard output.
func (c *Config) Stdout() bool {
	return c.Output == "" || c.Output == "-"
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}
