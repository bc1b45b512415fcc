// Package logging builds the zap loggers used by the commands.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New returns a development logger writing to stderr at the given level.
// With json set the output is JSON encoded.
func New(level string, json bool) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "bad log level %q", level)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	if json {
		cfg.Encoding = "json"
	}
	return cfg.Build()
}
