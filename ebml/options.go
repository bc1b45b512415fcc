package ebml

import "go.uber.org/zap"

// Option configures a TagWriter or Encoder.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for debug output. Nil means no logging.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}
