package decoder

import "github.com/mcncl/mpexplorer/internal/reader"

// DefaultMaxDepth bounds container nesting when no limit is configured.
const DefaultMaxDepth = 10000

type options struct {
	endian          reader.EndianMode
	maxDepth        int
	continueOnError bool
}

// Option configures a decode call.
type Option func(*options)

// WithEndian selects how multi-byte fields are byte-swapped.
func WithEndian(mode reader.EndianMode) Option {
	return func(o *options) {
		o.endian = mode
	}
}

// WithMaxDepth bounds how many containers may enclose one another. Values
// below one select DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithContinueOnError makes DecodeAll record a failed message and resume
// at the following byte instead of stopping.
func WithContinueOnError(enabled bool) Option {
	return func(o *options) {
		o.continueOnError = enabled
	}
}

func newOptions(opts []Option) options {
	o := options{endian: reader.EndianAuto, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDepth < 1 {
		o.maxDepth = DefaultMaxDepth
	}
	return o
}
