package mongopatch

import (
	"github.com/go-logr/logr"
	"github.com/mitchellh/copystructure"
)

// Option configures how a patch is translated.
type Option interface {
	apply(c *config)
}

type config struct {
	strictPathReuse  bool
	strictArrayMerge bool
	numericShorthand bool
	copier           func(any) (any, error)
	log              logr.Logger
}

func newConfig(opts []Option) *config {
	c := &config{log: logr.Discard()}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) { f(c) }

// WithStrictPathReuse makes an operation fail with a RemovedPathError when its
// path is under a field removed, or moved away, by an earlier operation of the
// same patch. It is off by default.
func WithStrictPathReuse(strict bool) Option {
	return optionFunc(func(c *config) { c.strictPathReuse = strict })
}

// WithStrictArrayMerge makes an array add that cannot join the open $push on
// its location fail with an ArrayMergeError instead of starting a new stage.
// It is off by default.
func WithStrictArrayMerge(strict bool) Option {
	return optionFunc(func(c *config) { c.strictArrayMerge = strict })
}

// WithNumericShorthand enables arithmetic replace values. A string value
// starting with '+' or '-' becomes $inc, one starting with '*' or '×' becomes
// $mul. Strings that do not parse as numbers are still written with $set.
func WithNumericShorthand(enabled bool) Option {
	return optionFunc(func(c *config) { c.numericShorthand = enabled })
}

// WithLogger sets the logger used to trace stage allocation. Messages are
// emitted at V(1).
func WithLogger(log logr.Logger) Option {
	return optionFunc(func(c *config) { c.log = log })
}

// WithValueCopier makes every value written to a stage go through fn first.
func WithValueCopier(fn func(any) (any, error)) Option {
	return optionFunc(func(c *config) { c.copier = fn })
}

// CopyValues deep copies every value written to a stage, so the stages do not
// share maps or slices with the input.
func CopyValues() Option {
	return WithValueCopier(copystructure.Copy)
}
