package config

import (
	"time"

	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// BatchConfig represents the batching configuration of a sink's engine.
// Zero-valued fields fall back to the defaults of batch.DefaultOptions.
type BatchConfig struct {

	// Flush a batch when it holds this many points.
	Actions int `mapstructure:"actions"`

	// Flush pending points at this interval.
	FlushInterval time.Duration `mapstructure:"flushInterval"`

	// Upper bound of the random delay added to each flush interval.
	JitterInterval time.Duration `mapstructure:"jitterInterval"`

	// Maximum amount of points retained for delivery, including points
	// held for a retry.
	BufferLimit int `mapstructure:"bufferLimit"`

	// Write consistency hint forwarded to the sink.
	Consistency batch.ConsistencyLevel `mapstructure:"consistency"`
}

// Options applies the non-zero fields of the BatchConfig to
// batch.DefaultOptions and returns the result.
func (c BatchConfig) Options() batch.Options {

	opts := batch.DefaultOptions

	if c.Actions != 0 {
		opts = opts.Actions(c.Actions)
	}
	if c.FlushInterval != 0 {
		opts = opts.FlushInterval(c.FlushInterval)
	}
	if c.JitterInterval != 0 {
		opts = opts.JitterInterval(c.JitterInterval)
	}
	if c.BufferLimit != 0 {
		opts = opts.BufferLimit(c.BufferLimit)
	}
	if c.Consistency != "" {
		opts = opts.Consistency(c.Consistency)
	}

	return opts
}
