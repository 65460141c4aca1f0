package batch

import (
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
)

// Default option values used by DefaultOptions.
const (
	defaultActions       = 1000
	defaultFlushInterval = time.Second
	defaultBufferLimit   = 10000
)

// ConsistencyLevel is the write consistency hint forwarded to the sink.
// It is advisory metadata only, the engine never interprets it.
type ConsistencyLevel string

// Enum of consistency levels understood by InfluxDB.
const (
	ConsistencyAny    ConsistencyLevel = "any"
	ConsistencyOne    ConsistencyLevel = "one"
	ConsistencyQuorum ConsistencyLevel = "quorum"
	ConsistencyAll    ConsistencyLevel = "all"
)

// ExceptionHandler is called with the points of a flush that could not be
// delivered and the error that caused it. It runs on the engine's background
// executor, never on the thread that submitted the points, and must not
// block it for long.
type ExceptionHandler func(points []*influx.Point, err error)

// Options describes the batching behaviour of an Engine. The zero value is
// not usable, start from DefaultOptions. Options is an immutable value type,
// every mutator returns a modified copy, so a single base value can safely
// be shared and specialized across goroutines.
type Options struct {
	actions        int
	flushInterval  time.Duration
	jitterInterval time.Duration
	bufferLimit    int
	consistency    ConsistencyLevel
	handler        ExceptionHandler
	factory        ExecutorFactory
}

// DefaultOptions holds the default batching configuration: flush every 1000
// points or every second, a 10000-point buffer, consistency 'one', no-op
// exception handler and a goroutine-backed executor.
var DefaultOptions = Options{
	actions:       defaultActions,
	flushInterval: defaultFlushInterval,
	bufferLimit:   defaultBufferLimit,
	consistency:   ConsistencyOne,
}

// Actions returns a copy of o flushing when n points are buffered.
func (o Options) Actions(n int) Options {
	o.actions = n
	return o
}

// FlushInterval returns a copy of o with the given periodic flush interval.
func (o Options) FlushInterval(d time.Duration) Options {
	o.flushInterval = d
	return o
}

// JitterInterval returns a copy of o with the given jitter bound. A random
// delay in [0, d) is added to every flush interval to avoid many clients
// hammering the server in lockstep.
func (o Options) JitterInterval(d time.Duration) Options {
	o.jitterInterval = d
	return o
}

// BufferLimit returns a copy of o retaining at most n points. A limit larger
// than Actions gives the engine headroom to hold on to batches that failed
// with a retryable error.
func (o Options) BufferLimit(n int) Options {
	o.bufferLimit = n
	return o
}

// Consistency returns a copy of o with the given write consistency hint.
func (o Options) Consistency(c ConsistencyLevel) Options {
	o.consistency = c
	return o
}

// ExceptionHandler returns a copy of o calling h for every flush whose
// points were dropped for good.
func (o Options) ExceptionHandler(h ExceptionHandler) Options {
	o.handler = h
	return o
}

// ExecutorFactory returns a copy of o creating its background executor
// with f.
func (o Options) ExecutorFactory(f ExecutorFactory) Options {
	o.factory = f
	return o
}

// GetActions returns the count threshold that triggers an eager flush.
func (o Options) GetActions() int { return o.actions }

// GetFlushInterval returns the periodic flush interval.
func (o Options) GetFlushInterval() time.Duration { return o.flushInterval }

// GetJitterInterval returns the upper bound of the random flush delay.
func (o Options) GetJitterInterval() time.Duration { return o.jitterInterval }

// GetBufferLimit returns the maximum amount of points retained in the buffer.
func (o Options) GetBufferLimit() int { return o.bufferLimit }

// GetConsistency returns the write consistency hint.
func (o Options) GetConsistency() ConsistencyLevel { return o.consistency }

// GetExceptionHandler returns the configured exception handler.
func (o Options) GetExceptionHandler() ExceptionHandler { return o.handler }

// GetExecutorFactory returns the configured executor factory.
func (o Options) GetExecutorFactory() ExecutorFactory { return o.factory }

// validate checks the option values for consistency. Called by Enable
// before any background context is created.
func (o Options) validate() error {
	if o.actions <= 0 {
		return errNonPositiveActions
	}
	if o.flushInterval < 0 {
		return errNegativeFlushInterval
	}
	if o.jitterInterval < 0 {
		return errNegativeJitterInterval
	}
	if o.bufferLimit < 0 {
		return errNegativeBufferLimit
	}
	return nil
}

// withDefaults fills in the callback and factory fields that cannot have
// useful zero values.
func (o Options) withDefaults() Options {
	if o.handler == nil {
		o.handler = func([]*influx.Point, error) {}
	}
	if o.factory == nil {
		o.factory = NewGoExecutor
	}
	if o.bufferLimit == 0 {
		o.bufferLimit = defaultBufferLimit
	}
	return o
}
