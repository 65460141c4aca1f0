package batch

import (
	"math/rand"
	"sync"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	log "github.com/sirupsen/logrus"
)

// Engine accumulates individually submitted points and flushes them to a
// Writer in batches, either when a count threshold is reached or when a
// periodic (jittered) timer fires. A zero Engine is disabled, call Enable
// to start batching.
type Engine struct {
	writer Writer

	mu        sync.Mutex
	enabled   bool
	opts      Options
	threshold int
	buf       *buffer
	strat     batchWriter
	exec      Executor
	quit      chan struct{}

	stats Stats
}

// New returns a disabled Engine delivering its batches to w.
func New(w Writer) *Engine {
	return &Engine{writer: w}
}

// Enable validates opts and starts batching. Returns a configuration error
// before any background context is created when the options are invalid,
// and an error when the engine is already enabled.
func (e *Engine) Enable(opts Options) error {

	if err := opts.validate(); err != nil {
		return err
	}
	opts = opts.withDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enabled {
		return errAlreadyEnabled
	}

	buf := newBuffer(opts.bufferLimit)

	// Select the delivery strategy once, based on the headroom the buffer
	// has beyond the flush threshold.
	threshold := opts.actions
	var strat batchWriter
	if opts.bufferLimit <= opts.actions {
		// No room to hold a failed batch, every flush is best-effort
		// and capacity doubles as the count trigger.
		threshold = opts.bufferLimit
		strat = &oneShotWriter{
			w:           e.writer,
			consistency: opts.consistency,
			handler:     opts.handler,
			stats:       &e.stats,
		}
	} else {
		strat = &retryWriter{
			w:           e.writer,
			consistency: opts.consistency,
			handler:     opts.handler,
			stats:       &e.stats,
			buf:         buf,
		}
	}

	exec := opts.factory()
	quit := make(chan struct{})

	// A flush interval of zero disables the timer trigger, leaving only
	// the count trigger.
	if opts.flushInterval > 0 {
		exec.Go(func() {
			e.runTimer(buf, strat, opts, threshold, quit)
		})
	}

	e.opts = opts
	e.threshold = threshold
	e.buf = buf
	e.strat = strat
	e.exec = exec
	e.quit = quit
	e.enabled = true

	return nil
}

// Submit appends a point to the buffer. It never blocks on network I/O;
// when the buffer reaches the flush threshold the drained batch is handed
// to the background executor. Returns an error when batching is not
// enabled. Safe for concurrent use.
func (e *Engine) Submit(p *influx.Point) error {

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		return errNotEnabled
	}

	evicted, n := e.buf.enqueue(p)
	e.stats.IncrPointsSubmitted()
	e.stats.SetBufferLength(n)

	if evicted != nil {
		e.stats.IncrPointsDropped(1)

		ev := []*influx.Point{evicted}
		handler := e.opts.handler
		e.exec.Go(func() {
			handler(ev, ErrBufferOverflow)
		})
	}

	// Count trigger. Drain under the engine lock so the timer trigger can
	// never pick up the same points, then deliver on the executor.
	if n >= e.threshold {
		if batch := e.buf.drain(e.threshold); batch != nil {
			e.stats.SetBufferLength(e.buf.len())

			strat := e.strat
			e.exec.Go(func() {
				strat.write(batch)
			})
		}
	}

	return nil
}

// Disable stops batching. It cancels the timer, waits for all background
// work to finish and synchronously delivers any remaining buffered points
// in a final best-effort pass before returning. Failures during the final
// pass are reported to the exception handler and never retried. Calling
// Disable on a disabled engine is a no-op.
func (e *Engine) Disable() {

	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = false

	buf, exec, quit := e.buf, e.exec, e.quit
	opts, threshold := e.opts, e.threshold

	e.buf = nil
	e.strat = nil
	e.exec = nil
	e.quit = nil

	// The buffer is detached from Submit at this point. Reset the gauge
	// under the lock, a re-Enable owns it from here on.
	e.stats.SetBufferLength(0)
	e.mu.Unlock()

	close(quit)
	exec.Stop()

	// Final flush of the remainder, on the calling goroutine. The buffer
	// is no longer reachable from Submit, so this drains to empty.
	final := &oneShotWriter{
		w:           e.writer,
		consistency: opts.consistency,
		handler:     opts.handler,
		stats:       &e.stats,
	}
	for {
		batch := buf.drain(threshold)
		if batch == nil {
			break
		}
		final.write(batch)
	}
}

// Enabled returns true while the engine accepts points.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Stats returns a snapshot copy of the engine's performance statistics.
func (e *Engine) Stats() StatsData {
	return e.stats.Get()
}

// runTimer periodically flushes the buffer until quit is closed. Each cycle
// sleeps the flush interval plus a fresh random jitter, desynchronizing
// many client instances writing to a shared server.
func (e *Engine) runTimer(buf *buffer, strat batchWriter, opts Options, threshold int, quit chan struct{}) {

	for {
		interval := opts.flushInterval
		if opts.jitterInterval > 0 {
			interval += time.Duration(rand.Int63n(int64(opts.jitterInterval)))
		}

		select {
		case <-time.After(interval):
		case <-quit:
			log.Debug("Batch engine timer stopped")
			return
		}

		// A flush with nothing pending is a no-op, the sink is not called.
		batch := buf.drain(threshold)
		if batch == nil {
			continue
		}
		e.stats.SetBufferLength(buf.len())

		strat.write(batch)
	}
}
