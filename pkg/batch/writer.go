package batch

import (
	"errors"

	influx "github.com/influxdata/influxdb/client/v2"
	log "github.com/sirupsen/logrus"
)

// ErrBufferOverflow is handed to the exception handler together with the
// points that were evicted because the buffer exceeded its limit.
var ErrBufferOverflow = errors.New("point buffer overflow, oldest points dropped")

// Writer delivers a batch of points to a sink in a single call. The given
// consistency level is advisory and may be ignored by sinks that have no
// use for it. Errors should be classified with TerminalError or
// RetryableError, unclassified errors are treated as retryable.
//
// Implementations must be safe for concurrent use, the engine may have
// multiple batches in flight when the count and timer triggers fire close
// together.
type Writer interface {
	WriteBatch(points []*influx.Point, consistency ConsistencyLevel) error
}

// batchWriter is the delivery strategy selected once at enable time based
// on the relation between the buffer limit and the actions threshold.
type batchWriter interface {
	// write attempts delivery of a batch drained from the buffer. The
	// batch is owned by the strategy until delivery resolves.
	write(points []*influx.Point)
}

// oneShotWriter makes a single best-effort delivery attempt per batch.
// Used when the buffer has no headroom beyond the flush threshold: a failed
// batch is dropped and reported, never requeued. Favours bounded memory and
// low latency over guaranteed delivery.
type oneShotWriter struct {
	w           Writer
	consistency ConsistencyLevel
	handler     ExceptionHandler
	stats       *Stats
}

func (o *oneShotWriter) write(points []*influx.Point) {
	if err := o.w.WriteBatch(points, o.consistency); err != nil {
		log.Errorf("Error writing batch of %d points: %s. Batch dropped.", len(points), err)

		o.stats.IncrBatchesFailed()
		o.stats.IncrPointsDropped(len(points))
		o.handler(points, err)
		return
	}

	o.stats.IncrBatchesSent()
	o.stats.IncrPointsWritten(len(points))
}

// retryWriter holds on to batches that failed with a retryable error by
// pushing them back onto the head of the buffer, to be attempted again on
// the next count or timer trigger. Used when the buffer limit exceeds the
// actions threshold.
type retryWriter struct {
	w           Writer
	consistency ConsistencyLevel
	handler     ExceptionHandler
	stats       *Stats
	buf         *buffer
}

func (r *retryWriter) write(points []*influx.Point) {
	err := r.w.WriteBatch(points, r.consistency)
	if err == nil {
		r.stats.IncrBatchesSent()
		r.stats.IncrPointsWritten(len(points))
		return
	}

	if !Retryable(err) {
		log.Errorf("Error writing batch of %d points: %s. Batch dropped.", len(points), err)

		r.stats.IncrBatchesFailed()
		r.stats.IncrPointsDropped(len(points))
		r.handler(points, err)
		return
	}

	log.Debugf("Retryable error writing batch of %d points: %s. Batch requeued.", len(points), err)
	r.stats.IncrBatchesRetried()

	// Push the batch back onto the head of the buffer. Points evicted to
	// stay within the buffer limit are gone for good, report them.
	if evicted := r.buf.requeue(points); len(evicted) > 0 {
		r.stats.IncrPointsDropped(len(evicted))
		r.handler(evicted, ErrBufferOverflow)
	}
}
