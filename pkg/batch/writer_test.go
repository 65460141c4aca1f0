package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {

	assert.False(t, Retryable(&TerminalError{Err: fmt.Errorf("database not found")}))
	assert.True(t, Retryable(&RetryableError{Err: fmt.Errorf("timeout")}))

	// Unclassified errors are treated as transient.
	assert.True(t, Retryable(fmt.Errorf("connection refused")))
}

func TestOneShotWriterFailure(t *testing.T) {

	werr := &TerminalError{Err: fmt.Errorf("field type conflict")}
	w := &mockWriter{script: []error{werr}}
	h := &handlerRecorder{}

	o := &oneShotWriter{
		w:           w,
		consistency: ConsistencyOne,
		handler:     h.handle,
		stats:       &Stats{},
	}

	pts := testPoints(t, 3)
	o.write(pts)

	require.Equal(t, 1, h.calls())
	assert.Equal(t, pts, h.points[0])
	assert.Equal(t, werr, h.errs[0])
	assert.Equal(t, uint64(3), o.stats.Get().PointsDropped)
}

func TestRetryWriterRequeuesBatch(t *testing.T) {

	w := &mockWriter{script: []error{&RetryableError{Err: fmt.Errorf("timeout")}}}
	h := &handlerRecorder{}
	buf := newBuffer(10)

	r := &retryWriter{
		w:           w,
		consistency: ConsistencyOne,
		handler:     h.handle,
		stats:       &Stats{},
		buf:         buf,
	}

	pts := testPoints(t, 3)
	r.write(pts)

	// The failed batch sits at the head of the buffer, handler untouched.
	assert.Equal(t, 0, h.calls())
	assert.Equal(t, pts, buf.drain(10))
	assert.Equal(t, uint64(1), r.stats.Get().BatchesRetried)
}

func TestRetryWriterOverflow(t *testing.T) {

	w := &mockWriter{script: []error{&RetryableError{Err: fmt.Errorf("timeout")}}}
	h := &handlerRecorder{}
	buf := newBuffer(4)

	r := &retryWriter{
		w:           w,
		consistency: ConsistencyOne,
		handler:     h.handle,
		stats:       &Stats{},
		buf:         buf,
	}

	// Fill the buffer while the batch is in flight.
	fresh := testPoints(t, 4)
	for _, p := range fresh {
		buf.enqueue(p)
	}

	pts := testPoints(t, 2)
	r.write(pts)

	// Requeueing overflows the buffer by two, the retried batch itself is
	// oldest and evicted first.
	require.Equal(t, 1, h.calls())
	assert.Equal(t, pts, h.points[0])
	assert.Equal(t, ErrBufferOverflow, h.errs[0])
	assert.Equal(t, fresh, buf.drain(10))
}

func TestRetryWriterTerminal(t *testing.T) {

	werr := &TerminalError{Err: fmt.Errorf("database not found")}
	w := &mockWriter{script: []error{werr}}
	h := &handlerRecorder{}
	buf := newBuffer(10)

	r := &retryWriter{
		w:           w,
		consistency: ConsistencyOne,
		handler:     h.handle,
		stats:       &Stats{},
		buf:         buf,
	}

	pts := testPoints(t, 2)
	r.write(pts)

	// Nothing requeued, reported exactly once.
	require.Equal(t, 1, h.calls())
	assert.Equal(t, pts, h.points[0])
	assert.Equal(t, werr, h.errs[0])
	assert.Equal(t, 0, buf.len())
}
