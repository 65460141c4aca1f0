package batch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPoint returns a point with a recognizable field value.
func testPoint(t *testing.T, i int) *influx.Point {
	t.Helper()

	p, err := influx.NewPoint("weather",
		map[string]string{"station": "home"},
		map[string]interface{}{"temperature": float64(i)},
		time.Unix(0, int64(i)))
	require.NoError(t, err)

	return p
}

func testPoints(t *testing.T, n int) []*influx.Point {
	t.Helper()

	pts := make([]*influx.Point, n)
	for i := range pts {
		pts[i] = testPoint(t, i)
	}
	return pts
}

// mockWriter records every delivery attempt and plays back a script of
// errors, one per call. Calls beyond the script succeed.
type mockWriter struct {
	mu            sync.Mutex
	batches       [][]*influx.Point
	consistencies []ConsistencyLevel
	script        []error
}

func (m *mockWriter) WriteBatch(points []*influx.Point, c ConsistencyLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.batches)
	m.batches = append(m.batches, points)
	m.consistencies = append(m.consistencies, c)

	if call < len(m.script) {
		return m.script[call]
	}
	return nil
}

func (m *mockWriter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockWriter) batch(i int) []*influx.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[i]
}

// handlerRecorder is an ExceptionHandler remembering every invocation.
type handlerRecorder struct {
	mu     sync.Mutex
	points [][]*influx.Point
	errs   []error
}

func (h *handlerRecorder) handle(points []*influx.Point, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, points)
	h.errs = append(h.errs, err)
}

func (h *handlerRecorder) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.points)
}

func TestEngineCountTrigger(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	// Timer trigger disabled, only the count trigger can fire.
	require.NoError(t, e.Enable(DefaultOptions.Actions(3).FlushInterval(0)))
	defer e.Disable()

	pts := testPoints(t, 3)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}

	// Delivery happens on the background executor.
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, 1, w.calls())
	assert.Equal(t, pts, w.batch(0))
}

func TestEngineCountAndTimerTrigger(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.Actions(3).FlushInterval(100 * time.Millisecond)))
	defer e.Disable()

	// Submit 5 points with 10ms in between. The 3rd submission reaches the
	// count threshold, the remaining 2 are picked up by the timer.
	pts := testPoints(t, 5)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	require.Equal(t, 2, w.calls())
	assert.Equal(t, pts[:3], w.batch(0))
	assert.Equal(t, pts[3:], w.batch(1))
}

func TestEngineFlushInterval(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.FlushInterval(200 * time.Millisecond)))
	defer e.Disable()

	pts := testPoints(t, 2)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}

	// No points may reach the sink before the flush interval elapses.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, w.calls())

	// Allow one full period plus margin.
	time.Sleep(400 * time.Millisecond)
	require.Equal(t, 1, w.calls())
	assert.Equal(t, pts, w.batch(0))
}

func TestEngineJitteredFlushDelivers(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.
		FlushInterval(50 * time.Millisecond).
		JitterInterval(100 * time.Millisecond)))
	defer e.Disable()

	pts := testPoints(t, 4)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}

	// Interval plus the full jitter bound, with margin.
	time.Sleep(500 * time.Millisecond)
	require.Equal(t, 1, w.calls())
	assert.Equal(t, pts, w.batch(0))
}

func TestEngineEmptyFlushIsNoop(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.FlushInterval(20 * time.Millisecond)))

	// Several timer cycles without pending points.
	time.Sleep(150 * time.Millisecond)
	e.Disable()

	assert.Equal(t, 0, w.calls())
}

func TestEngineRetrySucceeds(t *testing.T) {

	w := &mockWriter{script: []error{
		&RetryableError{Err: fmt.Errorf("connection reset")},
	}}
	h := &handlerRecorder{}
	e := New(w)

	// BufferLimit exceeds Actions, retry-capable strategy.
	require.NoError(t, e.Enable(DefaultOptions.
		Actions(4).
		BufferLimit(10).
		FlushInterval(100 * time.Millisecond).
		ExceptionHandler(h.handle)))
	defer e.Disable()

	p := testPoint(t, 1)
	require.NoError(t, e.Submit(p))

	time.Sleep(500 * time.Millisecond)

	// Exactly two delivery attempts for the same batch, handler untouched.
	require.Equal(t, 2, w.calls())
	assert.Equal(t, w.batch(0), w.batch(1))
	assert.Equal(t, 0, h.calls())

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.BatchesRetried)
	assert.Equal(t, uint64(1), stats.BatchesSent)
	assert.Equal(t, uint64(0), stats.PointsDropped)
}

func TestEngineRetryTerminal(t *testing.T) {

	w := &mockWriter{script: []error{
		&TerminalError{Err: fmt.Errorf("database not found: \"mydb\"")},
	}}
	h := &handlerRecorder{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.
		Actions(2).
		BufferLimit(10).
		FlushInterval(50 * time.Millisecond).
		ExceptionHandler(h.handle)))
	defer e.Disable()

	pts := testPoints(t, 2)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}

	time.Sleep(300 * time.Millisecond)

	// A terminal failure is never retried and reported exactly once.
	require.Equal(t, 1, w.calls())
	require.Equal(t, 1, h.calls())
	assert.Equal(t, pts, h.points[0])
	assert.False(t, Retryable(h.errs[0]))
}

func TestEngineOneShotDropsOnFailure(t *testing.T) {

	// Even a retryable failure is dropped, there is no buffer headroom to
	// hold the batch.
	w := &mockWriter{script: []error{
		&RetryableError{Err: fmt.Errorf("timeout")},
	}}
	h := &handlerRecorder{}
	e := New(w)

	// BufferLimit at most Actions, one-shot strategy. Reaching capacity
	// doubles as the count trigger.
	require.NoError(t, e.Enable(DefaultOptions.
		Actions(4).
		BufferLimit(3).
		FlushInterval(50 * time.Millisecond).
		ExceptionHandler(h.handle)))
	defer e.Disable()

	pts := testPoints(t, 3)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}

	time.Sleep(300 * time.Millisecond)

	require.Equal(t, 1, w.calls())
	require.Equal(t, 1, h.calls())
	assert.Equal(t, pts, h.points[0])
}

func TestEngineDisableFlushesRemainder(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.FlushInterval(time.Hour)))

	pts := testPoints(t, 5)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}

	// Disable performs the final flush synchronously, no sleep needed.
	e.Disable()

	require.Equal(t, 1, w.calls())
	assert.Equal(t, pts, w.batch(0))

	// Disabled engines reject points; disabling again is a no-op.
	assert.Error(t, e.Submit(testPoint(t, 99)))
	e.Disable()
	assert.Equal(t, 1, w.calls())
}

func TestEngineReEnable(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.FlushInterval(time.Hour)))
	require.NoError(t, e.Submit(testPoint(t, 1)))
	e.Disable()

	// No state survives a disable/enable cycle.
	require.NoError(t, e.Enable(DefaultOptions.Actions(2).FlushInterval(0)))
	defer e.Disable()

	pts := testPoints(t, 2)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, 2, w.calls())
	assert.Equal(t, pts, w.batch(1))
}

func TestEngineEnableTwice(t *testing.T) {

	e := New(&mockWriter{})

	require.NoError(t, e.Enable(DefaultOptions.FlushInterval(time.Hour)))
	defer e.Disable()

	assert.Error(t, e.Enable(DefaultOptions))
}

func TestEngineInvalidOptions(t *testing.T) {

	var invoked int
	factory := func() Executor {
		invoked++
		return NewGoExecutor()
	}

	e := New(&mockWriter{})

	assert.Error(t, e.Enable(DefaultOptions.JitterInterval(-10 * time.Millisecond).ExecutorFactory(factory)))
	assert.Error(t, e.Enable(DefaultOptions.BufferLimit(-10).ExecutorFactory(factory)))
	assert.Error(t, e.Enable(DefaultOptions.Actions(0).ExecutorFactory(factory)))
	assert.Error(t, e.Enable(DefaultOptions.FlushInterval(-time.Second).ExecutorFactory(factory)))

	// No background context may be created for rejected options.
	assert.Equal(t, 0, invoked)
	assert.False(t, e.Enabled())
}

func TestEngineExecutorFactoryHonored(t *testing.T) {

	var mu sync.Mutex
	var invoked int
	factory := func() Executor {
		mu.Lock()
		invoked++
		mu.Unlock()
		return NewGoExecutor()
	}

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.
		Actions(2).
		FlushInterval(50 * time.Millisecond).
		ExecutorFactory(factory)))

	pts := testPoints(t, 2)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}
	time.Sleep(200 * time.Millisecond)
	e.Disable()

	mu.Lock()
	assert.Equal(t, 1, invoked)
	mu.Unlock()

	require.Equal(t, 1, w.calls())
	assert.Equal(t, pts, w.batch(0))
}

func TestEngineConsistencyPassthrough(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.
		Actions(1).
		BufferLimit(1).
		FlushInterval(0).
		Consistency(ConsistencyQuorum)))
	defer e.Disable()

	require.NoError(t, e.Submit(testPoint(t, 1)))
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, 1, w.calls())
	assert.Equal(t, ConsistencyQuorum, w.consistencies[0])
}

func TestEngineStats(t *testing.T) {

	w := &mockWriter{}
	e := New(w)

	require.NoError(t, e.Enable(DefaultOptions.Actions(2).FlushInterval(0)))

	pts := testPoints(t, 3)
	for _, p := range pts {
		require.NoError(t, e.Submit(p))
	}
	time.Sleep(100 * time.Millisecond)
	e.Disable()

	stats := e.Stats()
	assert.Equal(t, uint64(3), stats.PointsSubmitted)
	assert.Equal(t, uint64(3), stats.PointsWritten)
	assert.Equal(t, uint64(2), stats.BatchesSent)
	assert.Equal(t, uint64(0), stats.BufferLength)
}

// reenterWriter starts a new batching cycle from within a delivery,
// simulating an Enable racing the final flush of a Disable.
type reenterWriter struct {
	e    *Engine
	p    *influx.Point
	opts Options
	once sync.Once
}

func (w *reenterWriter) WriteBatch(points []*influx.Point, _ ConsistencyLevel) error {
	w.once.Do(func() {
		if err := w.e.Enable(w.opts); err == nil {
			_ = w.e.Submit(w.p)
		}
	})
	return nil
}

func TestEngineDisableReenableKeepsBufferGauge(t *testing.T) {

	w := &reenterWriter{opts: DefaultOptions.Actions(10).FlushInterval(0)}
	e := New(w)
	w.e = e
	w.p = testPoint(t, 0)

	require.NoError(t, e.Enable(DefaultOptions.Actions(10).FlushInterval(0)))
	require.NoError(t, e.Submit(testPoint(t, 1)))

	// The final flush re-enables the engine and submits a point. The new
	// cycle's buffer gauge must survive the teardown of the old one.
	e.Disable()

	assert.True(t, e.Enabled())
	assert.Equal(t, uint64(1), e.Stats().BufferLength)

	e.Disable()
	assert.Equal(t, uint64(0), e.Stats().BufferLength)
}
