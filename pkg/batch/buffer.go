package batch

import (
	"sync"

	influx "github.com/influxdata/influxdb/client/v2"
)

// buffer is a bounded FIFO queue of points pending delivery. It is shared
// between the submitting goroutines and the background flush executor, all
// mutations are serialized by the embedded mutex.
type buffer struct {
	mu    sync.Mutex
	limit int
	pts   []*influx.Point
}

// newBuffer returns an empty buffer holding at most limit points.
func newBuffer(limit int) *buffer {
	return &buffer{
		limit: limit,
		pts:   make([]*influx.Point, 0, limit),
	}
}

// enqueue appends p to the tail of the buffer and returns the pending count.
// When the buffer is full, the point at the head (the oldest) is evicted and
// returned so the caller can report it.
func (b *buffer) enqueue(p *influx.Point) (evicted *influx.Point, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pts) >= b.limit {
		evicted = b.pts[0]
		b.pts = b.pts[1:]
	}
	b.pts = append(b.pts, p)

	return evicted, len(b.pts)
}

// drain atomically removes and returns up to max points from the head of
// the buffer, in submission order. Returns nil when the buffer is empty.
func (b *buffer) drain(max int) []*influx.Point {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pts) == 0 {
		return nil
	}

	n := max
	if n > len(b.pts) {
		n = len(b.pts)
	}

	out := make([]*influx.Point, n)
	copy(out, b.pts[:n])
	b.pts = b.pts[n:]

	return out
}

// requeue pushes a drained batch back onto the head of the buffer,
// preserving the original submission order. If the result would exceed the
// buffer limit, the oldest points are evicted and returned.
func (b *buffer) requeue(batch []*influx.Point) (evicted []*influx.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pts := make([]*influx.Point, 0, len(batch)+len(b.pts))
	pts = append(pts, batch...)
	pts = append(pts, b.pts...)

	if over := len(pts) - b.limit; over > 0 {
		evicted = pts[:over]
		pts = pts[over:]
	}
	b.pts = pts

	return evicted
}

// len returns the amount of points pending in the buffer.
func (b *buffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pts)
}
