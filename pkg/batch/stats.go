package batch

import "sync/atomic"

// Stats is an embeddable struct holding a StatsData.
type Stats struct {
	data StatsData
}

// StatsData holds performance metrics about a batching engine.
type StatsData struct {
	// Amount of points submitted to the engine.
	PointsSubmitted uint64 `json:"points_submitted"`
	// Amount of points confirmed written to the sink.
	PointsWritten uint64 `json:"points_written"`
	// Amount of points dropped due to delivery failures or overflow.
	PointsDropped uint64 `json:"points_dropped"`

	// Amount of points currently pending in the buffer.
	BufferLength uint64 `json:"buffer_length"`

	// Amount of batches delivered to the sink.
	BatchesSent uint64 `json:"batches_sent"`
	// Amount of batches dropped after a delivery failure.
	BatchesFailed uint64 `json:"batches_failed"`
	// Amount of batches requeued after a retryable delivery failure.
	BatchesRetried uint64 `json:"batches_retried"`
}

// IncrPointsSubmitted atomically increases the submitted point counter by one.
func (s *Stats) IncrPointsSubmitted() {
	atomic.AddUint64(&s.data.PointsSubmitted, 1)
}

// IncrPointsWritten atomically increases the written point counter by n.
func (s *Stats) IncrPointsWritten(n int) {
	atomic.AddUint64(&s.data.PointsWritten, uint64(n))
}

// IncrPointsDropped atomically increases the dropped point counter by n.
func (s *Stats) IncrPointsDropped(n int) {
	atomic.AddUint64(&s.data.PointsDropped, uint64(n))
}

// SetBufferLength sets the amount of points pending in the buffer.
func (s *Stats) SetBufferLength(l int) {
	atomic.StoreUint64(&s.data.BufferLength, uint64(l))
}

// IncrBatchesSent atomically increases the sent batch counter by one.
func (s *Stats) IncrBatchesSent() {
	atomic.AddUint64(&s.data.BatchesSent, 1)
}

// IncrBatchesFailed atomically increases the failed batch counter by one.
func (s *Stats) IncrBatchesFailed() {
	atomic.AddUint64(&s.data.BatchesFailed, 1)
}

// IncrBatchesRetried atomically increases the retried batch counter by one.
func (s *Stats) IncrBatchesRetried() {
	atomic.AddUint64(&s.data.BatchesRetried, 1)
}

// Get returns a non-atomic snapshot of the stats data.
func (s *Stats) Get() StatsData {
	return StatsData{
		PointsSubmitted: atomic.LoadUint64(&s.data.PointsSubmitted),
		PointsWritten:   atomic.LoadUint64(&s.data.PointsWritten),
		PointsDropped:   atomic.LoadUint64(&s.data.PointsDropped),
		BufferLength:    atomic.LoadUint64(&s.data.BufferLength),
		BatchesSent:     atomic.LoadUint64(&s.data.BatchesSent),
		BatchesFailed:   atomic.LoadUint64(&s.data.BatchesFailed),
		BatchesRetried:  atomic.LoadUint64(&s.data.BatchesRetried),
	}
}
