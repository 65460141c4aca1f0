package pipeline

import "sync/atomic"

// Stats holds various statistics and information about the point pipeline.
type Stats struct {

	// total amount of line protocol lines read from the source
	LinesTotal uint64 `json:"lines_total"`

	// total amount of points parsed and submitted to engines
	PointsTotal uint64 `json:"points_total"`

	// amount of lines that failed line protocol parsing
	ParseErrors uint64 `json:"parse_errors"`
}

// IncrLinesTotal atomically increases the line counter by one.
func (s *Stats) IncrLinesTotal() {
	atomic.AddUint64(&s.LinesTotal, 1)
}

// IncrPointsTotal atomically increases the point counter by one.
func (s *Stats) IncrPointsTotal() {
	atomic.AddUint64(&s.PointsTotal, 1)
}

// IncrParseErrors atomically increases the parse error counter by one.
func (s *Stats) IncrParseErrors() {
	atomic.AddUint64(&s.ParseErrors, 1)
}

// Get returns a copy of the Stats structure created using atomic loads.
// The values can be inconsistent with each other, as they are written and
// read concurrently without locks.
func (s *Stats) Get() Stats {
	return Stats{
		LinesTotal:  atomic.LoadUint64(&s.LinesTotal),
		PointsTotal: atomic.LoadUint64(&s.PointsTotal),
		ParseErrors: atomic.LoadUint64(&s.ParseErrors),
	}
}
