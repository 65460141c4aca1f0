package stdout

import (
	"bufio"
	"os"
	"sync"

	influx "github.com/influxdata/influxdb/client/v2"

	"github.com/tsdbkit/fluxbatch/internal/config"
	"github.com/tsdbkit/fluxbatch/internal/sinks/types"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// StdOut is a point sink writing line protocol to standard output/error.
type StdOut struct {

	// Sink had Init() called on it successfully.
	init bool

	// Sink's configuration object.
	config config.SinkConfig

	// Stdout/err writer.
	mu     sync.Mutex
	writer *bufio.Writer
}

// New returns a new StdOut.
func New() StdOut {
	return StdOut{}
}

// Init initializes the StdOut sink.
func (s *StdOut) Init(sc config.SinkConfig) error {

	// Validate / sanitize input.
	if sc.Name == "" {
		return errEmptySinkName
	}

	switch sc.Type {
	case types.StdOut:
		// Initialize stdout writer.
		s.writer = bufio.NewWriter(os.Stdout)
	case types.StdErr:
		// Initialize stderr writer.
		s.writer = bufio.NewWriter(os.Stderr)
	default:
		return errInvalidSinkType
	}

	s.config = sc

	// Mark the sink as initialized.
	s.init = true

	return nil
}

// WriteBatch prints a batch of points in line protocol, one per line.
// The consistency hint is meaningless for a terminal and ignored. Errors
// writing to the terminal are not worth a retry.
func (s *StdOut) WriteBatch(points []*influx.Point, _ batch.ConsistencyLevel) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if _, err := s.writer.WriteString(p.String() + "\n"); err != nil {
			return &batch.TerminalError{Err: err}
		}
	}

	if err := s.writer.Flush(); err != nil {
		return &batch.TerminalError{Err: err}
	}

	return nil
}

// Name gets the name of the StdOut.
func (s *StdOut) Name() string {
	return s.config.Name
}

// IsInit checks if the StdOut was successfully initialized.
func (s *StdOut) IsInit() bool {
	return s.init
}
