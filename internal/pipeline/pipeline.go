package pipeline

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	"github.com/influxdata/influxdb/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tsdbkit/fluxbatch/internal/sinks"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// Pipeline reads line protocol from a point source and fans the points out
// to batching engines, one per registered sink.
type Pipeline struct {
	stats Stats

	mu      sync.RWMutex
	entries []*Entry
}

// An Entry is a registered sink together with the engine batching its writes.
type Entry struct {
	sink   sinks.Sink
	engine *batch.Engine
}

// Name returns the name of the entry's sink.
func (e *Entry) Name() string {
	return e.sink.Name()
}

// Stats returns a snapshot of the entry's engine statistics.
func (e *Entry) Stats() batch.StatsData {
	return e.engine.Stats()
}

// New creates a new Pipeline structure.
func New() *Pipeline {
	return &Pipeline{}
}

// RegisterSink registers a sink to the pipeline and enables a batching
// engine in front of it with the given options.
func (p *Pipeline) RegisterSink(s sinks.Sink, opts batch.Options) error {

	// Make sure the sink is initialized before using.
	if !s.IsInit() {
		return errSinkNotInit
	}

	e := batch.New(s)
	if err := e.Enable(opts); err != nil {
		return errors.Wrap(err, "enabling batch engine")
	}

	p.mu.Lock()
	p.entries = append(p.entries, &Entry{sink: s, engine: e})
	p.mu.Unlock()

	log.Infof("Registered sink '%s' to pipeline", s.Name())

	return nil
}

// Entries gets a list of sinks registered to the pipeline.
func (p *Pipeline) Entries() []*Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries
}

// maxLineSize is the maximum length of a single line protocol line the
// pipeline accepts. Longer lines are counted as parse errors and skipped.
const maxLineSize = 1 << 20

// readLine returns the next line from br without its terminator. Lines
// longer than maxLineSize are consumed to their end and reported as
// errLineTooLong. The returned slice is a copy, br's internal buffer is
// reused across calls.
func readLine(br *bufio.Reader) ([]byte, error) {

	var line []byte
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			return line, err
		}

		line = append(line, frag...)
		if !isPrefix {
			return line, nil
		}

		if len(line) > maxLineSize {
			// Discard the remainder of the oversized line.
			for isPrefix && err == nil {
				_, isPrefix, err = br.ReadLine()
			}
			return nil, errLineTooLong
		}
	}
}

// Run reads line protocol from r until EOF or until ctx is cancelled,
// submitting every parsed point to all registered engines. Unparseable
// or oversized lines are counted and skipped, they never stop the
// pipeline.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) error {

	br := bufio.NewReader(r)

	for {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := readLine(br)
		if err == errLineTooLong {
			p.stats.IncrLinesTotal()
			p.stats.IncrParseErrors()
			log.Debug("Skipping line protocol line exceeding maximum length")
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if len(line) == 0 {
			continue
		}
		p.stats.IncrLinesTotal()

		pts, err := models.ParsePointsWithPrecision(line, time.Now().UTC(), "ns")
		if err != nil {
			p.stats.IncrParseErrors()
			log.Debugf("Skipping unparseable line protocol: %s", err)
			continue
		}

		// Fan out to all registered engines.
		p.mu.RLock()
		for _, mp := range pts {
			pt := influx.NewPointFrom(mp)
			p.stats.IncrPointsTotal()

			for _, e := range p.entries {
				if err := e.engine.Submit(pt); err != nil {
					log.Errorf("Submitting point to sink '%s': %s", e.sink.Name(), err)
				}
			}
		}
		p.mu.RUnlock()
	}
}

// Stop disables all engines registered to the pipeline, synchronously
// flushing their remaining points to the sinks.
func (p *Pipeline) Stop() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, e := range p.entries {
		e.engine.Disable()
		log.Debugf("Disabled batch engine of sink '%s'", e.sink.Name())
	}
}

// Stats returns a snapshot copy of the pipeline's statistics.
func (p *Pipeline) Stats() Stats {
	return p.stats.Get()
}
