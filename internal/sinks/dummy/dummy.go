package dummy

import (
	"sync/atomic"

	influx "github.com/influxdata/influxdb/client/v2"

	"github.com/tsdbkit/fluxbatch/internal/config"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// Dummy is a point sink that accepts every batch and does nothing. At all.
type Dummy struct {

	// Sink had Init() called on it successfully.
	init bool

	// Sink's configuration object.
	config config.SinkConfig

	// Amount of points discarded so far.
	points uint64
}

// New returns a new Dummy.
func New() Dummy {
	return Dummy{}
}

// Init initializes the Dummy sink.
func (d *Dummy) Init(sc config.SinkConfig) error {

	if sc.Name == "" {
		return errEmptySinkName
	}

	d.config = sc
	d.init = true
	return nil
}

// WriteBatch sends a batch of points into the abyss.
func (d *Dummy) WriteBatch(points []*influx.Point, _ batch.ConsistencyLevel) error {
	atomic.AddUint64(&d.points, uint64(len(points)))
	return nil
}

// Points returns the amount of points discarded so far.
func (d *Dummy) Points() uint64 {
	return atomic.LoadUint64(&d.points)
}

// Name gets the name of the Dummy.
func (d *Dummy) Name() string {
	return d.config.Name
}

// IsInit checks if the Dummy was successfully initialized.
func (d *Dummy) IsInit() bool {
	return d.init
}
