package sinks

import (
	"fmt"

	"github.com/tsdbkit/fluxbatch/internal/config"
	"github.com/tsdbkit/fluxbatch/internal/sinks/dummy"
	"github.com/tsdbkit/fluxbatch/internal/sinks/elasticsearch"
	"github.com/tsdbkit/fluxbatch/internal/sinks/influxdb"
	"github.com/tsdbkit/fluxbatch/internal/sinks/stdout"
	"github.com/tsdbkit/fluxbatch/internal/sinks/types"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// A Sink represents a time-series database or other store that can accept
// batches of points.
type Sink interface {

	// Initialize the sink with the given configuration.
	Init(config.SinkConfig) error

	// Check whether or not the sink is initialized.
	IsInit() bool

	// Get the sink's name.
	Name() string

	// Deliver a batch of points drained by the engine.
	// Implementation MUST be thread-safe.
	batch.Writer
}

// New returns a new, initialized Sink based on the type of
// the given SinkConfig.
func New(cfg config.SinkConfig) (Sink, error) {

	var sink Sink

	switch cfg.Type {
	// InfluxDB driver handles UDP and HTTP modes internally.
	case types.InfluxUDP, types.InfluxHTTP:
		idb := influxdb.New()
		if err := idb.Init(cfg); err != nil {
			return nil, err
		}
		sink = &idb
	case types.Elastic:
		es := elasticsearch.New()
		if err := es.Init(cfg); err != nil {
			return nil, err
		}
		sink = &es
	// stdout driver can write to either stdout or stderr.
	case types.StdOut, types.StdErr:
		std := stdout.New()
		if err := std.Init(cfg); err != nil {
			return nil, err
		}
		sink = &std
	case types.Dummy:
		d := dummy.New()
		if err := d.Init(cfg); err != nil {
			return nil, err
		}
		sink = &d
	default:
		return nil, fmt.Errorf("sink type '%s' not implemented", cfg.Type)
	}

	return sink, nil
}
