package influxdb

import (
	influx "github.com/influxdata/influxdb/client/v2"
	log "github.com/sirupsen/logrus"

	"github.com/tsdbkit/fluxbatch/internal/config"
	"github.com/tsdbkit/fluxbatch/internal/sinks/types"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// InfluxSink is a point sink implementing an InfluxDB client.
type InfluxSink struct {

	// Sink had Init() called on it successfully.
	init bool

	// Sink's configuration object.
	config config.SinkConfig

	// Influx driver client handle.
	client influx.Client
}

// New returns a new InfluxDB point sink.
func New() InfluxSink {
	return InfluxSink{}
}

// Init initializes the InfluxDB point sink.
func (s *InfluxSink) Init(sc config.SinkConfig) error {

	// Validate / sanitize input.
	if sc.Name == "" {
		return errEmptySinkName
	}
	if sc.Address == "" {
		return errEmptySinkAddress
	}

	var c influx.Client
	var err error

	switch sc.Type {
	case types.InfluxUDP:
		// Construct InfluxDB UDP configuration and client.
		conf := influx.UDPConfig{
			Addr:        sc.Address,
			PayloadSize: int(sc.UDPPayloadSize),
		}

		c, err = influx.NewUDPClient(conf)
		if err != nil {
			return err
		}
	case types.InfluxHTTP:
		// HTTP writes are made against a database.
		if sc.Database == "" {
			return errEmptySinkDatabase
		}

		// Construct InfluxDB HTTP configuration and client.
		conf := influx.HTTPConfig{
			Addr:     sc.Address,
			Username: sc.Username,
			Password: sc.Password,
			Timeout:  sc.Timeout,
		}

		c, err = influx.NewHTTPClient(conf)
		if err != nil {
			return err
		}

		// Obtain information about the server.
		if _, version, err := c.Ping(sc.Timeout); err == nil {
			log.WithField("sink", sc.Name).
				Debugf("Connected to InfluxDB %s at %s", version, sc.Address)
		}
	default:
		return errInvalidSinkType
	}

	s.client = c  // client handle
	s.config = sc // config

	// Mark the sink as initialized.
	s.init = true

	return nil
}

// WriteBatch delivers a batch of points to the InfluxDB server in a single
// write. Delivery errors are classified by retryability so the batch engine
// can decide whether to hold on to the points.
func (s *InfluxSink) WriteBatch(points []*influx.Point, consistency batch.ConsistencyLevel) error {

	b, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Precision:        "ns", // nanosecond precision timestamps
		Database:         s.config.Database,
		RetentionPolicy:  s.config.RetentionPolicy,
		WriteConsistency: string(consistency),
	})
	if err != nil {
		// Only triggered by an unparseable precision.
		panic(err)
	}

	b.AddPoints(points)

	if err := s.client.Write(b); err != nil {
		return classifyError(err)
	}

	return nil
}

// Name gets the name of the InfluxDB point sink.
func (s *InfluxSink) Name() string {
	return s.config.Name
}

// IsInit checks if the InfluxDB point sink was successfully initialized.
func (s *InfluxSink) IsInit() bool {
	return s.init
}
