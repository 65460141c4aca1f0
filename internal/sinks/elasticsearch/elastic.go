package elasticsearch

import (
	"context"
	"strings"

	influx "github.com/influxdata/influxdb/client/v2"
	elastic "github.com/olivere/elastic/v7"
	log "github.com/sirupsen/logrus"

	"github.com/tsdbkit/fluxbatch/internal/config"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// ElasticSink is a point sink implementing an elasticsearch client.
// Batches are delivered as bulk index requests against a single index.
type ElasticSink struct {

	// Sink had Init() called on it successfully.
	init bool

	// Sink's configuration object.
	config config.SinkConfig

	// elastic driver client handle.
	client *elastic.Client
}

// New returns a new elasticsearch point sink.
func New() ElasticSink {
	return ElasticSink{}
}

// Init initializes the elasticsearch point sink.
func (s *ElasticSink) Init(sc config.SinkConfig) error {

	if sc.Name == "" {
		return errEmptySinkName
	}
	if sc.Address == "" {
		sc.Address = "http://localhost:9200"
	}
	if sc.Database == "" {
		sc.Database = "fluxbatch"
	}

	opts := configureElastic(sc)

	// Create a database client.
	client, err := elastic.NewClient(opts...)
	if err != nil {
		return err
	}

	// Obtain information about the cluster.
	ping, _, err := client.Ping(strings.Split(sc.Address, ",")[0]).Do(context.Background())
	if err != nil {
		return err
	}

	log.WithField("sink", sc.Name).
		Debugf("Connected to elasticsearch cluster '%s' version %s using client version %s",
			ping.ClusterName, ping.Version.Number, elastic.Version)

	s.config = sc
	s.client = client

	// Mark the sink as initialized.
	s.init = true

	return nil
}

// configureElastic translates a SinkConfig into elastic client options.
func configureElastic(sc config.SinkConfig) []elastic.ClientOptionFunc {

	// Initialize opts with a list of cluster addresses.
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Split(sc.Address, ",")...),
		// Disable node discovery by default, this interferes with
		// connecting to ES clusters over the internet.
		elastic.SetSniff(false),
	}

	log.WithField("sink", sc.Name).Debugf("Using elasticsearch at address '%s'", sc.Address)

	// Set up basic authentication if configured.
	if sc.Username != "" && sc.Password != "" {
		opts = append(opts, elastic.SetBasicAuth(sc.Username, sc.Password))
		log.WithField("sink", sc.Name).Debug("Configured elasticsearch client with basic authentication")
	}

	return opts
}

// WriteBatch delivers a batch of points to elasticsearch in a single bulk
// request. Delivery errors are classified by retryability so the batch
// engine can decide whether to hold on to the points. The consistency
// hint has no elasticsearch equivalent and is ignored.
func (s *ElasticSink) WriteBatch(points []*influx.Point, _ batch.ConsistencyLevel) error {

	bulk := s.client.Bulk()

	for _, p := range points {
		doc, err := newDocument(p)
		if err != nil {
			// A point that cannot be flattened will never index.
			return &batch.TerminalError{Err: err}
		}
		bulk.Add(elastic.NewBulkIndexRequest().Index(s.config.Database).Doc(doc))
	}

	ctx := context.Background()
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	resp, err := bulk.Do(ctx)
	if err != nil {
		return classifyError(err)
	}

	return classifyBulkResponse(resp)
}

// Name gets the name of the elasticsearch point sink.
func (s *ElasticSink) Name() string {
	return s.config.Name
}

// IsInit checks if the elasticsearch point sink was successfully initialized.
func (s *ElasticSink) IsInit() bool {
	return s.init
}
