package elasticsearch

import (
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
)

// document is the JSON shape of a point indexed into elasticsearch.
type document struct {

	// Measurement the point was written against.
	Measurement string `json:"measurement"`

	// The point's tag set, if any.
	Tags map[string]string `json:"tags,omitempty"`

	// The point's field set.
	Fields map[string]interface{} `json:"fields"`

	// Timestamp of the point.
	Timestamp time.Time `json:"@timestamp"`
}

// newDocument flattens an influx point into an indexable document.
func newDocument(p *influx.Point) (*document, error) {

	fields, err := p.Fields()
	if err != nil {
		return nil, err
	}

	return &document{
		Measurement: p.Name(),
		Tags:        p.Tags(),
		Fields:      fields,
		Timestamp:   p.Time(),
	}, nil
}
