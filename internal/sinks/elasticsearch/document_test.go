package elasticsearch

import (
	"testing"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsdbkit/fluxbatch/internal/config"
)

func TestNewDocument(t *testing.T) {

	ts := time.Unix(42, 0).UTC()

	p, err := influx.NewPoint("weather",
		map[string]string{"station": "home"},
		map[string]interface{}{"temperature": 21.5},
		ts)
	require.NoError(t, err)

	doc, err := newDocument(p)
	require.NoError(t, err)

	assert.Equal(t, "weather", doc.Measurement)
	assert.Equal(t, map[string]string{"station": "home"}, doc.Tags)
	assert.Equal(t, map[string]interface{}{"temperature": 21.5}, doc.Fields)
	assert.Equal(t, ts, doc.Timestamp)
}

func TestElasticSinkInit(t *testing.T) {

	s := New()
	assert.EqualError(t, s.Init(config.SinkConfig{}), "empty sink name")
	assert.False(t, s.IsInit())
}
