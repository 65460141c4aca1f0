package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/tsdbkit/fluxbatch/internal/sinks/types"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// DefaultSinkConfig is the default sink configuration.
var DefaultSinkConfig = []SinkConfig{
	{
		Name: "stdout",
		Type: types.StdOut,
	},
}

// SinkConfig represents the configuration of a point sink.
type SinkConfig struct {

	// The type of point sink.
	Type types.SinkType `mapstructure:"type"`

	// Name of the sink.
	Name string `mapstructure:"-"`

	// Target address of the sink's backing storage.
	Address string `mapstructure:"address"`

	// Username of the sink's backing storage.
	Username string `mapstructure:"username"`

	// Password of the sink's backing storage.
	Password string `mapstructure:"password"`

	// Database name of the sink's backing storage.
	Database string `mapstructure:"database"`

	// Retention policy writes are made against. (influxdb)
	RetentionPolicy string `mapstructure:"retentionPolicy"`

	// Maximum network payload size, only for UDP-based sinks.
	UDPPayloadSize uint16 `mapstructure:"udpPayloadSize"`

	// Write timeout of the sink's backing storage.
	Timeout time.Duration `mapstructure:"timeout"`

	// Batching behaviour of the engine writing to this sink.
	Batch BatchConfig `mapstructure:"batch"`
}

// DecodeSinkConfigMap extracts a map of SinkConfigs from configuration data.
// The value of the string map is expected to be a nested string-map-interface
// with the annotated fields of a SinkConfig.
func DecodeSinkConfigMap(cfg map[string]interface{}) ([]SinkConfig, error) {

	out := make([]SinkConfig, 0, len(cfg))

	for name, params := range cfg {
		sc := SinkConfig{
			Name: name, // ignored by mapstructure, use map key as name
		}

		d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToSinkTypeHookFunc(),    // decode strings to SinkTypes
				stringToConsistencyHookFunc(), // decode strings to ConsistencyLevels
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result: &sc, // destination struct of decode operation
		})
		if err != nil {
			panic(err)
		}

		// Decode sink configuration map into SinkConfig.
		if err := d.Decode(params); err != nil {
			return nil, err
		}

		out = append(out, sc)
	}

	return out, nil
}

// stringToSinkTypeHookFunc returns a mapstructure.DecodeHookFunc that converts
// strings to SinkTypes.
func stringToSinkTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(types.SinkType(0)) {
			return data, nil
		}

		switch data {
		case "dummy":
			return types.Dummy, nil
		case "stdout":
			return types.StdOut, nil
		case "stderr":
			return types.StdErr, nil
		case "influxdb-udp":
			return types.InfluxUDP, nil
		case "influxdb-http", "influxdb":
			return types.InfluxHTTP, nil
		case "elasticsearch", "elastic":
			return types.Elastic, nil
		default:
			return types.SinkType(0), fmt.Errorf("failed parsing sink type %v", data)
		}
	}
}

// stringToConsistencyHookFunc returns a mapstructure.DecodeHookFunc that
// converts strings to batch.ConsistencyLevels.
func stringToConsistencyHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(batch.ConsistencyLevel("")) {
			return data, nil
		}

		switch data {
		case "any":
			return batch.ConsistencyAny, nil
		case "one":
			return batch.ConsistencyOne, nil
		case "quorum":
			return batch.ConsistencyQuorum, nil
		case "all":
			return batch.ConsistencyAll, nil
		default:
			return batch.ConsistencyLevel(""), fmt.Errorf("failed parsing consistency level %v", data)
		}
	}
}
