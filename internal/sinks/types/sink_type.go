package types

// SinkType represents the type of Sink.
type SinkType uint8

// Enum of supported sink types.
const (
	StdOut SinkType = iota
	StdErr
	InfluxUDP
	InfluxHTTP
	Elastic
	Dummy
)

// String returns the configuration name of the SinkType.
func (t SinkType) String() string {
	switch t {
	case StdOut:
		return "stdout"
	case StdErr:
		return "stderr"
	case InfluxUDP:
		return "influxdb-udp"
	case InfluxHTTP:
		return "influxdb-http"
	case Elastic:
		return "elasticsearch"
	case Dummy:
		return "dummy"
	}
	return "unknown"
}
