package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tsdbkit/fluxbatch/internal/config"
	"github.com/tsdbkit/fluxbatch/internal/pipeline"
	"github.com/tsdbkit/fluxbatch/internal/sinks"
)

var (
	// Key names in configuration file.
	cfgAPIEnabled    = "api_enabled"
	cfgAPIEndpoint   = "api_endpoint"
	cfgPProfEnabled  = "pprof_enabled"
	cfgPProfEndpoint = "pprof_endpoint"

	cfgSinks = "sinks"

	// Default application configuration.
	cfgDefaults = map[string]interface{}{
		// HTTP API endpoint.
		cfgAPIEnabled:  true,
		cfgAPIEndpoint: "localhost:8000",

		// Sinks for point data.
		cfgSinks: map[string]interface{}{
			"stdout": map[string]interface{}{
				"type": "stdout",
			},
		},

		// Run a pprof endpoint during operation. (live profiling)
		cfgPProfEnabled:  false,
		cfgPProfEndpoint: "localhost:6060",
	}
)

func init() {
	// Initialize Viper with configuration defaults.
	for k, v := range cfgDefaults {
		viper.SetDefault(k, v)
	}
}

// getSinkConfig parses the sink configurations from Viper.
func getSinkConfig() ([]config.SinkConfig, error) {

	// Get sink configuration from Viper.
	scfg, err := config.DecodeSinkConfigMap(viper.GetStringMap(cfgSinks))
	if err != nil {
		return nil, err
	}
	log.Debugf("Read sink configuration: %+v", scfg)

	if len(scfg) == 0 {
		scfg = config.DefaultSinkConfig
	}

	return scfg, nil
}

// initRegisterSinks initializes a list of sinks according to their types
// and registers them to the given pipeline.
func initRegisterSinks(cl []config.SinkConfig, pipe *pipeline.Pipeline) error {

	for _, cfg := range cl {
		// Create and initialize a new sink based on the SinkConfig.
		sink, err := sinks.New(cfg)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("creating sink '%s'", cfg.Name))
		}
		log.Debugf("Created %s sink '%s'", cfg.Type, cfg.Name)

		// Register created sink with pipeline.
		if err := pipe.RegisterSink(sink, cfg.Batch.Options()); err != nil {
			return errors.Wrap(err, fmt.Sprintf("registering sink '%s' to pipeline", cfg.Name))
		}
		log.Debugf("Registered %s sink '%s' to pipeline", cfg.Type, cfg.Name)
	}

	return nil
}
