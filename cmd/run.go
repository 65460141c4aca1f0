package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tsdbkit/fluxbatch/internal/apiserver"
	"github.com/tsdbkit/fluxbatch/internal/pipeline"
	"github.com/tsdbkit/fluxbatch/internal/pprof"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Read line protocol from stdin and ship it to configured sinks.",
	RunE:         run,
	SilenceUsage: true, // Don't show usage when RunE returns error.
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {

	log.Infoln("Starting", appName)

	if viper.GetBool(cfgPProfEnabled) {
		pprof.ListenAndServe(viper.GetString(cfgPProfEndpoint))
	}

	scfg, err := getSinkConfig()
	if err != nil {
		return err
	}

	pipe := pipeline.New()

	if err := initRegisterSinks(scfg, pipe); err != nil {
		return errors.Wrap(err, "initialize and register sinks")
	}

	// Initialize and run the API server if enabled.
	if viper.GetBool(cfgAPIEnabled) {
		if err := apiserver.Init(pipe); err != nil {
			return err
		}

		if err := apiserver.Run(viper.GetString(cfgAPIEndpoint)); err != nil {
			return err
		}
	}

	// Disable all engines on the way out, synchronously flushing any
	// points still in their buffers.
	defer pipe.Stop()

	g, ctx := errgroup.WithContext(context.Background())

	// Ship points from stdin until it closes.
	g.Go(func() error {
		if err := pipe.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
			return err
		}
		// Source closed, unblock the signal waiter.
		return io.EOF
	})

	// Stop reading when the program is interrupted.
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		select {
		case s := <-sig:
			log.Info("Exiting with signal ", s)
			// Unblock the reader waiting on stdin.
			_ = os.Stdin.Close()
			return context.Canceled
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := g.Wait(); err != nil && err != io.EOF && err != context.Canceled {
		return err
	}

	return nil
}
