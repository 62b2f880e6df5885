// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/xataio/anonymiser/cmd/config"
	"github.com/xataio/anonymiser/pkg/anonymiser"
	"github.com/xataio/anonymiser/pkg/anonymiser/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve starts the anonymiser HTTP API",
	PreRunE: serveFlagBinding,
	RunE:    withProfiling(withSignalWatcher(serve)),
	Example: `
	anonymiser serve --affine-a 3 --affine-b 7 --affine-n 10
	anonymiser serve --config config.yaml --log-level debug
	anonymiser serve --config config.env --address localhost:9090`,
}

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	params, err := config.ParseAnonymiserConfig()
	if err != nil {
		return fmt.Errorf("parsing anonymiser config: %w", err)
	}

	serverConfig, err := config.ParseServerConfig()
	if err != nil {
		return fmt.Errorf("parsing server config: %w", err)
	}

	provider, err := newInstrumentationProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	policy, err := anonymiser.NewPolicy(params,
		anonymiser.WithLogger(logger),
		anonymiser.WithInstrumentation(provider.NewInstrumentation("anonymiser")))
	if err != nil {
		return err
	}

	srv, err := server.New(serverConfig, policy, server.WithLogger(logger))
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.Start()
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down anonymiser server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func serveFlagBinding(cmd *cobra.Command, _ []string) error {
	// to be able to overwrite configuration with flags when yaml config file is
	// provided
	if cmd.Flags().Lookup("address").Changed {
		viper.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	}
	// to be able to overwrite configuration with flags when env config file is
	// provided or when no configuration is provided
	viper.BindPFlag("ANONYMISER_SERVER_ADDRESS", cmd.Flags().Lookup("address"))
	return nil
}
