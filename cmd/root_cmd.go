// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/anonymiser/cmd/config"
	"github.com/xataio/anonymiser/internal/log/zerolog"
	"github.com/xataio/anonymiser/internal/profiling"
	loglib "github.com/xataio/anonymiser/pkg/log"
	"github.com/xataio/anonymiser/pkg/otel"
)

// Version is the anonymiser version
var (
	Version = "development"
	Env     string
)

func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "anonymiser",
		Short:        "Deterministic masking of personally identifiable information",
		SilenceUsage: true,
		Version:      version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			return nil
		},
	}

	// env variables carry the ANONYMISER_ prefix in their key names
	viper.AutomaticEnv()

	// Flag definition

	// root cmd
	rootCmd.PersistentFlags().StringP("config", "c", "", ".env or .yaml config file to use with anonymiser if any")
	rootCmd.PersistentFlags().String("log-level", "info", "log level for the application. One of trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().String("log-format", "console", "log output format. One of console, json")
	rootCmd.PersistentFlags().Int("affine-a", 1, "Multiplier of the affine digit substitution")
	rootCmd.PersistentFlags().Int("affine-b", 0, "Offset of the affine digit substitution")
	rootCmd.PersistentFlags().Int("affine-n", 0, "Modulus of the affine digit substitution. Must be greater than 0")

	// serve cmd
	serveCmd.Flags().String("address", "", "Address for the server to listen on, in the format host:port. Defaults to :8080")
	serveCmd.Flags().Bool("profile", false, "Whether to expose a /debug/pprof endpoint on localhost:6060")

	// mask cmd
	maskCmd.Flags().StringP("input", "i", "", "JSON lines file with the records to mask. Defaults to stdin")
	maskCmd.Flags().StringP("output", "o", "", "File where the masked JSON lines are written. Defaults to stdout")
	maskCmd.Flags().Int("workers", 4, "Number of workers masking records concurrently")
	maskCmd.Flags().Int("batch-size", 1000, "Number of records read before masking")
	maskCmd.Flags().Bool("progress", false, "Whether to display a progress bar on stderr")
	maskCmd.Flags().Bool("profile", false, "Whether to produce CPU and memory profile files, as well as exposing a /debug/pprof endpoint on localhost:6060")

	// transform cmd
	transformCmd.Flags().StringP("transformer", "t", "hash", "Name of the transformer to apply")
	transformCmd.Flags().StringToString("param", nil, "Transformer parameters in the format key=value")
	transformCmd.Flags().Bool("list", false, "List the available transformers and their parameters")

	// validate cmd
	validateCmd.Flags().Bool("json", false, "Output the masking policy in JSON format")

	// Flag binding for root cmd
	rootFlagBinding(rootCmd)

	// register subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(maskCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(validateCmd)
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	cmd := Prepare()
	return cmd.Execute()
}

func withSignalWatcher(fn func(ctx context.Context) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc,
			syscall.SIGHUP,
			syscall.SIGINT,
			syscall.SIGTERM,
			syscall.SIGQUIT)
		defer signal.Stop(sigc)
		go func() {
			select {
			case <-sigc:
				cancel()
			case <-ctx.Done():
			}
		}()

		return fn(ctx)
	}
}

func withProfiling(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) (err error) {
	return func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("profile").Value.String() == "false" {
			return fn(cmd, args)
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		profiling.StartProfilingServer("localhost:6060", logger)
		// serve is a long running process, do not produce a cpu/mem files but
		// rather expose the http endpoint only.
		if cmd.Name() == "serve" {
			return fn(cmd, args)
		}

		stopCPUProfile, err := profiling.StartCPUProfile("cpu.prof")
		if err != nil {
			return err
		}
		defer func() {
			stopCPUProfile()
			if memErr := profiling.CreateMemoryProfile("mem.prof"); memErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), memErr)
			}
		}()

		return fn(cmd, args)
	}
}

func rootFlagBinding(cmd *cobra.Command) {
	viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("ANONYMISER_LOG_LEVEL", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("ANONYMISER_LOG_FORMAT", cmd.PersistentFlags().Lookup("log-format"))

	// to be able to overwrite configuration with flags when yaml config file is
	// provided
	viper.BindPFlag("anonymiser.affine.a", cmd.PersistentFlags().Lookup("affine-a"))
	viper.BindPFlag("anonymiser.affine.b", cmd.PersistentFlags().Lookup("affine-b"))
	viper.BindPFlag("anonymiser.affine.n", cmd.PersistentFlags().Lookup("affine-n"))

	// to be able to overwrite configuration with flags when env config file is
	// provided or when no configuration is provided
	viper.BindPFlag("ANONYMISER_AFFINE_A", cmd.PersistentFlags().Lookup("affine-a"))
	viper.BindPFlag("ANONYMISER_AFFINE_B", cmd.PersistentFlags().Lookup("affine-b"))
	viper.BindPFlag("ANONYMISER_AFFINE_N", cmd.PersistentFlags().Lookup("affine-n"))
}

func version() string {
	if Env != "" {
		return Env + " (" + Version + ")"
	}
	return Version
}

func newLogger() (loglib.Logger, error) {
	logger, err := zerolog.NewLogger(&zerolog.Config{
		LogLevel: viper.GetString("ANONYMISER_LOG_LEVEL"),
		Format:   viper.GetString("ANONYMISER_LOG_FORMAT"),
	})
	if err != nil {
		return nil, fmt.Errorf("initialising logger: %w", err)
	}
	zerolog.SetGlobalLogger(logger)
	return zerolog.NewStdLogger(logger), nil
}

func newInstrumentationProvider() (otel.InstrumentationProvider, error) {
	cfg, err := config.ParseInstrumentationConfig()
	if err != nil {
		return nil, fmt.Errorf("parsing instrumentation config: %w", err)
	}
	if Version != "development" {
		cfg.ServiceVersion = version()
	}

	p, err := otel.NewInstrumentationProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialisating instrumentation provider: %w", err)
	}
	return p, nil
}
