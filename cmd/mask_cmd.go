// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/anonymiser/cmd/config"
	"github.com/xataio/anonymiser/internal/progress"
	"github.com/xataio/anonymiser/pkg/anonymiser"
	"github.com/xataio/anonymiser/pkg/anonymiser/jsonl"
)

var maskCmd = &cobra.Command{
	Use:     "mask",
	Short:   "Mask reads JSON lines of records and writes them masked, in the same order",
	PreRunE: maskFlagBinding,
	RunE:    withProfiling(withSignalWatcher(mask)),
	Example: `
	anonymiser mask --affine-n 10 --input records.jsonl --output masked.jsonl
	cat records.jsonl | anonymiser mask --config config.yaml > masked.jsonl
	anonymiser mask -c config.env -i records.jsonl -o masked.jsonl --workers 8 --progress`,
}

func mask(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	params, err := config.ParseAnonymiserConfig()
	if err != nil {
		return fmt.Errorf("parsing anonymiser config: %w", err)
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

	var in io.Reader = os.Stdin
	if inputFile := viper.GetString("mask.input"); inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if outputFile := viper.GetString("mask.output"); outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	opts := []jsonl.Option{jsonl.WithLogger(logger)}
	if viper.GetBool("mask.progress") {
		bar := progress.NewRecordsBar(-1, "masking records...", os.Stderr)
		defer bar.Close()
		opts = append(opts, jsonl.WithProgressBar(bar))
	}

	masker := jsonl.New(&jsonl.Config{
		Workers:   viper.GetInt("mask.workers"),
		BatchSize: viper.GetInt("mask.batch_size"),
	}, policy, opts...)

	if _, err := masker.Mask(ctx, in, out); err != nil {
		return fmt.Errorf("masking records: %w", err)
	}
	return nil
}

func maskFlagBinding(cmd *cobra.Command, _ []string) error {
	viper.BindPFlag("mask.input", cmd.Flags().Lookup("input"))
	viper.BindPFlag("mask.output", cmd.Flags().Lookup("output"))
	viper.BindPFlag("mask.workers", cmd.Flags().Lookup("workers"))
	viper.BindPFlag("mask.batch_size", cmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("mask.progress", cmd.Flags().Lookup("progress"))
	return nil
}
