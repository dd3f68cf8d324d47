package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"goshape/adapters/excel"
	"goshape/app"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/internal/config"
	"goshape/internal/container"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command
type rootOptions struct {
	envFile  string
	taxonomy string
	mode     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "goshape-cli",
		Short:         "Generate correct and incorrect relation captions for shape scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load configuration from this .env file")
	rootCmd.PersistentFlags().StringVar(&opts.taxonomy, "taxonomy", "", "Relation taxonomy YAML (overrides TAXONOMY_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.mode, "mode", "", "Dataset mode: train, validation or test (overrides GENERATION_MODE)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newGrammarCmd(opts),
		newDescribeCmd(opts),
		newInspectCmd(),
	)
	return rootCmd
}

// build loads the configuration, applies flag overrides and wires the container
func (o *rootOptions) build() (*container.Container, error) {
	var files []string
	if o.envFile != "" {
		files = append(files, o.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if o.taxonomy != "" {
		cfg.Taxonomy.File = o.taxonomy
	}
	if o.mode != "" {
		cfg.Generation.Mode = o.mode
	}
	return container.New(cfg)
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var count int
	var seed int64
	var incorrectRate float64
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of caption samples",
		Long: `Generate a batch of scenes with relation captions and print it as JSON.

Without --incorrect-rate, even samples are correct and odd samples incorrect.

Example: goshape-cli generate --count 100 --seed 12345 --xlsx batch.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			defer c.Close()

			req := app.BatchRequest{Count: count, Mode: c.Mode(), Seed: c.Config.Generation.Seed}
			if cmd.Flags().Changed("seed") {
				req.Seed = seed
			}
			if cmd.Flags().Changed("incorrect-rate") {
				correctRate := 1 - incorrectRate
				req.CorrectRate = &correctRate
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), c, req, xlsxPath)
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "Number of samples")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for deterministic generation (overrides GENERATION_SEED)")
	cmd.Flags().Float64Var(&incorrectRate, "incorrect-rate", 0.5, "Probability of an incorrect caption")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the batch to this XLSX file")

	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, c *container.Container, req app.BatchRequest, xlsxPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	batch, err := c.CaptionService.GenerateBatch(ctx, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if xlsxPath != "" {
		if err := c.Exporter.WriteFile(xlsxPath, batch); err != nil {
			return err
		}
	}
	return printJSON(out, batch)
}

func newGrammarCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Print the grammar size and symbols of the configured captioner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			defer c.Close()

			source, err := c.RNG.SeededStream(cmd.Context(), "grammar", c.Config.Generation.Seed)
			if err != nil {
				return err
			}
			captioner, err := c.NewCaptioner(source)
			if err != nil {
				return err
			}
			if err := captioner.SetRealizer(c.Realizer); err != nil {
				return err
			}

			symbols := make([]string, 0)
			for symbol := range captioner.GrammarSymbols() {
				symbols = append(symbols, symbol)
			}
			sort.Strings(symbols)
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"realizer": c.Realizer.Name(),
				"size":     captioner.GrammarSize(),
				"symbols":  symbols,
			})
		},
	}
}

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Sample the captioner once and print its sampled state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			defer c.Close()

			source, err := c.RNG.SeededStream(cmd.Context(), "describe", seed)
			if err != nil {
				return err
			}
			captioner, err := c.NewCaptioner(source)
			if err != nil {
				return err
			}
			if err := captioner.SetRealizer(c.Realizer); err != nil {
				return err
			}

			w, err := c.Worlds.Generate(c.Mode(), source)
			if err != nil {
				return err
			}
			if !captioner.Sample(c.Mode(), predication.New(w)) {
				return fmt.Errorf("sampling failed: %w", core.ErrGenerationExhausted)
			}
			return printJSON(cmd.OutOrStdout(), captioner.Describe())
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <workbook.xlsx>",
		Short: "Summarize a workbook exported by generate --xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), excel.NewDataReader(args[0], nil))
		},
	}
}

func runInspect(out io.Writer, reader *excel.DataReader) error {
	manifest, err := reader.ReadPairs(excel.SheetManifest)
	if err != nil {
		return err
	}
	stats, err := reader.ReadPairs(excel.SheetStats)
	if err != nil {
		return err
	}
	samples, err := reader.ReadSamples()
	if err != nil {
		return err
	}

	correct := 0
	predtypes := make(map[string]int)
	for _, row := range samples.Rows {
		if strings.EqualFold(row["correct"], "true") {
			correct++
		}
		predtypes[row["predtype"]]++
	}
	return printJSON(out, map[string]interface{}{
		"manifest":  manifest,
		"stats":     stats,
		"samples":   len(samples.Rows),
		"correct":   correct,
		"predtypes": predtypes,
	})
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
