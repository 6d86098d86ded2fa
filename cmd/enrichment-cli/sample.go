package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/botit-ai/enrichment-engine/internal/batch"
)

// newSampleCmd creates the sample subcommand: random row samples for
// evaluation datasets.
func newSampleCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		rows       int
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Create a random row sample of a product export CSV",
		Long: `Copies the header and up to --rows randomly chosen data rows of a
product export CSV into a new file, keeping the original row order and all
columns. Useful for building small evaluation datasets before a full run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			if outputPath == "" {
				outputPath = strings.TrimSuffix(inputPath, ".csv") + "_sample.csv"
			}

			n, err := batch.SampleRowsFile(inputPath, outputPath, rows, seed)
			if err != nil {
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"output_path":  outputPath,
					"sampled_rows": n,
				})
			}

			color.New(color.FgGreen).Printf("✓ Sampled %d rows\n", n)
			fmt.Printf("  Output: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV path (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (default: <input>_sample.csv)")
	cmd.Flags().IntVarP(&rows, "rows", "n", 20, "maximum number of rows to sample")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: time-based)")

	return cmd
}
