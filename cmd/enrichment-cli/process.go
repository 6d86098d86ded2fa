package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/botit-ai/enrichment-engine/internal/batch"
)

// newProcessCmd creates the process subcommand: end-to-end CSV enrichment.
func newProcessCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Enrich a product export CSV end to end",
		Long: `Reads a product export CSV, runs every row through taxonomy
classification, keyword generation, and attribute extraction, and writes the
enriched CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			if outputPath == "" {
				outputPath = strings.TrimSuffix(inputPath, ".csv") + "_enriched.csv"
			}

			orchestrator, _, err := buildOrchestrator()
			if err != nil {
				return err
			}
			runner := buildRunner(cmd.Context(), orchestrator)

			// Count rows up front so the bar has a total.
			items, err := countRows(inputPath)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			progress := func() {}
			if !outputJSON {
				bar = newBar(int64(items), "Enriching")
				progress = func() { _ = bar.Add(1) }
			}

			start := time.Now()
			result, err := runner.Run(cmd.Context(), inputPath, outputPath, progress)
			if err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Finish()
			}

			if outputJSON {
				out := map[string]interface{}{
					"output_path":    result.OutputPath,
					"processed_rows": result.Total,
					"failed_rows":    result.Failed,
					"duration":       time.Since(start).String(),
				}
				if result.Job != nil {
					out["job_id"] = result.Job.ID.String()
				}
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			color.New(color.FgGreen).Printf("✓ Enriched %d rows in %s\n", result.Total, time.Since(start).Round(time.Second))
			if result.Failed > 0 {
				color.New(color.FgYellow).Printf("⚠ %d rows failed and carry error records\n", result.Failed)
			}
			fmt.Printf("  Output: %s\n", result.OutputPath)
			if result.Job != nil {
				fmt.Printf("  Job:    %s\n", result.Job.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV path (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (default: <input>_enriched.csv)")

	return cmd
}

func newBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// countRows returns the number of data rows the batch reader will process.
func countRows(path string) (int, error) {
	items, err := batch.ReadItemsFile(path)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
