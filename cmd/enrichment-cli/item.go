package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/botit-ai/enrichment-engine/internal/pipeline"
)

// newItemCmd creates the item subcommand: enrich a single item from flags.
func newItemCmd() *cobra.Command {
	var (
		name           string
		description    string
		vendorCategory string
	)

	cmd := &cobra.Command{
		Use:   "item",
		Short: "Enrich a single item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			orchestrator, _, err := buildOrchestrator()
			if err != nil {
				return err
			}

			var spin *spinner.Spinner
			if !outputJSON {
				spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				spin.Suffix = " Enriching item..."
				spin.Writer = os.Stderr
				spin.Start()
			}

			enriched, err := orchestrator.Process(cmd.Context(), pipeline.Item{
				Name:           name,
				Description:    description,
				VendorCategory: vendorCategory,
			})
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(enriched)
			}

			printEnriched(enriched)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "item name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "item description")
	cmd.Flags().StringVar(&vendorCategory, "vendor-category", "", "vendor category/department")

	return cmd
}

func printEnriched(e pipeline.EnrichedItem) {
	keyColor := color.New(color.FgYellow)
	printLevel := func(name string, level pipeline.LevelResult) {
		keyColor.Printf("  %s: ", name)
		if level.Label == pipeline.SentinelLabel {
			color.New(color.FgRed).Printf("%s\n", level.Label)
			return
		}
		fmt.Printf("%s (%d%%)\n", level.Label, level.Confidence)
	}

	color.New(color.FgGreen).Printf("✓ %s\n", e.Item.Name)
	printLevel("Shopping Category   ", e.ShoppingCategory)
	printLevel("Shopping Subcategory", e.ShoppingSubcategory)
	printLevel("Item Category       ", e.ItemCategory)
	printLevel("Item Subcategory    ", e.ItemSubcategory)

	keyColor.Print("  SKW: ")
	fmt.Println(e.SKW)
	keyColor.Print("  DSW: ")
	fmt.Println(e.DSW)
	if e.AIAttributes != "" {
		keyColor.Println("  Attributes:")
		fmt.Println(indent(e.AIAttributes, "    "))
	}
	for field, value := range e.Translations {
		keyColor.Printf("  %s: ", field)
		fmt.Println(value)
	}
}

func indent(s, prefix string) string {
	out := prefix
	for _, r := range s {
		out += string(r)
		if r == '\n' {
			out += prefix
		}
	}
	return out
}
