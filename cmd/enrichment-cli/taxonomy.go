package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
)

// newTaxonomyCmd creates the taxonomy subcommand: inspect the loaded tree.
func newTaxonomyCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the loaded shopping taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := taxonomy.Load(cfg.Taxonomy.Path)
			if err != nil {
				return err
			}

			if category != "" {
				subs, ok := store.Subcategories(category)
				if !ok {
					return fmt.Errorf("unknown shopping category %q", category)
				}
				if outputJSON {
					return json.NewEncoder(os.Stdout).Encode(map[string][]string{category: subs})
				}
				color.New(color.FgCyan, color.Bold).Println(category)
				for _, sub := range subs {
					fmt.Printf("  %s\n", sub)
				}
				return nil
			}

			categories := store.Categories()
			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(categories)
			}
			for _, cat := range categories {
				fmt.Println(cat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "show subcategories of one shopping category")

	return cmd
}
