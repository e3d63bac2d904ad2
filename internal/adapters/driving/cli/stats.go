package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCoverage bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsCoverage, "coverage", false, "include per-language translation coverage")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	stats, err := queryService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	cmd.Printf("Files:        %d (%d masters, %d fragments, %d bundles)\n",
		stats.Files, stats.Masters, stats.Fragments, stats.Bundles)
	cmd.Printf("Messages:     %d\n", stats.Messages)
	cmd.Printf("Aliases:      %d\n", stats.Aliases)
	cmd.Printf("Translations: %d across %d languages\n", stats.Translations, stats.Languages)

	if !statsCoverage {
		return nil
	}

	coverage, err := queryService.Coverage(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading coverage: %w", err)
	}

	if len(coverage) == 0 {
		return nil
	}

	cmd.Println("\nCoverage:")
	for _, c := range coverage {
		total := c.Translated + c.Missing
		pct := 0.0
		if total > 0 {
			pct = float64(c.Translated) / float64(total) * 100
		}
		cmd.Printf("  %-8s %d/%d (%.1f%%)\n", c.Lang, c.Translated, total, pct)
	}
	return nil
}
