package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search indexed messages",
	Long: `Searches message names, source text and translations for a keyword.
Results are ranked: exact name matches first, then name prefixes,
then source-text matches, then translation matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	page, err := queryService.Search(cmd.Context(), args[0], searchLimit, searchOffset)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, page)
	}
	return outputSearchTable(cmd, page)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, page domain.SearchPage) error {
	if len(page.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%d of %d):\n\n", len(page.Results), page.Total)
	for i, r := range page.Results {
		cmd.Printf("  [%d] %s  %s\n", searchOffset+i+1, r.Message.Name, r.Message.IDHash)
		cmd.Printf("      %s\n", r.Message.Presentable)
		if r.MatchedLang != "" {
			cmd.Printf("      Matched translation: %s\n", r.MatchedLang)
		}
		cmd.Printf("      %s\n\n", r.Message.FilePath)
	}

	return nil
}
