package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List languages with translations",
	RunE:  runLangs,
}

func init() {
	rootCmd.AddCommand(langsCmd)
}

func runLangs(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	langs, err := queryService.ListLanguages(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing languages: %w", err)
	}

	if len(langs) == 0 {
		cmd.Println("No translations indexed.")
		return nil
	}

	for _, lang := range langs {
		cmd.Println(lang)
	}
	return nil
}
