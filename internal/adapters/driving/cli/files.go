package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List indexed master files",
	RunE:  runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	files, err := queryService.ListMasterFiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing master files: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("No master files indexed.")
		return nil
	}

	for _, f := range files {
		cmd.Println(f)
	}
	return nil
}
