package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
)

var translateSkipCheck bool

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Manage translations",
}

var translateSetCmd = &cobra.Command{
	Use:   "set [id-hash] [lang] [text]",
	Short: "Set one translation",
	Long: `Writes translation text for a message identified by its content
hash. The message must already be indexed; --skip-check bypasses
that check for trusted bulk imports.`,
	Args: cobra.ExactArgs(3),
	RunE: runTranslateSet,
}

var translateMissingCmd = &cobra.Command{
	Use:   "missing [lang]",
	Short: "List untranslated messages for a language",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranslateMissing,
}

func init() {
	translateSetCmd.Flags().BoolVar(&translateSkipCheck, "skip-check", false, "skip the message-existence check")
	translateCmd.AddCommand(translateSetCmd)
	translateCmd.AddCommand(translateMissingCmd)
	rootCmd.AddCommand(translateCmd)
}

func runTranslateSet(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	idHash, lang, text := args[0], args[1], args[2]
	opts := driving.UpsertTranslationOptions{SkipCheck: translateSkipCheck}

	err := queryService.UpsertTranslation(cmd.Context(), idHash, lang, text, opts)
	if errors.Is(err, domain.ErrOrphanTranslation) {
		return fmt.Errorf("no indexed message has hash %s (use --skip-check to write anyway)", idHash)
	}
	if err != nil {
		return fmt.Errorf("saving translation: %w", err)
	}

	cmd.Printf("Translation saved: %s [%s]\n", idHash, lang)
	return nil
}

func runTranslateMissing(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	missing, err := queryService.MissingTranslations(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing missing translations: %w", err)
	}

	if len(missing) == 0 {
		cmd.Printf("All messages are translated for %s.\n", args[0])
		return nil
	}

	cmd.Printf("%d messages missing %s translations:\n", len(missing), args[0])
	for _, m := range missing {
		cmd.Printf("  %s  %s\n", m.Name, m.IDHash)
	}
	return nil
}
