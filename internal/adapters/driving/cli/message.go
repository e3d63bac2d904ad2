package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

var (
	messageHash string
	messageFile string
	messageJSON bool
)

var messageCmd = &cobra.Command{
	Use:   "message [name]",
	Short: "Show one message with its translations",
	Long: `Resolves a message by symbolic name and prints its source text,
description and every available translation.

When several files define the same name with different content, the
name resolves to the first definition indexed; use --file to pick a
specific one, or --hash to resolve by content hash instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMessage,
}

func init() {
	messageCmd.Flags().StringVar(&messageHash, "hash", "", "resolve by content hash instead of name")
	messageCmd.Flags().StringVar(&messageFile, "file", "", "disambiguate a name by its defining file")
	messageCmd.Flags().BoolVar(&messageJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(messageCmd)
}

func runMessage(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	var result *domain.MessageWithTranslations
	var err error

	ctx := cmd.Context()
	switch {
	case messageHash != "":
		result, err = queryService.ResolveByHash(ctx, messageHash)
	case len(args) == 1 && messageFile != "":
		result, err = queryService.ResolveByNameAndFile(ctx, args[0], messageFile)
	case len(args) == 1:
		result, err = queryService.ResolveByName(ctx, args[0])
	default:
		return fmt.Errorf("%w: a message name or --hash is required", domain.ErrInvalidInput)
	}

	if errors.Is(err, domain.ErrNotFound) {
		return errors.New("message not found")
	}
	if err != nil {
		return fmt.Errorf("resolving message: %w", err)
	}

	if messageJSON {
		return outputJSON(cmd, result)
	}

	printMessage(cmd, result)
	return nil
}

func printMessage(cmd *cobra.Command, result *domain.MessageWithTranslations) {
	m := result.Message
	cmd.Printf("%s (%s)\n", m.Name, m.IDHash)
	cmd.Printf("  Text:     %s\n", m.Presentable)
	if m.Description != "" {
		cmd.Printf("  Desc:     %s\n", m.Description)
	}
	if m.Meaning != "" {
		cmd.Printf("  Meaning:  %s\n", m.Meaning)
	}
	cmd.Printf("  File:     %s", m.FilePath)
	if m.StartLine > 0 {
		cmd.Printf(":%d", m.StartLine)
	}
	cmd.Println()

	if len(result.Translations) == 0 {
		cmd.Println("  No translations.")
		return
	}

	langs := make([]string, 0, len(result.Translations))
	for lang := range result.Translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	cmd.Println("  Translations:")
	for _, lang := range langs {
		cmd.Printf("    %-8s %s\n", lang, result.Translations[lang].Text)
	}
}
