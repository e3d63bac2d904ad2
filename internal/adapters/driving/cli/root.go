// Package cli implements the command-line interface for lingua.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lingua-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lingua-cli/internal/core/services"
	"github.com/custodia-labs/lingua-cli/internal/logger"
	"github.com/custodia-labs/lingua-cli/internal/parsers/grd"
	"github.com/custodia-labs/lingua-cli/internal/parsers/xtb"
)

var version = "0.1.0"

var (
	verbose    bool
	projectDir string
)

// Services wired by initServices, or injected directly by tests.
var (
	workspace       *domain.Workspace
	indexStore      driven.IndexStore
	settingsService driving.SettingsService
	queryService    driving.QueryService
	coordinator     driving.IndexCoordinator

	// wireServices is cleared by tests that inject their own services.
	wireServices = true
)

var rootCmd = &cobra.Command{
	Use:   "lingua",
	Short: "Index and query localization resource files",
	Long: `Lingua indexes grit-style localization resources: master .grd files,
.grdp fragments included via <part>, and .xtb translation bundles.
Each project gets its own queryable index store, keyed by the
project root, with content hashes compatible with the legacy
message identifiers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if indexStore != nil {
			_ = indexStore.Close()
			indexStore = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "", "project root (defaults to the working directory)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// storelessCommands run without opening an index store.
var storelessCommands = map[string]bool{
	"help":       true,
	"completion": true,
	"version":    true,
	"settings":   true,
	"show":       true,
	"limit":      true,
	"timeout":    true,
	"data-dir":   true,
}

// storeCreatingCommands may create the index store when it does not
// exist yet. Every other command requires a prior index run.
var storeCreatingCommands = map[string]bool{
	"index": true,
	"watch": true,
}

// initServices wires the driving services for the invoked command.
// Already-populated services are left alone so tests can inject mocks.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func initServices(cmd *cobra.Command) error {
	if !wireServices {
		return nil
	}

	if settingsService == nil {
		settingsStore, err := file.NewSettingsStore("")
		if err != nil {
			return fmt.Errorf("opening settings store: %w", err)
		}
		settingsService = services.NewSettingsService(settingsStore)
	}

	if storelessCommands[cmd.Name()] {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	if workspace == nil {
		root := projectDir
		if root == "" {
			if root, err = os.Getwd(); err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}
		}
		if workspace, err = domain.NewWorkspace(root); err != nil {
			return err
		}
	}

	if indexStore == nil {
		filename := workspace.StoreFilename()
		if !storeCreatingCommands[cmd.Name()] && !sqlite.StoreExists(settings.DataDir, filename) {
			return fmt.Errorf("%w: run 'lingua index' first", domain.ErrStoreNotInitialized)
		}

		store, err := sqlite.NewStore(settings.DataDir, filename)
		if err != nil {
			return fmt.Errorf("opening index store: %w", err)
		}
		indexStore = store
	}

	if queryService == nil {
		queryService = services.NewQueryService(indexStore, settings.SearchLimit)
	}
	if coordinator == nil {
		coordinator = services.NewIndexCoordinator(workspace, indexStore, grd.New(), xtb.New(), settings.IgnoreDirs)
	}

	return nil
}
