package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lingua-cli/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project tree and keep the index current",
	Long: `Performs a full build, then watches the project tree for changes to
.grd, .grdp and .xtb files and reindexes them incrementally.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if coordinator == nil {
		return errors.New("index coordinator not configured")
	}
	if workspace == nil {
		return errors.New("workspace not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("Indexing project...")
	summary, err := coordinator.FullBuild(ctx, driving.BuildOptions{
		OnConflict:       driving.ConflictWait,
		OnStale:          driving.StaleResume,
		HeartbeatTimeout: settings.HeartbeatTimeout,
	})
	if err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}
	printSummary(cmd, summary)

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)...\n", workspace.Root())

	watcher := services.NewWatcher(workspace, coordinator, settings.IgnoreDirs)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cmd.Println("Stopped.")
	return nil
}
