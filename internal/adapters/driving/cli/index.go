package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
)

// timePrecision rounds durations in human-facing output.
const timePrecision = time.Millisecond

var (
	indexWait    bool
	indexForce   bool
	indexResume  bool
	indexRestart bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the project index",
	Long: `Scans the project tree for master .grd files and indexes every
message, included fragment and referenced translation bundle.

Only one build may run against a project's store at a time. When
another process is already indexing, the build aborts unless --wait
or --force is given. When a previous build was interrupted, the
build aborts unless --resume or --restart is given.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexWait, "wait", false, "wait for a concurrent build to finish, then build")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "take over from a concurrent build")
	indexCmd.Flags().BoolVar(&indexResume, "resume", false, "continue an interrupted build from its processed-file log")
	indexCmd.Flags().BoolVar(&indexRestart, "restart", false, "discard an interrupted build and rebuild from scratch")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if coordinator == nil {
		return errors.New("index coordinator not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if indexWait && indexForce {
		return fmt.Errorf("%w: --wait and --force are mutually exclusive", domain.ErrInvalidInput)
	}
	if indexResume && indexRestart {
		return fmt.Errorf("%w: --resume and --restart are mutually exclusive", domain.ErrInvalidInput)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	opts := driving.BuildOptions{HeartbeatTimeout: settings.HeartbeatTimeout}
	switch {
	case indexForce:
		opts.OnConflict = driving.ConflictTakeover
	case indexWait:
		opts.OnConflict = driving.ConflictWait
	}
	switch {
	case indexResume:
		opts.OnStale = driving.StaleResume
	case indexRestart:
		opts.OnStale = driving.StaleRestart
	}

	cmd.Println("Indexing project...")

	summary, err := coordinator.FullBuild(cmd.Context(), opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBuildConflict):
			return fmt.Errorf("%w (retry with --wait or --force)", err)
		case errors.Is(err, domain.ErrBuildInterrupted):
			return fmt.Errorf("%w (retry with --resume or --restart)", err)
		}
		return fmt.Errorf("build failed: %w", err)
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, summary *driving.BuildSummary) {
	cmd.Printf("Indexed %d masters, %d fragments, %d bundles (%d messages) in %s\n",
		summary.MastersIndexed, summary.FragmentsIndexed, summary.BundlesIndexed,
		summary.MessagesIndexed, summary.Duration.Round(timePrecision))

	if summary.SkippedResumed > 0 {
		cmd.Printf("Skipped %d already-processed files\n", summary.SkippedResumed)
	}

	if len(summary.Failures) > 0 {
		cmd.Printf("%d files failed:\n", len(summary.Failures))
		for _, f := range summary.Failures {
			cmd.Printf("  %s: %v\n", f.Path, f.Err)
		}
	}
}
