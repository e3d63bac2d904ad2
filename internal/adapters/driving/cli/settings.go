package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the data directory, ignore list, heartbeat
timeout and search page size. Settings are stored per user and
apply to every project.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLimitCmd = &cobra.Command{
	Use:   "limit [n]",
	Short: "Set the default search page size",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsLimit,
}

var settingsTimeoutCmd = &cobra.Command{
	Use:   "timeout [seconds]",
	Short: "Set the build heartbeat timeout",
	Long: `Sets how long a concurrent build's heartbeat may go unrefreshed
before other processes treat that build as interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsTimeout,
}

var settingsDataDirCmd = &cobra.Command{
	Use:   "data-dir [path]",
	Short: "Set where per-project index databases are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDataDir,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLimitCmd)
	settingsCmd.AddCommand(settingsTimeoutCmd)
	settingsCmd.AddCommand(settingsDataDirCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}

	cmd.Printf("Config file:       %s\n", settingsService.Path())
	cmd.Printf("Data directory:    %s\n", dataDir)
	cmd.Printf("Ignored dirs:      %v\n", settings.IgnoreDirs)
	cmd.Printf("Heartbeat timeout: %s\n", settings.HeartbeatTimeout)
	cmd.Printf("Search limit:      %d\n", settings.SearchLimit)
	return nil
}

func runSettingsLimit(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil || limit <= 0 {
		return fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	settings.SearchLimit = limit
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Search limit set to %d.\n", limit)
	return nil
}

func runSettingsTimeout(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return fmt.Errorf("%w: timeout must be a positive number of seconds", domain.ErrInvalidInput)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	settings.HeartbeatTimeout = time.Duration(seconds) * time.Second
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Heartbeat timeout set to %s.\n", settings.HeartbeatTimeout)
	return nil
}

func runSettingsDataDir(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	settings.DataDir = args[0]
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Data directory set to %s.\n", args[0])
	return nil
}
