package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"photosweep/internal/classify"
	"photosweep/internal/config"
	"photosweep/internal/importer"
	"photosweep/internal/library"
	"photosweep/internal/tui"
	"photosweep/pkg/models"
)

var (
	configPath string
	watchMode  bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photosweep [dir]",
		Short: "Triage a photo collection one asset at a time",
		Long: `photosweep walks a photo folder, labels each image, and lets you sweep
through the queue with one gesture per photo: drag left to delete,
drag right to keep and move on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTriage,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Keep importing photos that appear while triaging")
	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewShowCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	dir, err := resolveDir(args, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The TUI owns the terminal; route logs nowhere while it runs.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, _, err := openAndIndex(ctx, dir, log)
	if err != nil {
		return err
	}
	defer catalog.Close()

	var watcher *importer.Watcher
	if watchMode || cfg.Watch {
		watcher, err = importer.Watch(ctx, dir, log)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	classifier := &classify.Heuristic{Log: log}
	return tui.Run(ctx, catalog, cfg, classifier, watcher)
}

func resolveDir(args []string, cfg config.Config) (string, error) {
	dir := cfg.Library
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}
	abs, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", dir, err)
	}
	if !abs.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}

// openAndIndex opens the catalog for dir and populates it by scanning the
// folder tree once. The triage queue itself is loaded later from the
// catalog, newest first.
func openAndIndex(ctx context.Context, dir string, log *slog.Logger) (*library.Catalog, importer.ScanReport, error) {
	catalog, err := library.Open(dir, log)
	if err != nil {
		return nil, importer.ScanReport{}, err
	}
	if perm := catalog.RequestAuthorization(ctx); perm == models.PermissionDenied {
		catalog.Close()
		return nil, importer.ScanReport{},
			fmt.Errorf("photo library access denied: grant read permission on %s and retry", dir)
	}

	scanner := &importer.Scanner{
		Create: catalog.CreateFromFile,
		Access: importer.OSAccess{},
		Log:    log,
	}
	report, err := scanner.Scan(ctx, dir)
	if err != nil {
		catalog.Close()
		return nil, importer.ScanReport{}, err
	}
	return catalog, report, nil
}
