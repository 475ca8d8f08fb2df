package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photosweep/internal/classify"
)

var showClassify bool

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show <dir>",
		Short: "List the triage queue without the TUI",
		Long: `Index a folder and print the resulting queue in triage order (newest
first). With --classify, each asset is also run through the classifier
and its label and confidence are printed.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	showCmd.Flags().BoolVar(&showClassify, "classify", false, "Classify each asset and print its label")
	return showCmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	catalog, _, err := openAndIndex(ctx, args[0], log)
	if err != nil {
		return err
	}
	defer catalog.Close()

	assets, err := catalog.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch assets: %w", err)
	}
	if len(assets) == 0 {
		fmt.Println("No photos found")
		return nil
	}

	cache := classify.NewCache(&classify.Heuristic{Log: log})
	for i, a := range assets {
		line := fmt.Sprintf("%3d. %s  %dx%d  %s",
			i+1, filepath.Base(a.Path), a.Width, a.Height,
			a.CreatedAt.Format("2006-01-02 15:04"))
		if showClassify {
			if done := cache.Request(ctx, a); done != nil {
				cache.Commit(<-done)
			}
			if entry, ok := cache.Peek(a.ID); ok {
				switch entry.State {
				case classify.StateResolved:
					line += fmt.Sprintf("  %s (%.0f%%)", entry.Label, entry.Confidence*100)
				case classify.StateFailed:
					line += "  no label"
				}
			}
		}
		fmt.Println(line)
	}
	return nil
}
