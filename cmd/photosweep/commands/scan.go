package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Import a folder tree without the TUI",
		Long: `Walk a folder tree, register every image file with the catalog, and
print an import report. Hidden files, non-images, and package
directories are skipped; a file that fails to decode is reported and
the scan continues.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	catalog, report, err := openAndIndex(cmd.Context(), args[0], log)
	if err != nil {
		return err
	}
	defer catalog.Close()

	fmt.Printf("Imported:   %d\n", report.Imported)
	fmt.Printf("Duplicates: %d\n", report.Duplicate)
	fmt.Printf("Failed:     %d\n", report.Failed)
	fmt.Printf("Skipped:    %d\n", report.Skipped)
	return nil
}
