package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tracegen/internal/diag"
	"tracegen/internal/diagfmt"
)

// printDiagnostics renders bag on stdout as pretty text or one JSON
// document, honouring --color and --max-diagnostics.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, format string) error {
	if bag == nil || bag.Len() == 0 && format != "json" {
		return nil
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	baseDir, err := filepath.Abs(".")
	if err != nil {
		baseDir = ""
	}

	switch format {
	case "json":
		return diagfmt.JSON(cmd.OutOrStdout(), bag, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeRelative,
			BaseDir:      baseDir,
			Max:          maxDiagnostics,
			IncludeNotes: true,
		})
	case "pretty", "":
		color, err := useColor(cmd)
		if err != nil {
			return err
		}
		shown := bag
		if maxDiagnostics > 0 && bag.Len() > maxDiagnostics {
			shown = diag.NewBag(maxDiagnostics)
			for _, d := range bag.Items() {
				if !shown.Add(d) {
					break
				}
			}
		}
		diagfmt.Pretty(cmd.OutOrStdout(), shown, diagfmt.PrettyOpts{
			Color:     color,
			PathMode:  diagfmt.PathModeRelative,
			BaseDir:   baseDir,
			ShowNotes: true,
		})
		if shown != bag {
			fmt.Fprintf(cmd.ErrOrStderr(), "... %d more diagnostics not shown\n", bag.Len()-shown.Len())
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
