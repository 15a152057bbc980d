package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracegen/internal/apidesc"
	"tracegen/internal/diag"
	"tracegen/internal/types"
)

// loadDescription parses one description into a fresh interner and prints
// its diagnostics. It fails when the description has errors.
func loadDescription(cmd *cobra.Command, path string) (*types.Interner, *apidesc.Description, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	in := types.NewInterner()
	desc := apidesc.Load(path, in, diag.NewDedupReporter(diag.BagReporter{Bag: bag}))
	bag.Sort()
	if err := printDiagnostics(cmd, bag, "pretty"); err != nil {
		return nil, nil, err
	}
	if desc == nil || bag.HasErrors() {
		return nil, nil, fmt.Errorf("%s: description has errors", path)
	}
	return in, desc, nil
}
