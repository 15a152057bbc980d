package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracegen/internal/backend/glstate"
)

var stateCmd = &cobra.Command{
	Use:   "state [flags] <description.toml>",
	Short: "Print the state dumper of a description",
	Long:  "Generate the parameter snapshot unit from the [state] table of one description.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		in, desc, err := loadDescription(cmd, args[0])
		if err != nil {
			return err
		}
		if desc.State == nil {
			return fmt.Errorf("%s has no [state] table", args[0])
		}
		src, err := glstate.Generate(cmd.Context(), in, desc.State)
		if err != nil {
			return err
		}
		if out == "" || out == "-" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), src)
			return err
		}
		// #nosec G306 -- generated sources are shared build inputs
		return os.WriteFile(out, []byte(src), 0o644)
	},
}

func init() {
	stateCmd.Flags().StringP("out", "o", "", "write to this file instead of stdout")
}
