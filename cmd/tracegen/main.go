// Package main implements the tracegen CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracegen/internal/version"
)

var cleanups []func()

var rootCmd = &cobra.Command{
	Use:   "tracegen",
	Short: "API call-tracing code generator",
	Long: `tracegen reads C/C++ API descriptions and generates the C++ units that
intercept, serialize and replay-annotate every call, plus optional GL state
dumpers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		for _, setup := range []func(*cobra.Command) (func(), error){setupProfiling, setupTracing} {
			cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			cleanups = append(cleanups, cleanup)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	flags.String("trace", "", "write pipeline trace events to this file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace encoding (auto|text|ndjson|chrome)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring buffer")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go execution trace to this file")
}

// runCleanups releases tracers and profilers in reverse setup order.
func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// main runs the root command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	runCleanups()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag against the terminal state of stdout.
func useColor(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
