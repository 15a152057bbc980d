package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tracegen/internal/diagfmt"
	"tracegen/internal/observ"
	"tracegen/internal/pipeline"
	"tracegen/internal/project"
	"tracegen/internal/version"
)

const noManifestMessage = "no " + project.ManifestName + " found\nname the descriptions explicitly, e.g.:\n  tracegen generate api/gl.toml"

var generateCmd = &cobra.Command{
	Use:   "generate [flags] [description.toml...]",
	Short: "Generate trace units from API descriptions",
	Long: `Generate the call-tracing C++ unit of every API description.

Without arguments the inputs and options come from the tracegen.toml found in
the current directory or one of its parents. Flags override the manifest.`,
	RunE: generateExecution,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("out", "o", "", "output directory (default from the manifest, else gen)")
	f.Bool("dry-run", false, "generate without writing any file")
	f.Bool("sigs", false, "write the msgpack signature table next to each unit")
	f.Bool("state", false, "emit the state dumper of descriptions with a [state] table")
	f.Bool("verify", false, "generate twice and require identical output")
	f.IntP("jobs", "j", 0, "units generated concurrently (0 means GOMAXPROCS)")
	f.String("dispatch-prefix", "", "prefix of the real-entrypoint pointers (default __)")
	f.String("format", "pretty", "output format (pretty|json)")
	f.String("ui", "auto", "progress view (auto|on|off)")
	f.BoolP("watch", "w", false, "regenerate whenever a description changes")
}

// generateRequest merges the manifest, the positional inputs and the flags.
func generateRequest(cmd *cobra.Command, args []string) (*pipeline.Request, error) {
	req := &pipeline.Request{}
	if len(args) > 0 {
		req.Inputs = args
		req.OutDir = project.DefaultOutDir
	} else {
		m, found, err := project.LoadManifest(".")
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.New(noManifestMessage)
		}
		if err := m.CheckTool(version.Version); err != nil {
			return nil, err
		}
		if req.Inputs, err = m.Inputs(); err != nil {
			return nil, err
		}
		if req.OutDir, err = m.OutDir(); err != nil {
			return nil, err
		}
		req.Sigs = m.Generate.Sigs
		req.State = m.Generate.State
		req.DispatchPrefix = m.Generate.DispatchPrefix
	}

	f := cmd.Flags()
	var err error
	if f.Changed("out") {
		if req.OutDir, err = f.GetString("out"); err != nil {
			return nil, err
		}
	}
	if dry, _ := f.GetBool("dry-run"); dry {
		req.OutDir = ""
	}
	for name, dst := range map[string]*bool{"sigs": &req.Sigs, "state": &req.State} {
		if !f.Changed(name) {
			continue
		}
		if *dst, err = f.GetBool(name); err != nil {
			return nil, err
		}
	}
	if req.Verify, err = f.GetBool("verify"); err != nil {
		return nil, err
	}
	if f.Changed("dispatch-prefix") {
		if req.DispatchPrefix, err = f.GetString("dispatch-prefix"); err != nil {
			return nil, err
		}
	}
	if req.Jobs, err = f.GetInt("jobs"); err != nil {
		return nil, err
	}
	if req.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	return req, nil
}

func generateExecution(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}

	req, err := generateRequest(cmd, args)
	if err != nil {
		return err
	}
	opts := generateOutput{format: format, mode: mode, quiet: quiet, timings: timings}
	if !watch {
		return generateOnce(cmd, req, opts)
	}

	w, err := newInputWatcher(req.Inputs)
	if err != nil {
		return err
	}
	defer w.Close()
	rerun := func() error { return generateOnce(cmd, req, opts) }
	if err := rerun(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %d descriptions, press Ctrl+C to stop\n", len(req.Inputs))
	return w.run(cmd.Context(), watchDebounce, rerun, cmd.ErrOrStderr())
}

type generateOutput struct {
	format  string
	mode    uiMode
	quiet   bool
	timings bool
}

// generateOnce runs the pipeline and prints its outcome.
func generateOnce(cmd *cobra.Command, req *pipeline.Request, opts generateOutput) error {
	var (
		res *pipeline.Result
		err error
	)
	if opts.format == "pretty" && shouldUseTUI(opts.mode, len(req.Inputs), opts.quiet) {
		res, err = runWithUI(cmd.Context(), "generating trace units", req)
	} else {
		res, err = pipeline.Run(cmd.Context(), req)
	}
	if res == nil {
		return err
	}
	if err != nil {
		dumpTraceRing(cmd)
	}

	if opts.format == "json" {
		if jerr := writeGenerateJSON(cmd.OutOrStdout(), res, req); jerr != nil {
			return jerr
		}
		return err
	}
	if perr := printDiagnostics(cmd, res.Bag(), opts.format); perr != nil {
		return perr
	}
	if !opts.quiet {
		printUnits(cmd.OutOrStdout(), res)
	}
	if opts.timings {
		printUnitTimings(cmd.OutOrStdout(), res.Units)
	}
	return err
}

func printUnits(out io.Writer, res *pipeline.Result) {
	for _, u := range res.Units {
		if u.Failed() {
			fmt.Fprintf(out, "%s: failed\n", u.Name)
			continue
		}
		fmt.Fprintf(out, "%s: %d types, digest %s\n", u.Name, u.Types, u.Digest.Short())
		for _, path := range u.Outputs {
			fmt.Fprintf(out, "  wrote %s\n", displayPath(path))
		}
	}
	if !res.Digest.IsZero() {
		fmt.Fprintf(out, "digest %s\n", res.Digest)
	}
}

func displayPath(path string) string {
	if rel, err := filepath.Rel(".", path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

type unitReport struct {
	Name    string        `json:"name"`
	Input   string        `json:"input"`
	Failed  bool          `json:"failed"`
	Digest  string        `json:"digest,omitempty"`
	Types   int           `json:"types"`
	Outputs []string      `json:"outputs,omitempty"`
	Timings observ.Report `json:"timings"`
}

type generateReport struct {
	Digest      string                    `json:"digest,omitempty"`
	Units       []unitReport              `json:"units"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func writeGenerateJSON(out io.Writer, res *pipeline.Result, req *pipeline.Request) error {
	report := generateReport{
		Units: make([]unitReport, 0, len(res.Units)),
		Diagnostics: diagfmt.BuildDiagnosticsOutput(res.Bag(), diagfmt.JSONOpts{
			Max:          req.MaxDiagnostics,
			IncludeNotes: true,
		}),
	}
	if !res.Digest.IsZero() {
		report.Digest = res.Digest.String()
	}
	for _, u := range res.Units {
		ur := unitReport{
			Name:    u.Name,
			Input:   u.Input,
			Failed:  u.Failed(),
			Types:   u.Types,
			Outputs: u.Outputs,
			Timings: u.Timer.Report(),
		}
		if !u.Failed() {
			ur.Digest = u.Digest.String()
		}
		report.Units = append(report.Units, ur)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
