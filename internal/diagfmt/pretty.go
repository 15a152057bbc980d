// Package diagfmt renders diagnostic bags for terminals and tools.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"tracegen/internal/diag"
)

func formatPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base != "" {
			if rel, err := filepath.Rel(base, path); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

func location(loc diag.Location, mode PathMode, base string) diag.Location {
	loc.File = formatPath(loc.File, mode, base)
	return loc
}

// Pretty prints one block per diagnostic, in bag order:
//
//	gl.toml:3:9 [types.GLsizei]: ERROR DSC1003: GLsizei is not declared
//	    note: gl.toml [functions.glViewport]: referenced here
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	pathColor := color.New(color.Bold)
	noteColor := color.New(color.FgBlue)
	for _, c := range []*color.Color{sevColor[diag.SevError], sevColor[diag.SevWarning], sevColor[diag.SevInfo], pathColor, noteColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range bag.Items() {
		loc := location(d.Primary, opts.PathMode, opts.BaseDir)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			pathColor.Sprint(loc),
			sevColor[d.Severity].Sprint(d.Severity),
			d.Code.ID(),
			d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "    %s %s: %s\n", noteColor.Sprint("note:"), location(n.Loc, opts.PathMode, opts.BaseDir), n.Msg)
		}
	}
}
