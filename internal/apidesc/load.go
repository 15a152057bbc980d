// Package apidesc reads TOML API descriptions into a types.Interner.
//
// A description declares named types ([[type]]), COM-style interfaces
// ([[interface]]) and exported functions ([[function]]); an optional [state]
// table configures the state snapshot emitter. Type references are names
// with C pointer and const shorthand: "const GLfloat *", "IDevice **",
// "char * const".
//
// Problems are reported through a diag.Reporter and loading carries on, so
// one run lists every problem in a file.
package apidesc

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"tracegen/internal/backend/glstate"
	"tracegen/internal/diag"
	"tracegen/internal/types"
)

// Description is a loaded API.
type Description struct {
	Path string
	API  *types.API
	// Types maps every declared name to its type.
	Types map[string]types.TypeID
	// Private lists functions exported with PRIVATE linkage.
	Private map[string]bool
	// State is nil when the description has no [state] table.
	State *glstate.Config
}

// IsPublic reports whether name gets PUBLIC linkage.
func (d *Description) IsPublic(name string) bool {
	return !d.Private[name]
}

// Load reads and parses the description at path.
func Load(path string, in *types.Interner, r diag.Reporter) *Description {
	data, err := os.ReadFile(path)
	if err != nil {
		diag.ReportError(r, diag.DscIO, diag.Location{File: path}, err.Error()).Emit()
		return nil
	}
	return Parse(path, data, in, r)
}

// Parse builds a description from TOML text. It returns nil only when the
// text is not valid TOML; other problems are reported and the affected
// declarations skipped.
func Parse(path string, data []byte, in *types.Interner, r diag.Reporter) *Description {
	var doc document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		reportSyntax(r, path, err)
		return nil
	}
	loc := diag.Location{File: path}
	for _, key := range meta.Undecoded() {
		diag.ReportWarning(r, diag.DscUnknownKey, loc.At(key.String()), fmt.Sprintf("unknown key %q", key.String())).Emit()
	}
	if !meta.IsDefined("name") || strings.TrimSpace(doc.Name) == "" {
		diag.ReportError(r, diag.DscMissingField, loc, "missing top-level name").Emit()
	}

	b := newBuilder(path, in, r)
	b.declare(doc.Types)
	b.interfaces(doc.Interfaces)
	for _, t := range doc.Types {
		b.named(t.Name)
	}
	b.methods(doc.Interfaces)
	b.functions(doc.Functions)

	desc := &Description{
		Path:    path,
		API:     types.NewAPI(doc.Name),
		Types:   b.names(),
		Private: b.private,
	}
	desc.API.Headers = slices.Clone(doc.Headers)
	desc.API.AddFunctions(b.funcs...)
	desc.API.AddInterfaces(b.ifaceOrder...)
	if doc.State != nil {
		desc.State = b.state(doc.State, desc.API)
	}
	return desc
}

func reportSyntax(r diag.Reporter, path string, err error) {
	loc := diag.Location{File: path}
	var perr toml.ParseError
	if errors.As(err, &perr) {
		loc.Line = perr.Position.Line
		loc.Key = perr.LastKey
		diag.ReportError(r, diag.DscSyntax, loc, perr.Message).Emit()
		return
	}
	diag.ReportError(r, diag.DscSyntax, loc, err.Error()).Emit()
}
