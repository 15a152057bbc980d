// Package cxx emits the C++ interception layer: per-type signature
// declarations and encoders, interface proxies and one tracing wrapper per
// function or method.
package cxx

import (
	"errors"
	"fmt"
	"strings"

	"tracegen/internal/sigtable"
	"tracegen/internal/types"
)

// writer is the runtime object every generated encoder writes through.
const writer = "trace::localWriter"

// ErrNotWrappable is returned when an instance cannot be wrapped or unwrapped.
var ErrNotWrappable = errors.New("instance cannot be wrapped")

// Emitter writes one generated unit, indenting by nesting depth.
type Emitter struct {
	types *types.Interner
	sigs  *sigtable.Table
	buf   strings.Builder
	depth int
}

func newEmitter(in *types.Interner, sigs *sigtable.Table) *Emitter {
	return &Emitter{types: in, sigs: sigs, depth: 1}
}

// line writes one statement at the current depth.
func (e *Emitter) line(format string, args ...any) {
	for range e.depth {
		e.buf.WriteString("    ")
	}
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// raw writes text at column zero.
func (e *Emitter) raw(format string, args ...any) {
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *Emitter) blank() {
	e.buf.WriteByte('\n')
}

func (e *Emitter) open(format string, args ...any) {
	e.line(format, args...)
	e.depth++
}

func (e *Emitter) close(text string) {
	e.depth--
	e.line("%s", text)
}

// call writes one runtime writer call.
func (e *Emitter) call(method string, args ...string) {
	e.line("%s.%s(%s);", writer, method, strings.Join(args, ", "))
}

func (e *Emitter) String() string {
	return e.buf.String()
}

func wrapName(in *types.Interner, iface types.TypeID) string {
	return "Wrap" + in.Expr(iface)
}

func quoted(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = `"` + n + `"`
	}
	return strings.Join(parts, ", ")
}
