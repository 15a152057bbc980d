package glstate

import (
	"fmt"
	"strings"
)

type emitter struct {
	buf   strings.Builder
	depth int
}

func (e *emitter) line(format string, args ...any) {
	e.buf.WriteString(strings.Repeat("    ", e.depth))
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *emitter) raw(format string, args ...any) {
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *emitter) blank() { e.buf.WriteByte('\n') }

func (e *emitter) open(format string, args ...any) {
	e.line(format, args...)
	e.depth++
}

func (e *emitter) close(text string) {
	e.depth--
	e.line("%s", text)
}

func (e *emitter) String() string { return e.buf.String() }
