package diag

import (
	"fmt"
	"strings"
)

// Location points into a description file. Key is the dotted TOML key of the
// offending entry; Line and Col are 0 when unknown.
type Location struct {
	File string
	Key  string
	Line int
	Col  int
}

func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.File)
	if l.Line > 0 {
		fmt.Fprintf(&b, ":%d", l.Line)
		if l.Col > 0 {
			fmt.Fprintf(&b, ":%d", l.Col)
		}
	}
	if l.Key != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%s]", l.Key)
	}
	return b.String()
}

// At returns a copy of l pointing at a nested key.
func (l Location) At(key string) Location {
	if l.Key != "" {
		key = l.Key + "." + key
	}
	l.Key = key
	return l
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}

// Error renders the diagnostic on one line so it can travel as an error.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s %s %s", d.Severity.Label(), d.Code.ID(), d.Primary, d.Message)
}
