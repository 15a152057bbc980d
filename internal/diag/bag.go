package diag

import (
	"cmp"
	"errors"
	"slices"
)

// Bag accumulates diagnostics up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag returns a bag holding at most max diagnostics; max <= 0 means no
// limit.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d and reports false once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int { return b.max }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) HasWarnings() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevWarning })
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the internal slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends the diagnostics of other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by file, line, column, key, severity (errors first), then
// code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		px, py := x.Primary, y.Primary
		return cmp.Or(
			cmp.Compare(px.File, py.File),
			cmp.Compare(px.Line, py.Line),
			cmp.Compare(px.Col, py.Col),
			cmp.Compare(px.Key, py.Key),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops repeats of the same code, location and message.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		loc  Location
		msg  string
	}
	seen := make(map[key]bool, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary, d.Message}
		if seen[k] {
			return true
		}
		seen[k] = true
		return false
	})
}

// Err joins the error diagnostics into one error, nil when there are none.
func (b *Bag) Err() error {
	var errs []error
	for _, d := range b.items {
		if d.Severity >= SevError {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}
