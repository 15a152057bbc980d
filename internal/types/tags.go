package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TagError reports a tag that cannot name a generated helper.
type TagError struct {
	Tag  string
	Expr string
}

func (e *TagError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("types: cannot derive a tag from %q", e.Expr)
	}
	return fmt.Sprintf("types: invalid tag %q (only letters, digits and '_' allowed)", e.Tag)
}

// ValidateTag checks that tag is a non-empty run of letters, digits and underscores.
func ValidateTag(tag string) error {
	if tag == "" {
		return &TagError{Tag: tag}
	}
	for _, r := range tag {
		if r != '_' && !isTagRune(r) {
			return &TagError{Tag: tag}
		}
	}
	return nil
}

// DeriveTag keeps the alphanumeric and '_' characters of a spelling.
// An empty result means the spelling cannot be rendered as a tag.
func DeriveTag(expr string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(expr) {
		if r == '_' || isTagRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isTagRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// HasTag reports whether tag was already handed out.
func (in *Interner) HasTag(tag string) bool {
	_, ok := in.tags[tag]
	return ok
}

// UseTag makes the next type whose tag would be derived from its spelling
// take tag instead.
func (in *Interner) UseTag(tag string) error {
	if err := ValidateTag(tag); err != nil {
		return err
	}
	in.pendingTag = tag
	return nil
}

// allocTag registers a tag for a new type. An explicit tag is validated, an
// empty one is derived from expr. Collisions get the smallest unused numeric
// suffix. Failing validation panics with *TagError: descriptions are expected
// to be checked up front (see DeriveTag and ValidateTag).
func (in *Interner) allocTag(expr, tag string) string {
	if tag == "" && in.pendingTag != "" {
		tag, in.pendingTag = in.pendingTag, ""
	}
	if tag == "" {
		tag = DeriveTag(expr)
		if tag == "" {
			panic(&TagError{Expr: expr})
		}
	} else if err := ValidateTag(tag); err != nil {
		panic(err)
	}

	if in.HasTag(tag) {
		// The tag set only grows, so the smallest free suffix for a base never
		// moves backwards; the hint skips suffixes known to be taken.
		suffix := in.tagHints[tag]
		if suffix < 1 {
			suffix = 1
		}
		for in.HasTag(tag + strconv.Itoa(suffix)) {
			suffix++
		}
		in.tagHints[tag] = suffix + 1
		tag += strconv.Itoa(suffix)
	}
	in.tags[tag] = struct{}{}
	return tag
}
