// Package inflect derives accessor names for families of getter functions
// that differ only by a value-kind suffix (glGetIntegerv, glGetFloatv...).
package inflect

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ValueKind is the kind of value an accessor returns.
type ValueKind uint8

const (
	Bool ValueKind = iota + 1
	Int
	Enum
	Float
	Double
	String
	Pointer
)

var valueKindNames = [...]string{
	Bool:    "bool",
	Int:     "int",
	Enum:    "enum",
	Float:   "float",
	Double:  "double",
	String:  "string",
	Pointer: "pointer",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) && valueKindNames[k] != "" {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", k)
}

// ParseValueKind accepts a kind name ("int") or its one-letter code ("I").
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.TrimSpace(s) {
	case "bool", "B":
		return Bool, nil
	case "int", "I":
		return Int, nil
	case "enum", "E":
		return Enum, nil
	case "float", "F":
		return Float, nil
	case "double", "D":
		return Double, nil
	case "string", "S":
		return String, nil
	case "pointer", "P":
		return Pointer, nil
	default:
		return 0, fmt.Errorf("unknown value kind %q", s)
	}
}

// reductions is the fixed widening chain tried when a family lacks a getter.
var reductions = map[ValueKind]ValueKind{
	Bool: Int,
	Enum: Int,
	Int:  Float,
}

// ErrNoInflection is returned when a kind has no getter after full reduction.
var ErrNoInflection = errors.New("no inflection")

// Inflector names the getter of a family for a requested value kind:
// radical + inflection(kind) + suffix.
type Inflector struct {
	Radical     string
	Inflections map[ValueKind]string
	Suffix      string
}

// New builds an inflector.
func New(radical string, inflections map[ValueKind]string, suffix string) *Inflector {
	return &Inflector{Radical: radical, Inflections: maps.Clone(inflections), Suffix: suffix}
}

// Reduce returns the kind the family actually serves for k.
func (i *Inflector) Reduce(k ValueKind) (ValueKind, error) {
	for cur := k; ; {
		if _, ok := i.Inflections[cur]; ok {
			return cur, nil
		}
		next, ok := reductions[cur]
		if !ok {
			return 0, fmt.Errorf("%w: %s has no %s accessor", ErrNoInflection, i, k)
		}
		cur = next
	}
}

// Inflection returns the suffix selecting the getter for k.
func (i *Inflector) Inflection(k ValueKind) (string, error) {
	r, err := i.Reduce(k)
	if err != nil {
		return "", err
	}
	return i.Inflections[r], nil
}

// Inflect returns the full accessor name for k.
func (i *Inflector) Inflect(k ValueKind) (string, error) {
	inflection, err := i.Inflection(k)
	if err != nil {
		return "", err
	}
	return i.Radical + inflection + i.Suffix, nil
}

// IsVector reports whether the accessor for k writes through a pointer.
func (i *Inflector) IsVector(k ValueKind) (bool, error) {
	inflection, err := i.Inflection(k)
	if err != nil {
		return false, err
	}
	return strings.HasSuffix(inflection, "v"), nil
}

func (i *Inflector) String() string {
	return i.Radical + i.Suffix
}

// Validate checks every accessor name the family can produce against the
// table of accessors the target library exports.
func (i *Inflector) Validate(known map[string]bool) error {
	var errs []error
	for _, k := range slices.Sorted(maps.Keys(i.Inflections)) {
		name := i.Radical + i.Inflections[k] + i.Suffix
		if !known[name] {
			errs = append(errs, fmt.Errorf("%s: %s accessor %q is not exported", i, k, name))
		}
	}
	return errors.Join(errs...)
}
