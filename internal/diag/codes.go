package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// description loading
	DscInfo            Code = 1000
	DscSyntax          Code = 1001
	DscUnknownKey      Code = 1002
	DscUnknownType     Code = 1003
	DscUnknownKind     Code = 1004
	DscDuplicateName   Code = 1005
	DscBadTag          Code = 1006
	DscMissingField    Code = 1007
	DscBadInterface    Code = 1008
	DscTypeCycle       Code = 1009
	DscBadValueKind    Code = 1010
	DscUnknownFunction Code = 1011
	DscBadState        Code = 1012
	DscIO              Code = 1013

	// generation
	GenInfo            Code = 2000
	GenNotWrappable    Code = 2001
	GenNoInflection    Code = 2002
	GenNondeterminism  Code = 2003
	GenWriteFailed     Code = 2004
	GenUnsupportedType Code = 2005

	// project manifest
	PrjInfo            Code = 3000
	PrjManifestMissing Code = 3001
	PrjManifestInvalid Code = 3002
)

var codeTitles = map[Code]string{
	UnknownCode:        "unknown problem",
	DscInfo:            "description information",
	DscSyntax:          "malformed description",
	DscUnknownKey:      "unknown key in description",
	DscUnknownType:     "reference to an undeclared type",
	DscUnknownKind:     "unknown type kind",
	DscDuplicateName:   "name declared twice",
	DscBadTag:          "invalid type tag",
	DscMissingField:    "required field is missing",
	DscBadInterface:    "invalid interface declaration",
	DscTypeCycle:       "type refers to itself by value",
	DscBadValueKind:    "unknown accessor value kind",
	DscUnknownFunction: "reference to an undeclared function",
	DscBadState:        "invalid state table",
	DscIO:              "description cannot be read",
	GenInfo:            "generation information",
	GenNotWrappable:    "value cannot be wrapped",
	GenNoInflection:    "no accessor for value kind",
	GenNondeterminism:  "generation is not deterministic",
	GenWriteFailed:     "output cannot be written",
	GenUnsupportedType: "type not supported by this emitter",
	PrjInfo:            "project information",
	PrjManifestMissing: "tracegen.toml not found",
	PrjManifestInvalid: "invalid tracegen.toml",
}

// ID is the stable identifier printed in output, e.g. "DSC1003".
func (c Code) ID() string {
	switch n := int(c); {
	case n >= 1000 && n < 2000:
		return fmt.Sprintf("DSC%04d", n)
	case n >= 2000 && n < 3000:
		return fmt.Sprintf("GEN%04d", n)
	case n >= 3000 && n < 4000:
		return fmt.Sprintf("PRJ%04d", n)
	}
	return "E0000"
}

func (c Code) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return codeTitles[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
