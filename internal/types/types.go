package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types. The set is closed: every
// visitor in internal/walk handles each of them.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindLiteral
	KindString
	KindConst
	KindPointer
	KindAlias
	KindEnum
	KindBitmask
	KindArray
	KindBlob
	KindStruct
	KindOpaque
	KindHandle
	KindPolymorphic
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindLiteral:
		return "literal"
	case KindString:
		return "string"
	case KindConst:
		return "const"
	case KindPointer:
		return "pointer"
	case KindAlias:
		return "alias"
	case KindEnum:
		return "enum"
	case KindBitmask:
		return "bitmask"
	case KindArray:
		return "array"
	case KindBlob:
		return "blob"
	case KindStruct:
		return "struct"
	case KindOpaque:
		return "opaque"
	case KindHandle:
		return "handle"
	case KindPolymorphic:
		return "polymorphic"
	case KindInterface:
		return "interface"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// LiteralKind selects the primitive write operation used for a scalar.
type LiteralKind uint8

const (
	LitBool LiteralKind = iota + 1
	LitSInt
	LitUInt
	LitFloat
	LitDouble
)

// String returns the suffix of the writer primitive ("writeSInt" etc).
func (k LiteralKind) String() string {
	switch k {
	case LitBool:
		return "Bool"
	case LitSInt:
		return "SInt"
	case LitUInt:
		return "UInt"
	case LitFloat:
		return "Float"
	case LitDouble:
		return "Double"
	default:
		return fmt.Sprintf("LiteralKind(%d)", k)
	}
}

// StringKind distinguishes narrow and wide character strings.
type StringKind uint8

const (
	StrNarrow StringKind = iota
	StrWide
)

// String returns the suffix of the writer primitive ("writeString" or "writeWString").
func (k StringKind) String() string {
	if k == StrWide {
		return "WString"
	}
	return "String"
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // wrapped type for const/pointer/alias/handle/bitmask/array/blob
	Payload uint32 // slot in the kind specific info table
	Expr    string // C/C++ spelling
	Tag     string // run-unique identifier used to name generated helpers
}
