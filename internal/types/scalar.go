package types

// LiteralInfo stores metadata for scalar types.
type LiteralInfo struct {
	Kind LiteralKind
}

// StringInfo stores metadata for string types.
type StringInfo struct {
	Length string // empty for NUL-terminated strings
	Kind   StringKind
}

// Void registers a void type. NewInterner already registers the canonical one;
// prefer Builtins().Void.
func (in *Interner) Void() TypeID {
	return in.internRaw(Type{Kind: KindVoid, Expr: "void", Tag: in.allocTag("void", "")})
}

// Literal registers a scalar type such as "int" or "GLfloat".
func (in *Interner) Literal(expr string, kind LiteralKind) TypeID {
	in.literals = append(in.literals, LiteralInfo{Kind: kind})
	return in.internRaw(Type{
		Kind:    KindLiteral,
		Payload: slotOf(len(in.literals)),
		Expr:    expr,
		Tag:     in.allocTag(expr, ""),
	})
}

// LiteralInfo returns metadata for a literal TypeID.
func (in *Interner) LiteralInfo(id TypeID) (*LiteralInfo, bool) {
	slot, ok := in.payload(id, KindLiteral)
	if !ok {
		return nil, false
	}
	return &in.literals[slot], true
}

// String registers a string type. length is an expression giving the number
// of characters, or empty for NUL-terminated strings.
func (in *Interner) String(expr, length string, kind StringKind) TypeID {
	if expr == "" {
		expr = "char *"
		if kind == StrWide {
			expr = "wchar_t *"
		}
	}
	in.strs = append(in.strs, StringInfo{Length: length, Kind: kind})
	return in.internRaw(Type{
		Kind:    KindString,
		Payload: slotOf(len(in.strs)),
		Expr:    expr,
		Tag:     in.allocTag(expr, ""),
	})
}

// StringInfo returns metadata for a string TypeID.
func (in *Interner) StringInfo(id TypeID) (*StringInfo, bool) {
	slot, ok := in.payload(id, KindString)
	if !ok {
		return nil, false
	}
	return &in.strs[slot], true
}

// Opaque registers an untyped pointer-sized value written as a raw address.
func (in *Interner) Opaque(expr string) TypeID {
	return in.internRaw(Type{Kind: KindOpaque, Expr: expr, Tag: in.allocTag(expr, "")})
}

// OpaquePointer registers an opaque "T *".
func (in *Interner) OpaquePointer(elem TypeID) TypeID {
	return in.Opaque(in.Expr(elem) + " *")
}

// OpaqueArray registers an array whose contents are not traced.
func (in *Interner) OpaqueArray(elem TypeID, _ string) TypeID {
	return in.OpaquePointer(elem)
}

// OpaqueBlob registers a blob whose contents are not traced.
func (in *Interner) OpaqueBlob(elem TypeID, _ string) TypeID {
	return in.OpaquePointer(elem)
}

// FunctionPointer registers a callback type. Callbacks are traced as raw
// addresses, so the signature is only used for its spelling.
func (in *Interner) FunctionPointer(expr string) TypeID {
	return in.Opaque(expr)
}
