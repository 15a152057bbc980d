package types

// Builtins exposes the stock C scalars every description can refer to.
type Builtins struct {
	Void      TypeID
	Bool      TypeID
	Char      TypeID
	SChar     TypeID
	UChar     TypeID
	Short     TypeID
	Int       TypeID
	Long      TypeID
	LongLong  TypeID
	UShort    TypeID
	UInt      TypeID
	ULong     TypeID
	ULongLong TypeID
	Float     TypeID
	Double    TypeID
	SizeT     TypeID
	CString   TypeID
	WString   TypeID
	Int8      TypeID
	UInt8     TypeID
	Int16     TypeID
	UInt16    TypeID
	Int32     TypeID
	UInt32    TypeID
	Int64     TypeID
	UInt64    TypeID
}

// Builtins returns the ids registered by NewInterner.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// seedBuiltins registers the scalars in a fixed order so ids and tags are
// stable across runs.
func (in *Interner) seedBuiltins() {
	b := &in.builtins
	b.Void = in.Void()
	b.Bool = in.Literal("bool", LitBool)
	b.Char = in.Literal("char", LitSInt)
	b.SChar = in.Literal("signed char", LitSInt)
	b.UChar = in.Literal("unsigned char", LitUInt)
	b.Short = in.Literal("short", LitSInt)
	b.Int = in.Literal("int", LitSInt)
	b.Long = in.Literal("long", LitSInt)
	b.LongLong = in.Literal("long long", LitSInt)
	b.UShort = in.Literal("unsigned short", LitUInt)
	b.UInt = in.Literal("unsigned int", LitUInt)
	b.ULong = in.Literal("unsigned long", LitUInt)
	b.ULongLong = in.Literal("unsigned long long", LitUInt)
	b.Float = in.Literal("float", LitFloat)
	b.Double = in.Literal("double", LitDouble)
	b.SizeT = in.Literal("size_t", LitUInt)
	b.CString = in.String("char *", "", StrNarrow)
	b.WString = in.String("wchar_t *", "", StrWide)
	b.Int8 = in.Literal("int8_t", LitSInt)
	b.UInt8 = in.Literal("uint8_t", LitUInt)
	b.Int16 = in.Literal("int16_t", LitSInt)
	b.UInt16 = in.Literal("uint16_t", LitUInt)
	b.Int32 = in.Literal("int32_t", LitSInt)
	b.UInt32 = in.Literal("uint32_t", LitUInt)
	b.Int64 = in.Literal("int64_t", LitSInt)
	b.UInt64 = in.Literal("uint64_t", LitUInt)
}

// ByName resolves a builtin scalar by its C spelling.
func (b Builtins) ByName(name string) (TypeID, bool) {
	m := map[string]TypeID{
		"void":               b.Void,
		"bool":               b.Bool,
		"char":               b.Char,
		"signed char":        b.SChar,
		"unsigned char":      b.UChar,
		"short":              b.Short,
		"int":                b.Int,
		"long":               b.Long,
		"long long":          b.LongLong,
		"unsigned short":     b.UShort,
		"unsigned int":       b.UInt,
		"unsigned":           b.UInt,
		"unsigned long":      b.ULong,
		"unsigned long long": b.ULongLong,
		"float":              b.Float,
		"double":             b.Double,
		"size_t":             b.SizeT,
		"char *":             b.CString,
		"wchar_t *":          b.WString,
		"int8_t":             b.Int8,
		"uint8_t":            b.UInt8,
		"int16_t":            b.Int16,
		"uint16_t":           b.UInt16,
		"int32_t":            b.Int32,
		"uint32_t":           b.UInt32,
		"int64_t":            b.Int64,
		"uint64_t":           b.UInt64,
	}
	id, ok := m[name]
	return id, ok
}
