package types

import "strings"

// HandleInfo stores metadata for handle types.
type HandleInfo struct {
	Name  string
	Type  TypeID
	Range string // optional count expression for range allocations
	Key   string // optional grouping key
}

// Const registers a const-qualified type.
func (in *Interner) Const(elem TypeID) TypeID {
	inner := in.MustLookup(elem)
	// "const foo *" and "foo * const" differ, and some compilers enforce it.
	var expr string
	switch {
	case inner.Kind == KindString:
		// For strings we never mean a const pointer to chars.
		expr = "const " + inner.Expr
	case strings.HasPrefix(inner.Expr, "const ") || strings.Contains(inner.Expr, "*"):
		expr = inner.Expr + " const"
	default:
		expr = "const " + inner.Expr
	}
	return in.internRaw(Type{
		Kind: KindConst,
		Elem: elem,
		Expr: expr,
		Tag:  in.allocTag(expr, "C"+inner.Tag),
	})
}

// Pointer registers "T *".
func (in *Interner) Pointer(elem TypeID) TypeID {
	inner := in.MustLookup(elem)
	return in.internRaw(Type{
		Kind: KindPointer,
		Elem: elem,
		Expr: inner.Expr + " *",
		Tag:  in.allocTag("", "P"+inner.Tag),
	})
}

// ConstPointer registers "const T *".
func (in *Interner) ConstPointer(elem TypeID) TypeID {
	return in.Pointer(in.Const(elem))
}

// Alias registers a typedef spelled expr for elem.
func (in *Interner) Alias(expr string, elem TypeID) TypeID {
	return in.internRaw(Type{
		Kind: KindAlias,
		Elem: elem,
		Expr: expr,
		Tag:  in.allocTag(expr, ""),
	})
}

// Handle registers a named identifier type backed by elem.
func (in *Interner) Handle(name string, elem TypeID, rangeExpr, key string) TypeID {
	inner := in.MustLookup(elem)
	in.handles = append(in.handles, HandleInfo{Name: name, Type: elem, Range: rangeExpr, Key: key})
	return in.internRaw(Type{
		Kind:    KindHandle,
		Elem:    elem,
		Payload: slotOf(len(in.handles)),
		Expr:    inner.Expr,
		Tag:     in.allocTag("", "P"+inner.Tag),
	})
}

// HandleInfo returns metadata for a handle TypeID.
func (in *Interner) HandleInfo(id TypeID) (*HandleInfo, bool) {
	slot, ok := in.payload(id, KindHandle)
	if !ok {
		return nil, false
	}
	return &in.handles[slot], true
}
