package apidesc

import (
	"fmt"

	"tracegen/internal/diag"
	"tracegen/internal/types"
)

var literalKinds = map[string]types.LiteralKind{
	"bool":   types.LitBool,
	"sint":   types.LitSInt,
	"uint":   types.LitUInt,
	"float":  types.LitFloat,
	"double": types.LitDouble,
}

// named builds the declared type called name after the types it refers to.
func (b *builder) named(name string) (types.TypeID, bool) {
	d := b.decls[name]
	if d == nil {
		return types.NoTypeID, false
	}
	key := "type." + name
	switch b.status[name] {
	case resolved:
		return b.ids[name], true
	case failed:
		return types.NoTypeID, false
	case resolving:
		b.errorf(diag.DscTypeCycle, key, "type %s refers to itself", name)
		b.status[name] = failed
		return types.NoTypeID, false
	}
	b.status[name] = resolving
	id, ok := b.build(key, d)
	if b.status[name] == failed {
		// a cycle through this declaration was already reported
		return types.NoTypeID, false
	}
	if !ok {
		b.status[name] = failed
		return types.NoTypeID, false
	}
	b.status[name] = resolved
	b.ids[name] = id
	return id, true
}

// deps resolves every reference a declaration makes.
type deps struct {
	b   *builder
	key string
	ok  bool
}

func (p *deps) ref(field, s string) types.TypeID {
	if s == "" {
		p.b.errorf(diag.DscMissingField, p.key+"."+field, "missing %s", field)
		p.ok = false
		return types.NoTypeID
	}
	id, ok := p.b.ref(p.key+"."+field, s)
	if !ok {
		p.ok = false
	}
	return id
}

func (p *deps) optional(field, s string) types.TypeID {
	if s == "" {
		return types.NoTypeID
	}
	return p.ref(field, s)
}

func (b *builder) build(key string, d *typeDecl) (types.TypeID, bool) {
	p := &deps{b: b, key: key, ok: true}
	var construct func() types.TypeID

	switch d.Kind {
	case "literal":
		kind, ok := literalKinds[d.Literal]
		if !ok {
			b.errorf(diag.DscUnknownKind, key+".literal", "literal kind %q is not one of bool, sint, uint, float, double", d.Literal)
			return types.NoTypeID, false
		}
		construct = func() types.TypeID { return b.in.Literal(d.Name, kind) }
	case "string":
		kind := types.StrNarrow
		if d.Wide {
			kind = types.StrWide
		}
		construct = func() types.TypeID { return b.in.String(d.Name, d.Length, kind) }
	case "alias":
		elem := p.ref("type", d.Type)
		construct = func() types.TypeID { return b.in.Alias(d.Name, elem) }
	case "enum":
		if d.Type != "" {
			elem := p.ref("type", d.Type)
			construct = func() types.TypeID { return b.in.FakeEnum(elem, d.Values) }
		} else {
			construct = func() types.TypeID { return b.in.Enum(d.Name, d.Values) }
		}
	case "bitmask":
		elem := p.ref("type", d.Type)
		construct = func() types.TypeID { return b.in.Bitmask(elem, d.Values) }
	case "array":
		elem := p.ref("type", d.Type)
		if d.Length == "" {
			b.errorf(diag.DscMissingField, key+".length", "array %s needs a length expression", d.Name)
			p.ok = false
		}
		construct = func() types.TypeID { return b.in.Array(elem, d.Length) }
	case "blob":
		elem := p.optional("type", d.Type)
		if elem == types.NoTypeID && p.ok {
			elem = b.built.Void
		}
		if d.Size == "" {
			b.errorf(diag.DscMissingField, key+".size", "blob %s needs a size expression", d.Name)
			p.ok = false
		}
		construct = func() types.TypeID { return b.in.Blob(elem, d.Size) }
	case "struct":
		members := make([]types.Member, 0, len(d.Members))
		for i, m := range d.Members {
			t := p.ref(fmt.Sprintf("members[%d]", i), m.Type)
			members = append(members, types.Member{Type: t, Name: m.Name})
		}
		construct = func() types.TypeID { return b.in.Struct(d.Name, members) }
	case "opaque":
		if d.Type != "" {
			elem := p.ref("type", d.Type)
			construct = func() types.TypeID { return b.in.OpaquePointer(elem) }
		} else {
			construct = func() types.TypeID { return b.in.Opaque(d.Name) }
		}
	case "function_pointer":
		construct = func() types.TypeID { return b.in.FunctionPointer(d.Name) }
	case "handle":
		elem := p.ref("type", d.Type)
		if d.Tag != "" {
			diag.ReportWarning(b.r, diag.DscBadTag, b.loc.At(key+".tag"), "handle tags derive from the underlying type; tag ignored").Emit()
			d.Tag = ""
		}
		construct = func() types.TypeID { return b.in.Handle(d.Name, elem, d.Range, d.Key) }
	case "polymorphic":
		def := p.ref("default", d.Default)
		cases := make([]types.PolyCase, 0, len(d.Cases))
		for i, c := range d.Cases {
			t := p.ref(fmt.Sprintf("cases[%d]", i), c.Type)
			cases = append(cases, types.PolyCase{Expr: c.Expr, Type: t})
		}
		if d.Switch == "" {
			b.errorf(diag.DscMissingField, key+".switch", "polymorphic %s needs a switch expression", d.Name)
			p.ok = false
		}
		construct = func() types.TypeID { return b.in.Polymorphic(def, d.Switch, cases) }
	case "":
		b.errorf(diag.DscMissingField, key+".kind", "type %s has no kind", d.Name)
		return types.NoTypeID, false
	default:
		b.errorf(diag.DscUnknownKind, key+".kind", "unknown kind %q", d.Kind)
		return types.NoTypeID, false
	}
	if !p.ok {
		return types.NoTypeID, false
	}
	if !b.tagFor(key, d) {
		return types.NoTypeID, false
	}
	return construct(), true
}

// tagFor arms the explicit tag of d, or checks that its spelling yields one.
func (b *builder) tagFor(key string, d *typeDecl) bool {
	if d.Tag != "" {
		if err := b.in.UseTag(d.Tag); err != nil {
			b.errorf(diag.DscBadTag, key+".tag", "%v", err)
			return false
		}
		return true
	}
	switch d.Kind {
	case "literal", "string", "alias", "struct", "function_pointer":
		if types.DeriveTag(d.Name) == "" {
			b.errorf(diag.DscBadTag, key, "no tag can be derived from %q; set tag explicitly", d.Name)
			return false
		}
	case "enum", "opaque":
		if d.Type == "" && types.DeriveTag(d.Name) == "" {
			b.errorf(diag.DscBadTag, key, "no tag can be derived from %q; set tag explicitly", d.Name)
			return false
		}
	}
	return true
}
