package cxx

import (
	"fmt"
	"slices"

	"tracegen/internal/sigtable"
	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// declarator emits, once per type, the signature records and encoder
// routines that call sites delegate to.
type declarator struct {
	e    *Emitter
	once walk.Once
}

func newDeclarator(e *Emitter) *declarator {
	return &declarator{e: e}
}

func (d *declarator) declare(id types.TypeID) error {
	err, _ := walk.VisitOnce[walk.None, error](d.e.types, &d.once, d, id, walk.None{})
	return err
}

func (d *declarator) VisitVoid(types.TypeID, walk.None) error    { return nil }
func (d *declarator) VisitLiteral(types.TypeID, walk.None) error { return nil }
func (d *declarator) VisitString(types.TypeID, walk.None) error  { return nil }
func (d *declarator) VisitBlob(types.TypeID, walk.None) error    { return nil }
func (d *declarator) VisitOpaque(types.TypeID, walk.None) error  { return nil }

func (d *declarator) VisitConst(id types.TypeID, _ walk.None) error {
	return d.declare(d.e.types.Elem(id))
}

func (d *declarator) VisitPointer(id types.TypeID, _ walk.None) error {
	return d.declare(d.e.types.Elem(id))
}

func (d *declarator) VisitAlias(id types.TypeID, _ walk.None) error {
	return d.declare(d.e.types.Elem(id))
}

func (d *declarator) VisitArray(id types.TypeID, _ walk.None) error {
	return d.declare(d.e.types.Elem(id))
}

func (d *declarator) VisitHandle(id types.TypeID, _ walk.None) error {
	return d.declare(d.e.types.Elem(id))
}

func (d *declarator) VisitStruct(id types.TypeID, _ walk.None) error {
	in := d.e.types
	info, _ := in.StructInfo(id)
	names := make([]string, len(info.Members))
	for i, m := range info.Members {
		if err := d.declare(m.Type); err != nil {
			return err
		}
		names[i] = m.Name
	}

	e := d.e
	e.raw("static void _write__%s(const %s &value) {", in.Tag(id), in.Expr(id))
	if len(names) == 0 {
		e.line("static const char ** members = NULL;")
	} else {
		e.open("static const char * members[%d] = {", len(names))
		for _, n := range names {
			e.line("%q,", n)
		}
		e.close("};")
	}
	e.open("static const trace::StructSig sig = {")
	e.line("%d, %q, %d, members", info.ID, info.Name, len(names))
	e.close("};")
	e.call("beginStruct", "&sig")
	for _, m := range info.Members {
		if err := e.dump(m.Type, "value."+m.Name); err != nil {
			return fmt.Errorf("struct %s member %s: %w", info.Name, m.Name, err)
		}
	}
	e.call("endStruct")
	e.raw("}")
	e.blank()

	e.sigs.AddStruct(sigtable.StructSig{ID: info.ID, Name: info.Name, Members: names})
	return nil
}

func (d *declarator) VisitEnum(id types.TypeID, _ walk.None) error {
	in := d.e.types
	info, _ := in.EnumInfo(id)
	e := d.e
	e.raw("static void _write__%s(const %s value) {", in.Tag(id), in.Expr(id))

	values := distinct(info.Values)
	if len(values) == 0 {
		e.call("writeSInt", "value")
		e.raw("}")
		e.blank()
		return nil
	}
	for i, v := range values {
		sigID := in.NextEnumSigID()
		e.line("static const trace::EnumSig sig%d = {%d, %q, %s};", i, sigID, v, v)
		e.sigs.AddEnum(sigtable.EnumSig{ID: sigID, Table: info.ID, Name: v, Value: v})
	}
	e.line("const trace::EnumSig *sig;")
	e.line("switch (value) {")
	for i, v := range values {
		e.line("case %s:", v)
		e.depth++
		e.line("sig = &sig%d;", i)
		e.line("break;")
		e.depth--
	}
	e.line("default:")
	e.depth++
	e.call("writeSInt", "value")
	e.line("return;")
	e.depth--
	e.line("}")
	e.call("writeEnum", "sig")
	e.raw("}")
	e.blank()
	return nil
}

func (d *declarator) VisitBitmask(id types.TypeID, _ walk.None) error {
	in := d.e.types
	info, _ := in.BitmaskInfo(id)
	tag := in.Tag(id)
	e := d.e
	flags := make([]sigtable.BitmaskFlag, 0, len(info.Values))
	e.raw("static const trace::BitmaskFlag __bitmask%s_flags[] = {", tag)
	for _, v := range info.Values {
		e.line("{%q, %s},", v, v)
		flags = append(flags, sigtable.BitmaskFlag{Name: v, Value: v})
	}
	e.raw("};")
	e.blank()
	e.raw("static const trace::BitmaskSig __bitmask%s_sig = {", tag)
	e.line("%d, %d, __bitmask%s_flags", info.ID, len(info.Values), tag)
	e.raw("};")
	e.blank()

	e.sigs.AddBitmask(sigtable.BitmaskSig{ID: info.ID, Flags: flags})
	return nil
}

func (d *declarator) VisitPolymorphic(id types.TypeID, _ walk.None) error {
	in := d.e.types
	info, _ := in.PolymorphicInfo(id)
	groups := info.Groups()
	for _, g := range groups {
		if err := d.declare(g.Type); err != nil {
			return err
		}
	}

	e := d.e
	e.raw("static void _write__%s(int selector, const %s & value) {", in.Tag(id), in.Expr(id))
	e.line("switch (selector) {")
	for _, g := range groups {
		for _, label := range g.Labels {
			e.line("%s:", label)
		}
		e.depth++
		if err := e.dump(g.Type, fmt.Sprintf("static_cast<%s>(value)", in.Expr(g.Type))); err != nil {
			return err
		}
		e.line("break;")
		e.depth--
	}
	e.line("}")
	e.raw("}")
	e.blank()
	return nil
}

func (d *declarator) VisitInterface(id types.TypeID, _ walk.None) error {
	return declareProxy(d.e, id)
}

// distinct drops repeated constant spellings, keeping first occurrences.
func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
