package cxx

import (
	"fmt"

	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// dumper emits the write calls encoding one value at a call site. Types
// with a declared helper delegate to it; the rest are encoded inline.
type dumper struct {
	e *Emitter
}

// dump emits the encoding of instance, a C++ expression of type t.
func (e *Emitter) dump(t types.TypeID, instance string) error {
	return walk.Dispatch[string, error](e.types, dumper{e: e}, t, instance)
}

func (d dumper) VisitVoid(id types.TypeID, instance string) error {
	return fmt.Errorf("cannot encode %s of type void", instance)
}

func (d dumper) VisitLiteral(id types.TypeID, instance string) error {
	info, _ := d.e.types.LiteralInfo(id)
	d.e.call("write"+info.Kind.String(), instance)
	return nil
}

func (d dumper) VisitString(id types.TypeID, instance string) error {
	info, _ := d.e.types.StringInfo(id)
	cast := "const char *"
	if info.Kind == types.StrWide {
		cast = "const wchar_t *"
	}
	if cast != d.e.types.Expr(id) {
		// GLubyte * and friends need a reinterpret_cast to reach char.
		instance = fmt.Sprintf("reinterpret_cast<%s>(%s)", cast, instance)
	}
	if info.Length != "" {
		d.e.call("write"+info.Kind.String(), instance, info.Length)
		return nil
	}
	d.e.call("write"+info.Kind.String(), instance)
	return nil
}

func (d dumper) VisitConst(id types.TypeID, instance string) error {
	return d.e.dump(d.e.types.Elem(id), instance)
}

func (d dumper) VisitPointer(id types.TypeID, instance string) error {
	d.e.open("if (%s) {", instance)
	d.e.call("beginArray", "1")
	d.e.call("beginElement")
	if err := d.e.dump(d.e.types.Elem(id), "*"+instance); err != nil {
		return err
	}
	d.e.call("endElement")
	d.e.call("endArray")
	d.writeNullElse()
	return nil
}

func (d dumper) VisitAlias(id types.TypeID, instance string) error {
	return d.e.dump(d.e.types.Elem(id), instance)
}

func (d dumper) VisitEnum(id types.TypeID, instance string) error {
	d.e.line("_write__%s(%s);", d.e.types.Tag(id), instance)
	return nil
}

func (d dumper) VisitBitmask(id types.TypeID, instance string) error {
	d.e.call("writeBitmask", fmt.Sprintf("&__bitmask%s_sig", d.e.types.Tag(id)), instance)
	return nil
}

func (d dumper) VisitArray(id types.TypeID, instance string) error {
	info, _ := d.e.types.ArrayInfo(id)
	elemTag := d.e.types.Tag(info.Elem)
	length := "__c" + elemTag
	index := "__i" + elemTag
	d.e.open("if (%s) {", instance)
	d.e.line("size_t %s = %s;", length, info.Length)
	d.e.call("beginArray", length)
	d.e.open("for (size_t %s = 0; %s < %s; ++%s) {", index, index, length, index)
	d.e.call("beginElement")
	if err := d.e.dump(info.Elem, fmt.Sprintf("(%s)[%s]", instance, index)); err != nil {
		return err
	}
	d.e.call("endElement")
	d.e.close("}")
	d.e.call("endArray")
	d.writeNullElse()
	return nil
}

func (d dumper) VisitBlob(id types.TypeID, instance string) error {
	info, _ := d.e.types.BlobInfo(id)
	d.e.call("writeBlob", instance, info.Size)
	return nil
}

func (d dumper) VisitStruct(id types.TypeID, instance string) error {
	d.e.line("_write__%s(%s);", d.e.types.Tag(id), instance)
	return nil
}

func (d dumper) VisitOpaque(id types.TypeID, instance string) error {
	d.e.call("writeOpaque", "(const void *)"+instance)
	return nil
}

// Handles are encoded as their underlying value; pointer-backed handles end
// up as opaque addresses.
func (d dumper) VisitHandle(id types.TypeID, instance string) error {
	return d.e.dump(d.e.types.Elem(id), instance)
}

func (d dumper) VisitPolymorphic(id types.TypeID, instance string) error {
	info, _ := d.e.types.PolymorphicInfo(id)
	d.e.line("_write__%s(%s, %s);", d.e.types.Tag(id), info.Switch, instance)
	return nil
}

func (d dumper) VisitInterface(id types.TypeID, instance string) error {
	d.e.call("writeOpaque", "(const void *)&"+instance)
	return nil
}

// writeNullElse closes an "if (ptr) {" block with the null branch.
func (d dumper) writeNullElse() {
	d.e.depth--
	d.e.line("} else {")
	d.e.depth++
	d.e.call("writeNull")
	d.e.close("}")
}
