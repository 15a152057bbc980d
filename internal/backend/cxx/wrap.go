package cxx

import (
	"fmt"
	"strings"

	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// wrapper rewrites interface pointers reachable from an instance: wrap
// replaces a real pointer with a new proxy, unwrap recovers the real pointer
// from a proxy.
type wrapper struct {
	e      *Emitter
	unwrap bool
}

func (e *Emitter) wrap(t types.TypeID, instance string) error {
	return walk.Dispatch[string, error](e.types, wrapper{e: e}, t, instance)
}

func (e *Emitter) unwrap(t types.TypeID, instance string) error {
	return walk.Dispatch[string, error](e.types, wrapper{e: e, unwrap: true}, t, instance)
}

func (w wrapper) visit(t types.TypeID, instance string) error {
	return walk.Dispatch[string, error](w.e.types, w, t, instance)
}

func (w wrapper) VisitVoid(_ types.TypeID, instance string) error {
	return fmt.Errorf("%w: %s is void", ErrNotWrappable, instance)
}

func (w wrapper) VisitLiteral(types.TypeID, string) error { return nil }
func (w wrapper) VisitString(types.TypeID, string) error  { return nil }
func (w wrapper) VisitConst(types.TypeID, string) error   { return nil }
func (w wrapper) VisitEnum(types.TypeID, string) error    { return nil }
func (w wrapper) VisitBitmask(types.TypeID, string) error { return nil }
func (w wrapper) VisitBlob(types.TypeID, string) error    { return nil }
func (w wrapper) VisitOpaque(types.TypeID, string) error  { return nil }

// Arrays of interface pointers are left alone.
func (w wrapper) VisitArray(types.TypeID, string) error { return nil }

// TODO: wrap interface pointers selected by a polymorphic discriminant once
// a description needs it.
func (w wrapper) VisitPolymorphic(types.TypeID, string) error { return nil }

func (w wrapper) VisitStruct(id types.TypeID, instance string) error {
	info, _ := w.e.types.StructInfo(id)
	for _, m := range info.Members {
		if err := w.visit(m.Type, fmt.Sprintf("(%s).%s", instance, m.Name)); err != nil {
			return err
		}
	}
	return nil
}

// VisitPointer guards the pointee with a null check. Nothing is emitted
// when the pointee holds no interface.
func (w wrapper) VisitPointer(id types.TypeID, instance string) error {
	elem := w.e.types.Elem(id)
	if w.e.types.KindOf(elem) == types.KindInterface {
		// the interface rewrite carries its own check
		return w.visit(elem, "*"+instance)
	}
	inner := &Emitter{types: w.e.types, depth: w.e.depth + 1}
	if err := (wrapper{e: inner, unwrap: w.unwrap}).visit(elem, "*"+instance); err != nil {
		return err
	}
	if inner.buf.Len() == 0 {
		return nil
	}
	w.e.line("if (%s) {", instance)
	w.e.buf.WriteString(inner.String())
	w.e.line("}")
	return nil
}

func (w wrapper) VisitAlias(id types.TypeID, instance string) error {
	return w.visit(w.e.types.Elem(id), instance)
}

func (w wrapper) VisitHandle(id types.TypeID, instance string) error {
	return w.visit(w.e.types.Elem(id), instance)
}

// VisitInterface expects a dereferenced pointer ("*p") and rewrites p.
func (w wrapper) VisitInterface(id types.TypeID, instance string) error {
	ptr, ok := strings.CutPrefix(instance, "*")
	if !ok {
		return fmt.Errorf("%w: %s is an interface value, not a pointer", ErrNotWrappable, instance)
	}
	name := wrapName(w.e.types, id)
	w.e.open("if (%s) {", ptr)
	if w.unwrap {
		w.e.line("%s = static_cast<%s *>(%s)->m_pInstance;", ptr, name, ptr)
	} else {
		w.e.line("%s = new %s(%s);", ptr, name, ptr)
	}
	w.e.close("}")
	return nil
}
