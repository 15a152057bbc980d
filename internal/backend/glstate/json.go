package glstate

import (
	"fmt"

	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// jsonWriter emits the statements writing one queried value through the
// runtime JSONWriter named json.
type jsonWriter struct {
	d *dumper
}

func (w jsonWriter) write(t types.TypeID, value string) error {
	return walk.Dispatch[string, error](w.d.in, w, t, value)
}

func (w jsonWriter) unsupported(id types.TypeID) error {
	return fmt.Errorf("state of type %s (%s) cannot be written as JSON", w.d.in.Expr(id), w.d.in.KindOf(id))
}

func (w jsonWriter) VisitVoid(id types.TypeID, _ string) error        { return w.unsupported(id) }
func (w jsonWriter) VisitBlob(id types.TypeID, _ string) error        { return w.unsupported(id) }
func (w jsonWriter) VisitStruct(id types.TypeID, _ string) error      { return w.unsupported(id) }
func (w jsonWriter) VisitPolymorphic(id types.TypeID, _ string) error { return w.unsupported(id) }
func (w jsonWriter) VisitInterface(id types.TypeID, _ string) error   { return w.unsupported(id) }

func (w jsonWriter) VisitLiteral(id types.TypeID, value string) error {
	info, _ := w.d.in.LiteralInfo(id)
	if info.Kind == types.LitBool {
		w.d.e.line("json.writeBool(%s);", value)
	} else {
		w.d.e.line("json.writeNumber(%s);", value)
	}
	return nil
}

func (w jsonWriter) VisitString(id types.TypeID, value string) error {
	info, _ := w.d.in.StringInfo(id)
	if info.Length != "" {
		return fmt.Errorf("sized string %s cannot be written as JSON", w.d.in.Expr(id))
	}
	w.d.e.line("json.writeString((const char *)%s);", value)
	return nil
}

func (w jsonWriter) VisitEnum(id types.TypeID, value string) error {
	if id == w.d.cfg.Enum {
		w.d.e.line("dumpEnum(json, %s);", value)
		return nil
	}
	w.d.e.line("json.writeNumber(%s);", value)
	return nil
}

func (w jsonWriter) VisitBitmask(_ types.TypeID, value string) error {
	w.d.e.line("json.writeNumber(%s);", value)
	return nil
}

func (w jsonWriter) VisitConst(id types.TypeID, value string) error {
	return w.write(w.d.in.Elem(id), value)
}

func (w jsonWriter) VisitAlias(id types.TypeID, value string) error {
	return w.write(w.d.in.Elem(id), value)
}

func (w jsonWriter) VisitHandle(id types.TypeID, value string) error {
	return w.write(w.d.in.Elem(id), value)
}

func (w jsonWriter) VisitOpaque(_ types.TypeID, value string) error {
	w.d.e.line("json.writeNumber((size_t)%s);", value)
	return nil
}

func (w jsonWriter) VisitPointer(_ types.TypeID, value string) error {
	w.d.e.line("json.writeNumber((size_t)%s);", value)
	return nil
}

func (w jsonWriter) VisitArray(id types.TypeID, value string) error {
	info, _ := w.d.in.ArrayInfo(id)
	if info.Length == "1" {
		return w.write(info.Elem, value)
	}
	index := w.d.nextIndex()
	w.d.e.line("json.beginArray();")
	w.d.e.open("for (unsigned %s = 0; %s < %s; ++%s) {", index, index, info.Length, index)
	if err := w.write(info.Elem, fmt.Sprintf("%s[%s]", value, index)); err != nil {
		return err
	}
	w.d.e.close("}")
	w.d.e.line("json.endArray();")
	return nil
}
