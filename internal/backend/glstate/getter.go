package glstate

import (
	"fmt"
	"strings"

	"tracegen/internal/inflect"
	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// query is one accessor call: the leading arguments (target, face...) and
// the parameter name, which always comes last.
type query struct {
	args  []string
	pname string
}

func (q query) callArgs() string {
	return strings.Join(append(append([]string(nil), q.args...), q.pname), ", ")
}

// getter declares a temporary holding the value of one parameter, fetched
// through the family accessor chosen by the inflector.
type getter struct {
	d    *dumper
	infl *inflect.Inflector
}

func (g getter) get(t types.TypeID, q query) error {
	return walk.Dispatch[query, error](g.d.in, g, t, q)
}

func (g getter) temp(q query) string {
	return g.d.tempName(q.pname)
}

// scalar emits either "T tmp = 0; getv(args, &tmp);" or "T tmp = get(args);"
// depending on the accessor form.
func (g getter) scalar(kind inflect.ValueKind, q query) error {
	reduced, err := g.infl.Reduce(kind)
	if err != nil {
		return err
	}
	name, err := g.infl.Inflect(kind)
	if err != nil {
		return err
	}
	vector, _ := g.infl.IsVector(kind)
	spelling := g.d.cfg.spelling(reduced)
	tmp := g.temp(q)
	if vector {
		g.d.e.line("%s %s = 0;", spelling, tmp)
		g.d.e.line("%s(%s, &%s);", name, q.callArgs(), tmp)
		return nil
	}
	g.d.e.line("%s %s = %s(%s);", spelling, tmp, name, q.callArgs())
	return nil
}

func (g getter) unsupported(id types.TypeID) error {
	return fmt.Errorf("state of type %s (%s) cannot be queried", g.d.in.Expr(id), g.d.in.KindOf(id))
}

func (g getter) VisitVoid(id types.TypeID, _ query) error        { return g.unsupported(id) }
func (g getter) VisitBlob(id types.TypeID, _ query) error        { return g.unsupported(id) }
func (g getter) VisitStruct(id types.TypeID, _ query) error      { return g.unsupported(id) }
func (g getter) VisitPolymorphic(id types.TypeID, _ query) error { return g.unsupported(id) }
func (g getter) VisitInterface(id types.TypeID, _ query) error   { return g.unsupported(id) }

func (g getter) VisitLiteral(id types.TypeID, q query) error {
	kind, err := valueKind(g.d.in, id)
	if err != nil {
		return err
	}
	return g.scalar(kind, q)
}

func (g getter) VisitAlias(id types.TypeID, q query) error {
	kind, err := valueKind(g.d.in, id)
	if err != nil {
		return err
	}
	return g.scalar(kind, q)
}

func (g getter) VisitHandle(id types.TypeID, q query) error {
	return g.get(g.d.in.Elem(id), q)
}

func (g getter) VisitConst(id types.TypeID, q query) error {
	return g.get(g.d.in.Elem(id), q)
}

func (g getter) VisitEnum(_ types.TypeID, q query) error {
	return g.scalar(inflect.Enum, q)
}

func (g getter) VisitBitmask(_ types.TypeID, q query) error {
	return g.scalar(inflect.Int, q)
}

func (g getter) VisitString(id types.TypeID, q query) error {
	name, err := g.infl.Inflect(inflect.String)
	if err != nil {
		return err
	}
	if vector, _ := g.infl.IsVector(inflect.String); vector {
		return fmt.Errorf("%s: string accessor %s must return its value", q.pname, name)
	}
	spelling := g.d.in.Expr(id)
	g.d.e.line("%s %s = (%s)%s(%s);", spelling, g.temp(q), spelling, name, q.callArgs())
	return nil
}

func (g getter) VisitArray(id types.TypeID, q query) error {
	info, _ := g.d.in.ArrayInfo(id)
	if info.Length == "1" {
		return g.get(info.Elem, q)
	}
	kind, err := valueKind(g.d.in, info.Elem)
	if err != nil {
		return err
	}
	reduced, err := g.infl.Reduce(kind)
	if err != nil {
		return err
	}
	name, err := g.infl.Inflect(kind)
	if err != nil {
		return err
	}
	if vector, _ := g.infl.IsVector(kind); !vector {
		return fmt.Errorf("%s: array accessor %s must take a destination pointer", q.pname, name)
	}
	tmp := g.temp(q)
	g.d.e.line("%s %s[%s];", g.d.cfg.spelling(reduced), tmp, info.Length)
	g.d.e.line("memset(%s, 0, %s * sizeof *%s);", tmp, info.Length, tmp)
	g.d.e.line("%s(%s, %s);", name, q.callArgs(), tmp)
	return nil
}

func (g getter) pointer(q query) error {
	name, err := g.infl.Inflect(inflect.Pointer)
	if err != nil {
		return err
	}
	if vector, _ := g.infl.IsVector(inflect.Pointer); !vector {
		return fmt.Errorf("%s: pointer accessor %s must take a destination pointer", q.pname, name)
	}
	tmp := g.temp(q)
	g.d.e.line("GLvoid *%s;", tmp)
	g.d.e.line("%s(%s, &%s);", name, q.callArgs(), tmp)
	return nil
}

func (g getter) VisitOpaque(_ types.TypeID, q query) error  { return g.pointer(q) }
func (g getter) VisitPointer(_ types.TypeID, q query) error { return g.pointer(q) }

// valueKind maps a scalar type to the accessor value kind serving it.
func valueKind(in *types.Interner, id types.TypeID) (inflect.ValueKind, error) {
	switch in.KindOf(id) {
	case types.KindLiteral:
		info, _ := in.LiteralInfo(id)
		switch info.Kind {
		case types.LitBool:
			return inflect.Bool, nil
		case types.LitSInt, types.LitUInt:
			return inflect.Int, nil
		case types.LitFloat:
			return inflect.Float, nil
		case types.LitDouble:
			return inflect.Double, nil
		}
	case types.KindAlias, types.KindConst, types.KindHandle:
		return valueKind(in, in.Elem(id))
	case types.KindEnum:
		return inflect.Enum, nil
	case types.KindBitmask:
		return inflect.Int, nil
	case types.KindString:
		return inflect.String, nil
	case types.KindOpaque, types.KindPointer:
		return inflect.Pointer, nil
	}
	return 0, fmt.Errorf("no accessor value kind for %s", in.Expr(id))
}
