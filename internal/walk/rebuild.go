package walk

import (
	"slices"

	"tracegen/internal/types"
)

// Rebuilder constructs an equivalent copy of a type graph in the same
// interner. Substitute, when set, is consulted before every node; returning
// true replaces the node (and its subtree) with the returned id.
// Shared sub-types stay shared in the copy.
type Rebuilder struct {
	In         *types.Interner
	Substitute func(id types.TypeID) (types.TypeID, bool)

	done map[types.TypeID]types.TypeID
}

// Rebuild returns the rebuilt counterpart of id.
func (r *Rebuilder) Rebuild(id types.TypeID) types.TypeID {
	if r.Substitute != nil {
		if sub, ok := r.Substitute(id); ok {
			return sub
		}
	}
	if out, ok := r.done[id]; ok {
		return out
	}
	out := Dispatch[None, types.TypeID](r.In, r, id, None{})
	if r.done == nil {
		r.done = make(map[types.TypeID]types.TypeID)
	}
	r.done[id] = out
	return out
}

func (r *Rebuilder) VisitVoid(id types.TypeID, _ None) types.TypeID      { return id }
func (r *Rebuilder) VisitLiteral(id types.TypeID, _ None) types.TypeID   { return id }
func (r *Rebuilder) VisitString(id types.TypeID, _ None) types.TypeID    { return id }
func (r *Rebuilder) VisitEnum(id types.TypeID, _ None) types.TypeID      { return id }
func (r *Rebuilder) VisitOpaque(id types.TypeID, _ None) types.TypeID    { return id }
func (r *Rebuilder) VisitInterface(id types.TypeID, _ None) types.TypeID { return id }

func (r *Rebuilder) VisitConst(id types.TypeID, _ None) types.TypeID {
	return r.In.Const(r.Rebuild(r.In.Elem(id)))
}

func (r *Rebuilder) VisitPointer(id types.TypeID, _ None) types.TypeID {
	return r.In.Pointer(r.Rebuild(r.In.Elem(id)))
}

func (r *Rebuilder) VisitAlias(id types.TypeID, _ None) types.TypeID {
	return r.In.Alias(r.In.Expr(id), r.Rebuild(r.In.Elem(id)))
}

func (r *Rebuilder) VisitBitmask(id types.TypeID, _ None) types.TypeID {
	info, _ := r.In.BitmaskInfo(id)
	values := slices.Clone(info.Values)
	return r.In.Bitmask(r.Rebuild(info.Type), values)
}

func (r *Rebuilder) VisitArray(id types.TypeID, _ None) types.TypeID {
	info, _ := r.In.ArrayInfo(id)
	length := info.Length
	return r.In.Array(r.Rebuild(info.Elem), length)
}

func (r *Rebuilder) VisitBlob(id types.TypeID, _ None) types.TypeID {
	info, _ := r.In.BlobInfo(id)
	size := info.Size
	return r.In.Blob(r.Rebuild(info.Elem), size)
}

func (r *Rebuilder) VisitHandle(id types.TypeID, _ None) types.TypeID {
	info := *mustHandle(r.In, id)
	return r.In.Handle(info.Name, r.Rebuild(info.Type), info.Range, info.Key)
}

func (r *Rebuilder) VisitStruct(id types.TypeID, _ None) types.TypeID {
	info, _ := r.In.StructInfo(id)
	name := info.Name
	members := slices.Clone(info.Members)
	for i := range members {
		members[i].Type = r.Rebuild(members[i].Type)
	}
	return r.In.Struct(name, members)
}

func (r *Rebuilder) VisitPolymorphic(id types.TypeID, _ None) types.TypeID {
	info, _ := r.In.PolymorphicInfo(id)
	switchExpr := info.Switch
	def := info.Default
	cases := slices.Clone(info.Cases)
	def = r.Rebuild(def)
	for i := range cases {
		cases[i].Type = r.Rebuild(cases[i].Type)
	}
	return r.In.Polymorphic(def, switchExpr, cases)
}

func mustHandle(in *types.Interner, id types.TypeID) *types.HandleInfo {
	info, ok := in.HandleInfo(id)
	if !ok {
		panic(&KindError{ID: id, Kind: in.KindOf(id)})
	}
	return info
}
