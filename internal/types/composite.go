package types

import "slices"

// ArrayInfo stores metadata for variable length arrays.
type ArrayInfo struct {
	Elem   TypeID
	Length string // expression evaluated in the generated code's scope
}

// BlobInfo stores metadata for untyped memory regions.
type BlobInfo struct {
	Elem TypeID
	Size string // byte size expression
}

// Member is a struct member; order defines the wire order.
type Member struct {
	Type TypeID
	Name string
}

// StructInfo stores metadata for struct types.
type StructInfo struct {
	ID      uint32
	Name    string
	Members []Member
}

// PolyCase maps a discriminant expression to a concrete type.
type PolyCase struct {
	Expr string
	Type TypeID
}

// PolymorphicInfo stores metadata for tagged values.
type PolymorphicInfo struct {
	Default TypeID
	Switch  string // discriminant expression
	Cases   []PolyCase
}

// SwitchGroup is one arm of a polymorphic dispatch: every case label that
// resolves to Type.
type SwitchGroup struct {
	Labels []string // "default" or "case EXPR"
	Type   TypeID
}

// Array registers a counted array of elem.
func (in *Interner) Array(elem TypeID, length string) TypeID {
	expr := in.Expr(elem) + " *"
	in.arrays = append(in.arrays, ArrayInfo{Elem: elem, Length: length})
	return in.internRaw(Type{
		Kind:    KindArray,
		Elem:    elem,
		Payload: slotOf(len(in.arrays)),
		Expr:    expr,
		Tag:     in.allocTag(expr, ""),
	})
}

// ArrayInfo returns metadata for an array TypeID.
func (in *Interner) ArrayInfo(id TypeID) (*ArrayInfo, bool) {
	slot, ok := in.payload(id, KindArray)
	if !ok {
		return nil, false
	}
	return &in.arrays[slot], true
}

// Blob registers an untyped region of size bytes.
func (in *Interner) Blob(elem TypeID, size string) TypeID {
	expr := in.Expr(elem) + " *"
	in.blobs = append(in.blobs, BlobInfo{Elem: elem, Size: size})
	return in.internRaw(Type{
		Kind:    KindBlob,
		Elem:    elem,
		Payload: slotOf(len(in.blobs)),
		Expr:    expr,
		Tag:     in.allocTag(expr, ""),
	})
}

// BlobInfo returns metadata for a blob TypeID.
func (in *Interner) BlobInfo(id TypeID) (*BlobInfo, bool) {
	slot, ok := in.payload(id, KindBlob)
	if !ok {
		return nil, false
	}
	return &in.blobs[slot], true
}

// Struct registers a struct with members in wire order.
func (in *Interner) Struct(name string, members []Member) TypeID {
	in.structs = append(in.structs, StructInfo{
		ID:      in.nextID(&in.nextStructID),
		Name:    name,
		Members: slices.Clone(members),
	})
	return in.internRaw(Type{
		Kind:    KindStruct,
		Payload: slotOf(len(in.structs)),
		Expr:    name,
		Tag:     in.allocTag(name, ""),
	})
}

// StructInfo returns metadata for a struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	slot, ok := in.payload(id, KindStruct)
	if !ok {
		return nil, false
	}
	return &in.structs[slot], true
}

// Polymorphic registers a value whose type depends on switchExpr.
func (in *Interner) Polymorphic(def TypeID, switchExpr string, cases []PolyCase) TypeID {
	expr := in.Expr(def)
	in.polys = append(in.polys, PolymorphicInfo{
		Default: def,
		Switch:  switchExpr,
		Cases:   slices.Clone(cases),
	})
	return in.internRaw(Type{
		Kind:    KindPolymorphic,
		Payload: slotOf(len(in.polys)),
		Expr:    expr,
		Tag:     in.allocTag(expr, ""),
	})
}

// PolymorphicInfo returns metadata for a polymorphic TypeID.
func (in *Interner) PolymorphicInfo(id TypeID) (*PolymorphicInfo, bool) {
	slot, ok := in.payload(id, KindPolymorphic)
	if !ok {
		return nil, false
	}
	return &in.polys[slot], true
}

// Groups groups the cases by resolved type. The default arm comes first;
// cases resolving to a type already seen join that type's arm.
func (p *PolymorphicInfo) Groups() []SwitchGroup {
	groups := []SwitchGroup{{Labels: []string{"default"}, Type: p.Default}}
	for _, c := range p.Cases {
		label := "case " + c.Expr
		i := slices.IndexFunc(groups, func(g SwitchGroup) bool { return g.Type == c.Type })
		if i < 0 {
			groups = append(groups, SwitchGroup{Labels: []string{label}, Type: c.Type})
			continue
		}
		groups[i].Labels = append(groups[i].Labels, label)
	}
	return groups
}
