package types

import "slices"

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	ID     uint32 // enum table id, unique within the run
	Name   string
	Values []string // constant expressions, in declaration order
}

// BitmaskInfo stores metadata for a bitmask type.
type BitmaskInfo struct {
	ID     uint32 // bitmask table id, unique within the run
	Type   TypeID // underlying integer type
	Values []string
}

// Enum registers a named enumeration.
func (in *Interner) Enum(name string, values []string) TypeID {
	in.enums = append(in.enums, EnumInfo{
		ID:     in.nextID(&in.nextEnumID),
		Name:   name,
		Values: slices.Clone(values),
	})
	return in.internRaw(Type{
		Kind:    KindEnum,
		Payload: slotOf(len(in.enums)),
		Expr:    name,
		Tag:     in.allocTag(name, ""),
	})
}

// FakeEnum registers an enum over an integer type that C does not declare as
// one (e.g. GLenum).
func (in *Interner) FakeEnum(elem TypeID, values []string) TypeID {
	return in.Enum(in.Expr(elem), values)
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	slot, ok := in.payload(id, KindEnum)
	if !ok {
		return nil, false
	}
	return &in.enums[slot], true
}

// Bitmask registers a set of flags stored in elem.
func (in *Interner) Bitmask(elem TypeID, values []string) TypeID {
	expr := in.Expr(elem)
	in.bitmasks = append(in.bitmasks, BitmaskInfo{
		ID:     in.nextID(&in.nextBitmaskID),
		Type:   elem,
		Values: slices.Clone(values),
	})
	return in.internRaw(Type{
		Kind:    KindBitmask,
		Elem:    elem,
		Payload: slotOf(len(in.bitmasks)),
		Expr:    expr,
		Tag:     in.allocTag(expr, ""),
	})
}

// BitmaskInfo returns metadata for the provided bitmask TypeID.
func (in *Interner) BitmaskInfo(id TypeID) (*BitmaskInfo, bool) {
	slot, ok := in.payload(id, KindBitmask)
	if !ok {
		return nil, false
	}
	return &in.bitmasks[slot], true
}

// NextEnumSigID hands out the wire id of one enum constant signature.
// Signature ids are unique per constant across every enum of the run.
func (in *Interner) NextEnumSigID() uint32 {
	return in.nextID(&in.nextEnumSigID)
}
