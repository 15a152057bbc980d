package types

import (
	"fmt"

	"fortio.org/safecast"
)

// firstFunctionID is the first wire id handed to a function; 0-3 are
// reserved for memcpy, malloc, free and realloc.
const firstFunctionID uint32 = 4

// Interner is the generation context. It owns every type descriptor, the tag
// table and the id counters. Nothing in it is reset during a run, and two
// interners fed the same constructions in the same order allocate identical
// ids and tags.
type Interner struct {
	types    []Type
	builtins Builtins

	literals []LiteralInfo
	strs     []StringInfo
	enums    []EnumInfo
	bitmasks []BitmaskInfo
	arrays   []ArrayInfo
	blobs    []BlobInfo
	structs  []StructInfo
	handles  []HandleInfo
	polys    []PolymorphicInfo
	ifaces   []InterfaceInfo
	funcs    []FuncInfo

	tags       map[string]struct{}
	tagHints   map[string]int
	pendingTag string

	nextStructID  uint32
	nextEnumID    uint32
	nextBitmaskID uint32
	nextFuncID    uint32
	nextArgID     uint32
	nextEnumSigID uint32
}

// NewInterner constructs a context seeded with the stock C scalars.
func NewInterner() *Interner {
	in := &Interner{
		tags:       make(map[string]struct{}, 256),
		tagHints:   make(map[string]int, 64),
		nextFuncID: firstFunctionID,
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // reserve 0 as invalid sentinel
	in.funcs = append(in.funcs, FuncInfo{})
	in.seedBuiltins()
	return in
}

// internRaw appends the descriptor to the arena.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	in.types = append(in.types, t)
	return TypeID(lenTypes)
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of arena slots, including the reserved sentinel.
func (in *Interner) Len() int {
	if in == nil {
		return 0
	}
	return len(in.types)
}

// Expr returns the C spelling of id.
func (in *Interner) Expr(id TypeID) string {
	return in.MustLookup(id).Expr
}

// Tag returns the run-unique tag of id.
func (in *Interner) Tag(id TypeID) string {
	return in.MustLookup(id).Tag
}

// KindOf returns the kind of id, or KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Elem returns the wrapped type of const/pointer/alias/handle/bitmask/array/blob types.
func (in *Interner) Elem(id TypeID) TypeID {
	return in.MustLookup(id).Elem
}

func slotOf(n int) uint32 {
	slot, err := safecast.Conv[uint32](n - 1)
	if err != nil {
		panic(fmt.Errorf("info slot overflow: %w", err))
	}
	return slot
}

// payload returns the info slot of id when it has the expected kind.
func (in *Interner) payload(id TypeID, kind Kind) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != kind {
		return 0, false
	}
	return tt.Payload, true
}

func (in *Interner) nextID(counter *uint32) uint32 {
	id := *counter
	*counter++
	return id
}
