package types

import (
	"fmt"
	"slices"
)

// InterfaceInfo stores metadata for a COM-style interface.
type InterfaceInfo struct {
	Name    string
	Base    TypeID   // NoTypeID for root interfaces
	Methods []FuncID // own methods only, see Interner.Methods
}

// RegisterInterface allocates an interface slot. Methods are attached
// afterwards with SetInterfaceMethods so they may refer to the interface.
func (in *Interner) RegisterInterface(name string, base TypeID) TypeID {
	if base != NoTypeID && in.KindOf(base) != KindInterface {
		panic(fmt.Errorf("types: base of %s is a %s, not an interface", name, in.KindOf(base)))
	}
	in.ifaces = append(in.ifaces, InterfaceInfo{Name: name, Base: base})
	return in.internRaw(Type{
		Kind:    KindInterface,
		Payload: slotOf(len(in.ifaces)),
		Expr:    name,
		Tag:     in.allocTag(name, ""),
	})
}

// SetInterfaceMethods stores the interface's own methods.
func (in *Interner) SetInterfaceMethods(id TypeID, methods []FuncID) {
	info, ok := in.InterfaceInfo(id)
	if !ok {
		return
	}
	info.Methods = slices.Clone(methods)
}

// InterfaceInfo returns metadata for an interface TypeID.
func (in *Interner) InterfaceInfo(id TypeID) (*InterfaceInfo, bool) {
	slot, ok := in.payload(id, KindInterface)
	if !ok {
		return nil, false
	}
	return &in.ifaces[slot], true
}

// Methods returns the effective method list: the base's methods (recursively)
// followed by the interface's own.
func (in *Interner) Methods(id TypeID) []FuncID {
	info, ok := in.InterfaceInfo(id)
	if !ok {
		return nil
	}
	var out []FuncID
	if info.Base != NoTypeID {
		out = in.Methods(info.Base)
	}
	return append(out, info.Methods...)
}
