package walk

import (
	"slices"

	"tracegen/internal/types"
)

// Collector gathers every type reachable from the visited roots. A type is
// appended once its dependencies are, so emitting helpers in collector order
// never refers to a helper that was not emitted yet.
type Collector struct {
	in    *types.Interner
	once  Once
	types []types.TypeID
}

// NewCollector returns an empty collector over in.
func NewCollector(in *types.Interner) *Collector {
	return &Collector{in: in}
}

// Visit collects id and everything it references.
func (c *Collector) Visit(id types.TypeID) {
	if !c.once.Mark(id) {
		return
	}
	Dispatch[None, None](c.in, c, id, None{})
	c.types = append(c.types, id)
}

// VisitFunc collects the argument types of fn followed by its result type.
func (c *Collector) VisitFunc(fn types.FuncID) {
	f := c.in.MustFunc(fn)
	for _, arg := range f.Args {
		c.Visit(arg.Type)
	}
	c.Visit(f.Result)
}

// Types returns the collected ids in collection order.
func (c *Collector) Types() []types.TypeID {
	return slices.Clone(c.types)
}

// AllTypes returns every type reachable from the functions and interfaces of
// api, each exactly once.
func AllTypes(in *types.Interner, api *types.API) []types.TypeID {
	c := NewCollector(in)
	for _, fn := range api.Functions {
		c.VisitFunc(fn)
	}
	for _, iface := range api.Interfaces {
		c.Visit(iface)
		for _, m := range in.Methods(iface) {
			c.VisitFunc(m)
		}
	}
	return c.Types()
}

func (c *Collector) VisitVoid(types.TypeID, None) None    { return None{} }
func (c *Collector) VisitLiteral(types.TypeID, None) None { return None{} }
func (c *Collector) VisitString(types.TypeID, None) None  { return None{} }
func (c *Collector) VisitEnum(types.TypeID, None) None    { return None{} }
func (c *Collector) VisitBlob(types.TypeID, None) None    { return None{} }
func (c *Collector) VisitOpaque(types.TypeID, None) None  { return None{} }

func (c *Collector) VisitConst(id types.TypeID, _ None) None {
	c.Visit(c.in.Elem(id))
	return None{}
}

func (c *Collector) VisitPointer(id types.TypeID, _ None) None {
	c.Visit(c.in.Elem(id))
	return None{}
}

func (c *Collector) VisitAlias(id types.TypeID, _ None) None {
	c.Visit(c.in.Elem(id))
	return None{}
}

func (c *Collector) VisitBitmask(id types.TypeID, _ None) None {
	c.Visit(c.in.Elem(id))
	return None{}
}

func (c *Collector) VisitArray(id types.TypeID, _ None) None {
	c.Visit(c.in.Elem(id))
	return None{}
}

func (c *Collector) VisitHandle(id types.TypeID, _ None) None {
	c.Visit(c.in.Elem(id))
	return None{}
}

func (c *Collector) VisitStruct(id types.TypeID, _ None) None {
	info, _ := c.in.StructInfo(id)
	for _, m := range info.Members {
		c.Visit(m.Type)
	}
	return None{}
}

func (c *Collector) VisitPolymorphic(id types.TypeID, _ None) None {
	info, _ := c.in.PolymorphicInfo(id)
	c.Visit(info.Default)
	for _, cs := range info.Cases {
		c.Visit(cs.Type)
	}
	return None{}
}

func (c *Collector) VisitInterface(id types.TypeID, _ None) None {
	info, _ := c.in.InterfaceInfo(id)
	if info.Base != types.NoTypeID {
		c.Visit(info.Base)
	}
	for _, m := range c.in.Methods(id) {
		c.VisitFunc(m)
	}
	return None{}
}
