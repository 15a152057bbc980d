package types

// API aggregates the functions and interfaces of one traced library.
type API struct {
	Name       string
	Headers    []string
	Functions  []FuncID
	Interfaces []TypeID
}

// NewAPI returns an empty API.
func NewAPI(name string) *API {
	return &API{Name: name}
}

// AddFunctions appends functions in order.
func (a *API) AddFunctions(fns ...FuncID) {
	a.Functions = append(a.Functions, fns...)
}

// AddInterfaces appends interfaces in order.
func (a *API) AddInterfaces(ifaces ...TypeID) {
	a.Interfaces = append(a.Interfaces, ifaces...)
}

// AddAPI merges another API built in the same interner.
func (a *API) AddAPI(other *API) {
	if other == nil {
		return
	}
	a.Headers = append(a.Headers, other.Headers...)
	a.AddFunctions(other.Functions...)
	a.AddInterfaces(other.Interfaces...)
}

// FunctionByName returns the first function called name.
func (a *API) FunctionByName(in *Interner, name string) (FuncID, bool) {
	for _, id := range a.Functions {
		if f, ok := in.Func(id); ok && f.Name == name {
			return id, true
		}
	}
	return NoFuncID, false
}
