package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// FuncID identifies a function or method inside the interner.
type FuncID uint32

// NoFuncID marks the absence of a function.
const NoFuncID FuncID = 0

// Arg is one function argument.
type Arg struct {
	ID     uint32 // run-sequential id
	Type   TypeID
	Name   string
	Output bool
	Index  int // wire index; methods start at 1 (0 is the receiver)
}

// In describes an input argument.
func In(t TypeID, name string) Arg { return Arg{Type: t, Name: name} }

// Out describes an output argument.
func Out(t TypeID, name string) Arg { return Arg{Type: t, Name: name, Output: true} }

// FuncInfo stores metadata for functions and interface methods.
type FuncInfo struct {
	ID     uint32 // wire id; 0-3 are reserved
	Name   string
	Call   string // calling convention, e.g. "__stdcall"
	Result TypeID
	Args   []Arg
	Method bool
}

// FuncOption tweaks a function at construction.
type FuncOption func(*FuncInfo)

// WithCall sets the calling convention.
func WithCall(call string) FuncOption {
	return func(f *FuncInfo) { f.Call = call }
}

// Function registers a free function.
func (in *Interner) Function(result TypeID, name string, args []Arg, opts ...FuncOption) FuncID {
	info := FuncInfo{
		ID:     in.nextID(&in.nextFuncID),
		Name:   name,
		Result: result,
	}
	for _, opt := range opts {
		opt(&info)
	}
	info.Args = make([]Arg, len(args))
	for i, arg := range args {
		if arg.Name == "" {
			arg.Name = fmt.Sprintf("arg%d", i)
		}
		arg.ID = in.nextID(&in.nextArgID)
		arg.Index = i
		info.Args[i] = arg
	}
	in.funcs = append(in.funcs, info)
	id, err := safecast.Conv[uint32](len(in.funcs) - 1)
	if err != nil {
		panic(fmt.Errorf("func info overflow: %w", err))
	}
	return FuncID(id)
}

// StdFunction registers a __stdcall function.
func (in *Interner) StdFunction(result TypeID, name string, args []Arg, opts ...FuncOption) FuncID {
	return in.Function(result, name, args, append([]FuncOption{WithCall("__stdcall")}, opts...)...)
}

// Method registers an interface method. Argument indices start at 1.
func (in *Interner) Method(result TypeID, name string, args []Arg) FuncID {
	id := in.Function(result, name, args, WithCall("__stdcall"))
	info := &in.funcs[id]
	info.Method = true
	for i := range info.Args {
		info.Args[i].Index = i + 1
	}
	return id
}

// Func returns metadata for a function.
func (in *Interner) Func(id FuncID) (*FuncInfo, bool) {
	if in == nil || id == NoFuncID || int(id) >= len(in.funcs) {
		return nil, false
	}
	return &in.funcs[id], true
}

// MustFunc panics when id is invalid.
func (in *Interner) MustFunc(id FuncID) *FuncInfo {
	f, ok := in.Func(id)
	if !ok {
		panic("types: invalid FuncID")
	}
	return f
}

// Prototype renders "ret [call] name(args)". An empty name uses the
// function's own name.
func (in *Interner) Prototype(id FuncID, name string) string {
	f := in.MustFunc(id)
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.Name
	}
	s := name
	if f.Call != "" {
		s = f.Call + " " + s
	}
	if strings.HasPrefix(name, "*") {
		s = "(" + s + ")"
	}
	var b strings.Builder
	b.WriteString(in.Expr(f.Result))
	b.WriteByte(' ')
	b.WriteString(s)
	b.WriteByte('(')
	if len(f.Args) == 0 {
		b.WriteString("void")
	}
	for i, arg := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(in.Expr(arg.Type))
		b.WriteByte(' ')
		b.WriteString(arg.Name)
	}
	b.WriteByte(')')
	return b.String()
}

// IsVoid reports whether t is a void type.
func (in *Interner) IsVoid(t TypeID) bool {
	return in.KindOf(t) == KindVoid
}
