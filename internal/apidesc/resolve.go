package apidesc

import (
	"fmt"
	"maps"
	"strings"

	"tracegen/internal/diag"
	"tracegen/internal/types"
)

type declState uint8

const (
	pending declState = iota
	resolving
	resolved
	failed
)

type builder struct {
	in    *types.Interner
	r     diag.Reporter
	loc   diag.Location
	built types.Builtins

	decls  map[string]*typeDecl
	status map[string]declState
	ids    map[string]types.TypeID
	refs   map[string]types.TypeID

	ifaces     map[string]types.TypeID
	ifaceOrder []types.TypeID

	funcs   []types.FuncID
	private map[string]bool
}

func newBuilder(path string, in *types.Interner, r diag.Reporter) *builder {
	return &builder{
		in:      in,
		r:       r,
		loc:     diag.Location{File: path},
		built:   in.Builtins(),
		decls:   make(map[string]*typeDecl),
		status:  make(map[string]declState),
		ids:     make(map[string]types.TypeID),
		refs:    make(map[string]types.TypeID),
		ifaces:  make(map[string]types.TypeID),
		private: make(map[string]bool),
	}
}

func (b *builder) errorf(code diag.Code, key, format string, args ...any) {
	diag.ReportError(b.r, code, b.loc.At(key), fmt.Sprintf(format, args...)).Emit()
}

// declare indexes the type declarations by name without building them.
func (b *builder) declare(decls []typeDecl) {
	for i := range decls {
		d := &decls[i]
		key := fmt.Sprintf("type.%s", d.Name)
		switch {
		case strings.TrimSpace(d.Name) == "":
			b.errorf(diag.DscMissingField, fmt.Sprintf("type[%d]", i), "type declaration without a name")
		case b.decls[d.Name] != nil:
			b.errorf(diag.DscDuplicateName, key, "type %s declared twice", d.Name)
		default:
			if _, ok := b.built.ByName(d.Name); ok {
				b.errorf(diag.DscDuplicateName, key, "type %s shadows a builtin", d.Name)
				continue
			}
			b.decls[d.Name] = d
		}
	}
}

// interfaces registers every interface before any method is built so
// methods can take pointers to their own interface.
func (b *builder) interfaces(decls []interfaceDecl) {
	for _, d := range decls {
		key := "interface." + d.Name
		if d.Name == "" {
			b.errorf(diag.DscMissingField, "interface", "interface declaration without a name")
			continue
		}
		if _, dup := b.ifaces[d.Name]; dup || b.decls[d.Name] != nil {
			b.errorf(diag.DscDuplicateName, key, "%s declared twice", d.Name)
			continue
		}
		base := types.NoTypeID
		if d.Base != "" {
			id, ok := b.ifaces[d.Base]
			if !ok {
				b.errorf(diag.DscBadInterface, key+".base", "base %s must be an interface declared earlier", d.Base)
				continue
			}
			base = id
		}
		if types.DeriveTag(d.Name) == "" {
			b.errorf(diag.DscBadTag, key, "no tag can be derived from interface name %q", d.Name)
			continue
		}
		id := b.in.RegisterInterface(d.Name, base)
		b.ifaces[d.Name] = id
		b.ifaceOrder = append(b.ifaceOrder, id)
	}
}

func (b *builder) methods(decls []interfaceDecl) {
	for _, d := range decls {
		id, ok := b.ifaces[d.Name]
		if !ok {
			continue
		}
		var methods []types.FuncID
		for _, m := range d.Methods {
			key := fmt.Sprintf("interface.%s.methods.%s", d.Name, m.Name)
			result, args, ok := b.signature(key, m)
			if !ok {
				continue
			}
			methods = append(methods, b.in.Method(result, m.Name, args))
		}
		b.in.SetInterfaceMethods(id, methods)
	}
}

func (b *builder) functions(decls []funcDecl) {
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		key := "function." + d.Name
		if d.Name == "" {
			b.errorf(diag.DscMissingField, "function", "function declaration without a name")
			continue
		}
		if seen[d.Name] {
			b.errorf(diag.DscDuplicateName, key, "function %s declared twice", d.Name)
			continue
		}
		seen[d.Name] = true
		result, args, ok := b.signature(key, d)
		if !ok {
			continue
		}
		var opts []types.FuncOption
		if d.Call != "" {
			opts = append(opts, types.WithCall(d.Call))
		}
		var fn types.FuncID
		if d.Std {
			fn = b.in.StdFunction(result, d.Name, args, opts...)
		} else {
			fn = b.in.Function(result, d.Name, args, opts...)
		}
		b.funcs = append(b.funcs, fn)
		if d.Private {
			b.private[d.Name] = true
		}
	}
}

func (b *builder) signature(key string, d funcDecl) (types.TypeID, []types.Arg, bool) {
	ok := true
	result := b.built.Void
	if d.Result != "" {
		if id, found := b.ref(key+".result", d.Result); found {
			result = id
		} else {
			ok = false
		}
	}
	args := make([]types.Arg, 0, len(d.Args))
	for i, a := range d.Args {
		id, found := b.ref(fmt.Sprintf("%s.args[%d]", key, i), a.Type)
		if !found {
			ok = false
			continue
		}
		if a.Out {
			args = append(args, types.Out(id, a.Name))
		} else {
			args = append(args, types.In(id, a.Name))
		}
	}
	return result, args, ok
}

func (b *builder) names() map[string]types.TypeID {
	out := maps.Clone(b.ids)
	for name, id := range b.ifaces {
		out[name] = id
	}
	return out
}

// ref resolves a type reference, building pointer and const wrappers on
// demand. Equal references share one type.
func (b *builder) ref(key, s string) (types.TypeID, bool) {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " *", "*")
	s = strings.ReplaceAll(s, "*", " *")
	s = strings.ReplaceAll(s, "* *", "**")
	if s == "" {
		b.errorf(diag.DscMissingField, key, "missing type")
		return types.NoTypeID, false
	}
	if id, ok := b.refs[s]; ok {
		return id, true
	}
	id, ok := b.parseRef(key, s)
	if ok {
		b.refs[s] = id
	}
	return id, ok
}

func (b *builder) parseRef(key, s string) (types.TypeID, bool) {
	if id, ok := b.exact(s); ok {
		// NoTypeID: a declared type that failed and was already reported
		return id, id != types.NoTypeID
	}
	// "const char *" is a const string, not a pointer to const char
	if rest, ok := strings.CutPrefix(s, "const "); ok {
		if id, ok := b.exact(rest); ok && id != types.NoTypeID && b.in.KindOf(id) == types.KindString {
			return b.in.Const(id), true
		}
	}
	if inner, ok := strings.CutSuffix(s, " const"); ok {
		id, ok := b.ref(key, inner)
		if !ok {
			return types.NoTypeID, false
		}
		return b.in.Const(id), true
	}
	if inner, ok := strings.CutSuffix(s, "*"); ok {
		id, ok := b.ref(key, inner)
		if !ok {
			return types.NoTypeID, false
		}
		return b.in.Pointer(id), true
	}
	if inner, ok := strings.CutPrefix(s, "const "); ok {
		id, ok := b.ref(key, inner)
		if !ok {
			return types.NoTypeID, false
		}
		return b.in.Const(id), true
	}
	b.errorf(diag.DscUnknownType, key, "%s is not declared", s)
	return types.NoTypeID, false
}

// exact looks s up as a whole name.
func (b *builder) exact(s string) (types.TypeID, bool) {
	if id, ok := b.built.ByName(s); ok {
		return id, true
	}
	if id, ok := b.ifaces[s]; ok {
		return id, true
	}
	if _, ok := b.decls[s]; ok {
		id, _ := b.named(s)
		return id, true
	}
	return types.NoTypeID, false
}
