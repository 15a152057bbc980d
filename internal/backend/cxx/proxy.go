package cxx

import (
	"errors"
	"fmt"

	"tracegen/internal/sigtable"
	"tracegen/internal/types"
)

// declareProxy emits the proxy class of iface: constructor, destructor,
// every effective method and the real instance pointer.
func declareProxy(e *Emitter, iface types.TypeID) error {
	in := e.types
	info, _ := in.InterfaceInfo(iface)
	name := wrapName(in, iface)
	e.raw("class %s : public %s ", name, info.Name)
	e.raw("{")
	e.raw("public:")
	e.line("%s(%s * pInstance);", name, info.Name)
	e.line("virtual ~%s();", name)
	e.blank()
	for _, m := range in.Methods(iface) {
		e.line("%s;", in.Prototype(m, ""))
	}
	e.blank()
	e.line("%s * m_pInstance;", info.Name)
	e.raw("};")
	e.blank()
	return nil
}

// implementProxy emits the proxy constructor, destructor and one tracing
// body per effective method.
func (t *Tracer) implementProxy(iface types.TypeID) error {
	e := t.e
	info, _ := t.in.InterfaceInfo(iface)
	name := wrapName(t.in, iface)
	e.raw("%s::%s(%s * pInstance) {", name, name, info.Name)
	e.line("m_pInstance = pInstance;")
	e.raw("}")
	e.blank()
	e.raw("%s::~%s() {", name, name)
	e.raw("}")
	e.blank()
	for _, m := range t.in.Methods(iface) {
		if err := t.traceMethod(iface, m); err != nil {
			return fmt.Errorf("%s::%s: %w", info.Name, t.in.MustFunc(m).Name, err)
		}
	}
	e.blank()
	return nil
}

// traceMethod emits one proxy method. The receiver is recorded as argument 0.
func (t *Tracer) traceMethod(iface types.TypeID, m types.FuncID) error {
	e := t.e
	in := t.in
	info, _ := in.InterfaceInfo(iface)
	f := in.MustFunc(m)
	qualified := info.Name + "::" + f.Name
	hasResult := !in.IsVoid(f.Result)

	argNames := make([]string, 0, len(f.Args)+1)
	argNames = append(argNames, "this")
	callArgs := make([]string, len(f.Args))
	for i, a := range f.Args {
		argNames = append(argNames, a.Name)
		callArgs[i] = a.Name
	}

	e.raw("%s {", in.Prototype(m, wrapName(in, iface)+"::"+f.Name))
	e.line("static const char * __args[%d] = {%s};", len(argNames), quoted(argNames))
	e.line("static const trace::FunctionSig __sig = {%d, %q, %d, __args};", f.ID, qualified, len(argNames))
	e.sigs.AddFunction(sigtable.FunctionSig{ID: f.ID, Name: qualified, Args: argNames})

	e.line("unsigned __call = %s.beginEnter(&__sig);", writer)
	e.call("beginArg", "0")
	e.call("writeOpaque", "(const void *)m_pInstance")
	e.call("endArg")
	for _, a := range f.Args {
		if a.Output {
			continue
		}
		if err := e.unwrap(a.Type, a.Name); err != nil {
			return err
		}
		if err := t.dumpArg(a); err != nil {
			return err
		}
	}
	result := ""
	if hasResult {
		e.line("%s __result;", in.Expr(f.Result))
		result = "__result = "
	}
	e.call("endEnter")
	e.line("%sm_pInstance->%s(%s);", result, f.Name, joinArgs(callArgs))
	e.call("beginLeave", "__call")
	for _, a := range f.Args {
		if !a.Output {
			continue
		}
		if err := t.dumpArg(a); err != nil {
			return err
		}
		if err := e.wrap(a.Type, a.Name); err != nil {
			return err
		}
	}
	if hasResult {
		e.call("beginReturn")
		if err := e.dump(f.Result, "__result"); err != nil {
			return err
		}
		e.call("endReturn")
		if err := e.wrap(f.Result, "__result"); err != nil {
			return err
		}
	}
	e.call("endLeave")

	switch f.Name {
	case "QueryInterface":
		t.queryInterfaceHook()
	case "Release":
		if !hasResult {
			return errors.New("Release must return the remaining reference count")
		}
		e.line("if (!__result)")
		e.depth++
		e.line("delete this;")
		e.depth--
	}

	if hasResult {
		e.line("return __result;")
	}
	e.raw("}")
	e.blank()
	return nil
}

// queryInterfaceHook replaces the returned object with a proxy of the
// interface identified by riid, or with this proxy when the real object
// handed back itself.
func (t *Tracer) queryInterfaceHook() {
	e := t.e
	e.open("if (ppvObj && *ppvObj) {")
	e.open("if (*ppvObj == m_pInstance) {")
	e.line("*ppvObj = this;")
	e.close("}")
	for _, iface := range t.api.Interfaces {
		name := t.in.Expr(iface)
		e.open("else if (riid == IID_%s) {", name)
		e.line("*ppvObj = new Wrap%s((%s *) *ppvObj);", name, name)
		e.close("}")
	}
	e.close("}")
}
