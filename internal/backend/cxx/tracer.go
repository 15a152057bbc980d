package cxx

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tracegen/internal/sigtable"
	"tracegen/internal/trace"
	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// DefaultDispatchPrefix names the entry points resolving to the real library.
const DefaultDispatchPrefix = "__"

// Options tune the generated unit.
type Options struct {
	DispatchPrefix string
	Header         string // emitted verbatim before the includes
	Footer         string // emitted verbatim at the end
	// IsPublic selects PUBLIC or PRIVATE linkage per function; nil means
	// every function is public.
	IsPublic func(name string) bool
	// Sigs, when set, receives every declared wire signature.
	Sigs *sigtable.Table
}

// Tracer drives the generation of one API.
type Tracer struct {
	in   *types.Interner
	api  *types.API
	opts Options
	e    *Emitter
}

// Generate emits the whole interception unit for api.
func Generate(ctx context.Context, in *types.Interner, api *types.API, opts Options) (string, error) {
	if api == nil {
		return "", nil
	}
	if opts.DispatchPrefix == "" {
		opts.DispatchPrefix = DefaultDispatchPrefix
	}
	t := &Tracer{in: in, api: api, opts: opts, e: newEmitter(in, opts.Sigs)}
	if err := t.run(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", api.Name, err)
	}
	return t.e.String(), nil
}

func (t *Tracer) run(ctx context.Context) error {
	tr := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	e := t.e

	if t.opts.Header != "" {
		e.buf.WriteString(strings.TrimRight(t.opts.Header, "\n"))
		e.blank()
	}
	for _, h := range t.api.Headers {
		e.raw("%s", includeLine(h))
	}
	e.blank()

	span := trace.Begin(tr, trace.ScopeUnit, "cxx/declare", parent)
	all := walk.AllTypes(t.in, t.api)
	decl := newDeclarator(e)
	for _, id := range all {
		if err := decl.declare(id); err != nil {
			span.End("failed")
			return fmt.Errorf("declare %s: %w", t.in.Expr(id), err)
		}
	}
	e.blank()
	span.WithExtra("types", strconv.Itoa(len(all))).End("")

	span = trace.Begin(tr, trace.ScopeUnit, "cxx/proxies", parent)
	proxies := 0
	for _, id := range all {
		if t.in.KindOf(id) != types.KindInterface {
			continue
		}
		if err := t.implementProxy(id); err != nil {
			span.End("failed")
			return err
		}
		proxies++
	}
	e.blank()
	span.WithExtra("interfaces", strconv.Itoa(proxies)).End("")

	span = trace.Begin(tr, trace.ScopeUnit, "cxx/functions", parent)
	for _, fn := range t.api.Functions {
		t.declareFunction(fn)
	}
	for _, fn := range t.api.Functions {
		if err := t.implementFunction(fn); err != nil {
			span.End("failed")
			return fmt.Errorf("%s: %w", t.in.MustFunc(fn).Name, err)
		}
	}
	e.blank()
	span.WithExtra("functions", strconv.Itoa(len(t.api.Functions))).End("")

	if t.opts.Footer != "" {
		e.buf.WriteString(strings.TrimRight(t.opts.Footer, "\n"))
		e.blank()
	}
	return nil
}

// includeLine accepts either a full preprocessor line or a bare header name.
func includeLine(h string) string {
	h = strings.TrimSpace(h)
	switch {
	case strings.HasPrefix(h, "#"):
		return h
	case strings.HasPrefix(h, "<"):
		return "#include " + h
	default:
		return fmt.Sprintf("#include %q", h)
	}
}

// declareFunction emits the argument name table and signature of fn.
func (t *Tracer) declareFunction(fn types.FuncID) {
	e := t.e
	f := t.in.MustFunc(fn)
	names := make([]string, len(f.Args))
	for i, a := range f.Args {
		names[i] = a.Name
	}
	if len(names) > 0 {
		e.raw("static const char * __%s_args[%d] = {%s};", f.Name, len(names), quoted(names))
	} else {
		e.raw("static const char ** __%s_args = NULL;", f.Name)
	}
	e.raw("static const trace::FunctionSig __%s_sig = {%d, %q, %d, __%s_args};", f.Name, f.ID, f.Name, len(names), f.Name)
	e.blank()
	t.opts.Sigs.AddFunction(sigtable.FunctionSig{ID: f.ID, Name: f.Name, Args: names})
}

func (t *Tracer) isPublic(name string) bool {
	return t.opts.IsPublic == nil || t.opts.IsPublic(name)
}

// implementFunction emits the exported wrapper of fn: the enter frame, the
// dispatch to the real entry point and the leave frame.
func (t *Tracer) implementFunction(fn types.FuncID) error {
	e := t.e
	f := t.in.MustFunc(fn)
	hasResult := !t.in.IsVoid(f.Result)

	if t.isPublic(f.Name) {
		e.raw(`extern "C" PUBLIC`)
	} else {
		e.raw(`extern "C" PRIVATE`)
	}
	e.raw("%s {", t.in.Prototype(fn, ""))
	if hasResult {
		e.line("%s __result;", t.in.Expr(f.Result))
	}

	e.line("unsigned __call = %s.beginEnter(&__%s_sig);", writer, f.Name)
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
	e.call("endEnter")
	t.dispatch(f)
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
	}
	e.call("endLeave")

	if hasResult {
		if err := e.wrap(f.Result, "__result"); err != nil {
			return err
		}
		e.line("return __result;")
	}
	e.raw("}")
	e.blank()
	return nil
}

func (t *Tracer) dispatch(f *types.FuncInfo) {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Name
	}
	result := ""
	if !t.in.IsVoid(f.Result) {
		result = "__result = "
	}
	t.e.line("%s%s%s(%s);", result, t.opts.DispatchPrefix, f.Name, joinArgs(args))
}

func (t *Tracer) dumpArg(a types.Arg) error {
	t.e.call("beginArg", strconv.Itoa(a.Index))
	if err := t.e.dump(a.Type, a.Name); err != nil {
		return fmt.Errorf("argument %s: %w", a.Name, err)
	}
	t.e.call("endArg")
	return nil
}

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}
