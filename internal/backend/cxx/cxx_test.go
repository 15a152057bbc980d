package cxx

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"tracegen/internal/sigtable"
	"tracegen/internal/types"
)

// trimmed splits generated text into non-empty lines without indentation.
func trimmed(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func hasRun(lines, want []string) bool {
	for i := 0; i+len(want) <= len(lines); i++ {
		if slices.Equal(lines[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

func expectRun(t *testing.T, src string, want ...string) {
	t.Helper()
	if !hasRun(trimmed(src), want) {
		t.Fatalf("generated code lacks\n%s\n--- got ---\n%s", strings.Join(want, "\n"), src)
	}
}

func TestStructEncoderWritesMembersInOrder(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	pt := in.Struct("Point", []types.Member{{Type: b.Int, Name: "x"}, {Type: b.Int, Name: "y"}})
	e := newEmitter(in, nil)
	if err := newDeclarator(e).declare(pt); err != nil {
		t.Fatalf("declare: %v", err)
	}
	expectRun(t, e.String(),
		"static void _write__Point(const Point &value) {",
		"static const char * members[2] = {",
		`"x",`,
		`"y",`,
		"};",
		"static const trace::StructSig sig = {",
		`0, "Point", 2, members`,
		"};",
		"trace::localWriter.beginStruct(&sig);",
		"trace::localWriter.writeSInt(value.x);",
		"trace::localWriter.writeSInt(value.y);",
		"trace::localWriter.endStruct();",
		"}",
	)
}

func TestArrayEncoderNullChecksAndLoops(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	arr := in.Array(in.Const(b.Int), "count")
	e := newEmitter(in, nil)
	if err := e.dump(arr, "values"); err != nil {
		t.Fatalf("dump: %v", err)
	}
	expectRun(t, e.String(),
		"if (values) {",
		"size_t __cCint = count;",
		"trace::localWriter.beginArray(__cCint);",
		"for (size_t __iCint = 0; __iCint < __cCint; ++__iCint) {",
		"trace::localWriter.beginElement();",
		"trace::localWriter.writeSInt((values)[__iCint]);",
		"trace::localWriter.endElement();",
		"}",
		"trace::localWriter.endArray();",
		"} else {",
		"trace::localWriter.writeNull();",
		"}",
	)
	if n := strings.Count(e.String(), "writeNull"); n != 1 {
		t.Fatalf("expected one writeNull, got %d", n)
	}
}

func TestPointerEncodedAsArrayOfOne(t *testing.T) {
	in := types.NewInterner()
	e := newEmitter(in, nil)
	if err := e.dump(in.Pointer(in.Builtins().Float), "p"); err != nil {
		t.Fatalf("dump: %v", err)
	}
	expectRun(t, e.String(),
		"if (p) {",
		"trace::localWriter.beginArray(1);",
		"trace::localWriter.beginElement();",
		"trace::localWriter.writeFloat(*p);",
		"trace::localWriter.endElement();",
		"trace::localWriter.endArray();",
		"} else {",
		"trace::localWriter.writeNull();",
		"}",
	)
}

func TestStringEncoding(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	cases := []struct {
		t    types.TypeID
		want string
	}{
		{in.Const(b.CString), "trace::localWriter.writeString(reinterpret_cast<const char *>(s));"},
		{in.String("const char *", "len", types.StrNarrow), "trace::localWriter.writeString(s, len);"},
		{in.String("const GLubyte *", "", types.StrNarrow), "trace::localWriter.writeString(reinterpret_cast<const char *>(s));"},
		{in.String("const wchar_t *", "", types.StrWide), "trace::localWriter.writeWString(s);"},
	}
	for _, tc := range cases {
		e := newEmitter(in, nil)
		if err := e.dump(tc.t, "s"); err != nil {
			t.Fatalf("dump: %v", err)
		}
		if got := strings.TrimSpace(e.String()); got != tc.want {
			t.Fatalf("dump(%s) = %q, want %q", in.Expr(tc.t), got, tc.want)
		}
	}
}

func TestScalarAndOpaqueEncoding(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	mask := in.Bitmask(b.UInt, []string{"FLAG_A"})
	cases := []struct {
		t    types.TypeID
		want string
	}{
		{b.Bool, "trace::localWriter.writeBool(v);"},
		{b.UInt, "trace::localWriter.writeUInt(v);"},
		{b.Double, "trace::localWriter.writeDouble(v);"},
		{in.Opaque("HWND"), "trace::localWriter.writeOpaque((const void *)v);"},
		{in.Blob(b.Void, "size"), "trace::localWriter.writeBlob(v, size);"},
		{mask, "trace::localWriter.writeBitmask(&__bitmask" + in.Tag(mask) + "_sig, v);"},
		{in.Handle("buffer", b.UInt, "", ""), "trace::localWriter.writeUInt(v);"},
	}
	for _, tc := range cases {
		e := newEmitter(in, nil)
		if err := e.dump(tc.t, "v"); err != nil {
			t.Fatalf("dump: %v", err)
		}
		if got := strings.TrimSpace(e.String()); got != tc.want {
			t.Fatalf("dump(%s) = %q, want %q", in.Expr(tc.t), got, tc.want)
		}
	}
}

func TestDumpVoidFails(t *testing.T) {
	in := types.NewInterner()
	e := newEmitter(in, nil)
	if err := e.dump(in.Builtins().Void, "x"); err == nil {
		t.Fatalf("expected error for void")
	}
}

func TestEnumFallsBackToRawValue(t *testing.T) {
	in := types.NewInterner()
	mode := in.Enum("GLenum", []string{"GL_POINTS", "GL_LINES", "GL_POINTS"})
	sigs := sigtable.New("gl")
	e := newEmitter(in, sigs)
	if err := newDeclarator(e).declare(mode); err != nil {
		t.Fatalf("declare: %v", err)
	}
	expectRun(t, e.String(),
		`static const trace::EnumSig sig0 = {0, "GL_POINTS", GL_POINTS};`,
		`static const trace::EnumSig sig1 = {1, "GL_LINES", GL_LINES};`,
		"const trace::EnumSig *sig;",
		"switch (value) {",
		"case GL_POINTS:",
		"sig = &sig0;",
		"break;",
		"case GL_LINES:",
		"sig = &sig1;",
		"break;",
		"default:",
		"trace::localWriter.writeSInt(value);",
		"return;",
		"}",
		"trace::localWriter.writeEnum(sig);",
	)
	if len(sigs.Enums) != 2 {
		t.Fatalf("expected two enum signatures, got %+v", sigs.Enums)
	}
}

func TestEnumSignatureIDsSpanEnums(t *testing.T) {
	in := types.NewInterner()
	a := in.Enum("A", []string{"A0", "A1"})
	b := in.Enum("B", []string{"B0"})
	e := newEmitter(in, nil)
	d := newDeclarator(e)
	for _, id := range []types.TypeID{a, b} {
		if err := d.declare(id); err != nil {
			t.Fatalf("declare: %v", err)
		}
	}
	expectRun(t, e.String(), `static const trace::EnumSig sig0 = {2, "B0", B0};`)
}

func TestBitmaskDeclaresFlagTable(t *testing.T) {
	in := types.NewInterner()
	mask := in.Bitmask(in.Builtins().UInt, []string{"GL_COLOR_BUFFER_BIT", "GL_DEPTH_BUFFER_BIT"})
	tag := in.Tag(mask)
	e := newEmitter(in, nil)
	if err := newDeclarator(e).declare(mask); err != nil {
		t.Fatalf("declare: %v", err)
	}
	expectRun(t, e.String(),
		"static const trace::BitmaskFlag __bitmask"+tag+"_flags[] = {",
		`{"GL_COLOR_BUFFER_BIT", GL_COLOR_BUFFER_BIT},`,
		`{"GL_DEPTH_BUFFER_BIT", GL_DEPTH_BUFFER_BIT},`,
		"};",
		"static const trace::BitmaskSig __bitmask"+tag+"_sig = {",
		"0, 2, __bitmask"+tag+"_flags",
		"};",
	)
}

func TestPolymorphicDispatchGroupsCases(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	poly := in.Polymorphic(b.Int, "pname", []types.PolyCase{
		{Expr: "GL_A", Type: b.Float},
		{Expr: "GL_B", Type: b.Float},
	})
	e := newEmitter(in, nil)
	if err := newDeclarator(e).declare(poly); err != nil {
		t.Fatalf("declare: %v", err)
	}
	expectRun(t, e.String(),
		"switch (selector) {",
		"default:",
		"trace::localWriter.writeSInt(static_cast<int>(value));",
		"break;",
		"case GL_A:",
		"case GL_B:",
		"trace::localWriter.writeFloat(static_cast<float>(value));",
		"break;",
		"}",
	)

	e = newEmitter(in, nil)
	if err := e.dump(poly, "param"); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if got := strings.TrimSpace(e.String()); got != "_write__"+in.Tag(poly)+"(pname, param);" {
		t.Fatalf("unexpected call site %q", got)
	}
}

// comAPI builds IUnknown/IDevice with a factory function returning a device.
func comAPI(in *types.Interner) *types.API {
	b := in.Builtins()
	hresult := in.Alias("HRESULT", b.Long)
	refiid := in.Alias("REFIID", in.Opaque("const IID &"))
	unknown := in.RegisterInterface("IUnknown", types.NoTypeID)
	ppv := in.Pointer(in.OpaquePointer(b.Void))
	in.SetInterfaceMethods(unknown, []types.FuncID{
		in.Method(hresult, "QueryInterface", []types.Arg{types.In(refiid, "riid"), types.Out(ppv, "ppvObj")}),
		in.Method(b.ULong, "AddRef", nil),
		in.Method(b.ULong, "Release", nil),
	})
	dev := in.RegisterInterface("IDevice", unknown)
	pdev := in.Pointer(dev)
	in.SetInterfaceMethods(dev, []types.FuncID{
		in.Method(hresult, "SetParent", []types.Arg{types.In(pdev, "pParent")}),
	})
	api := types.NewAPI("dev")
	api.Headers = []string{"<windows.h>"}
	api.AddInterfaces(unknown, dev)
	api.AddFunctions(in.StdFunction(hresult, "CreateDevice", []types.Arg{
		types.In(b.UInt, "flags"),
		types.Out(in.Pointer(pdev), "ppDevice"),
	}))
	return api
}

func generate(t *testing.T, sigs *sigtable.Table) string {
	t.Helper()
	in := types.NewInterner()
	out, err := Generate(context.Background(), in, comAPI(in), Options{Sigs: sigs})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return out
}

func TestFunctionWrapperFrames(t *testing.T) {
	src := generate(t, nil)
	expectRun(t, src,
		`static const char * __CreateDevice_args[2] = {"flags", "ppDevice"};`,
		`static const trace::FunctionSig __CreateDevice_sig = {8, "CreateDevice", 2, __CreateDevice_args};`,
	)
	expectRun(t, src,
		`extern "C" PUBLIC`,
		"HRESULT __stdcall CreateDevice(unsigned int flags, IDevice * * ppDevice) {",
		"HRESULT __result;",
		"unsigned __call = trace::localWriter.beginEnter(&__CreateDevice_sig);",
		"trace::localWriter.beginArg(0);",
		"trace::localWriter.writeUInt(flags);",
		"trace::localWriter.endArg();",
		"trace::localWriter.endEnter();",
		"__result = __CreateDevice(flags, ppDevice);",
		"trace::localWriter.beginLeave(__call);",
		"trace::localWriter.beginArg(1);",
	)
	expectRun(t, src,
		"if (ppDevice) {",
		"if (*ppDevice) {",
		"*ppDevice = new WrapIDevice(*ppDevice);",
		"}",
		"}",
		"trace::localWriter.beginReturn();",
		"trace::localWriter.writeSInt(__result);",
		"trace::localWriter.endReturn();",
		"trace::localWriter.endLeave();",
		"return __result;",
	)
	if !strings.HasPrefix(src, "#include <windows.h>\n") {
		t.Fatalf("headers not emitted first:\n%s", src)
	}
}

func TestProxyUnwrapsInterfaceArguments(t *testing.T) {
	src := generate(t, nil)
	expectRun(t, src,
		"HRESULT __stdcall WrapIDevice::SetParent(IDevice * pParent) {",
		`static const char * __args[2] = {"this", "pParent"};`,
		`static const trace::FunctionSig __sig = {7, "IDevice::SetParent", 2, __args};`,
		"unsigned __call = trace::localWriter.beginEnter(&__sig);",
		"trace::localWriter.beginArg(0);",
		"trace::localWriter.writeOpaque((const void *)m_pInstance);",
		"trace::localWriter.endArg();",
		"if (pParent) {",
		"pParent = static_cast<WrapIDevice *>(pParent)->m_pInstance;",
		"}",
		"trace::localWriter.beginArg(1);",
	)
}

func TestProxyClassDeclaration(t *testing.T) {
	src := generate(t, nil)
	expectRun(t, src,
		"class WrapIDevice : public IDevice",
		"{",
		"public:",
		"WrapIDevice(IDevice * pInstance);",
		"virtual ~WrapIDevice();",
		"HRESULT __stdcall QueryInterface(REFIID riid, void * * ppvObj);",
		"unsigned long __stdcall AddRef(void);",
		"unsigned long __stdcall Release(void);",
		"HRESULT __stdcall SetParent(IDevice * pParent);",
		"IDevice * m_pInstance;",
		"};",
	)
	expectRun(t, src,
		"WrapIDevice::WrapIDevice(IDevice * pInstance) {",
		"m_pInstance = pInstance;",
		"}",
	)
}

func TestQueryInterfaceAndReleaseHooks(t *testing.T) {
	src := generate(t, nil)
	expectRun(t, src,
		"trace::localWriter.endLeave();",
		"if (ppvObj && *ppvObj) {",
		"if (*ppvObj == m_pInstance) {",
		"*ppvObj = this;",
		"}",
		"else if (riid == IID_IUnknown) {",
		"*ppvObj = new WrapIUnknown((IUnknown *) *ppvObj);",
		"}",
		"else if (riid == IID_IDevice) {",
		"*ppvObj = new WrapIDevice((IDevice *) *ppvObj);",
		"}",
		"}",
		"return __result;",
	)
	expectRun(t, src,
		"trace::localWriter.endLeave();",
		"if (!__result)",
		"delete this;",
		"return __result;",
	)
	if n := strings.Count(src, "delete this;"); n != 2 {
		t.Fatalf("expected Release hook in both proxies, got %d", n)
	}
}

func TestReleaseWithoutResultFails(t *testing.T) {
	in := types.NewInterner()
	iface := in.RegisterInterface("IBroken", types.NoTypeID)
	in.SetInterfaceMethods(iface, []types.FuncID{in.Method(in.Builtins().Void, "Release", nil)})
	api := types.NewAPI("broken")
	api.AddInterfaces(iface)
	if _, err := Generate(context.Background(), in, api, Options{}); err == nil {
		t.Fatalf("expected error for void Release")
	}
}

func TestWrapInterfaceValueIsNotWrappable(t *testing.T) {
	in := types.NewInterner()
	iface := in.RegisterInterface("IThing", types.NoTypeID)
	e := newEmitter(in, nil)
	if err := e.wrap(iface, "thing"); !errors.Is(err, ErrNotWrappable) {
		t.Fatalf("expected ErrNotWrappable, got %v", err)
	}
	if err := e.wrap(in.Builtins().Void, "x"); !errors.Is(err, ErrNotWrappable) {
		t.Fatalf("expected ErrNotWrappable for void, got %v", err)
	}
}

func TestWrapSkipsPointersWithoutInterfaces(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	e := newEmitter(in, nil)
	if err := e.wrap(in.Pointer(in.Pointer(b.Int)), "pp"); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	arr := in.Array(in.Pointer(in.RegisterInterface("IThing", types.NoTypeID)), "n")
	if err := e.wrap(arr, "things"); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if e.String() != "" {
		t.Fatalf("expected no output, got %q", e.String())
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, second := generate(t, nil), generate(t, nil)
	if first != second {
		t.Fatalf("two runs differ")
	}
}

func TestGenerateRecordsSignatures(t *testing.T) {
	sigs := sigtable.New("dev")
	generate(t, sigs)
	if _, ok := sigs.Function("CreateDevice"); !ok {
		t.Fatalf("CreateDevice signature not recorded")
	}
	sig, ok := sigs.Function("IDevice::SetParent")
	if !ok || !slices.Equal(sig.Args, []string{"this", "pParent"}) {
		t.Fatalf("IDevice::SetParent = %+v, %v", sig, ok)
	}
}

func TestPrivateLinkageAndPrefix(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	api := types.NewAPI("gl")
	api.AddFunctions(in.Function(b.Void, "glFlush", nil))
	src, err := Generate(context.Background(), in, api, Options{
		DispatchPrefix: "_real_",
		IsPublic:       func(string) bool { return false },
		Header:         "// header",
		Footer:         "// footer",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expectRun(t, src,
		`extern "C" PRIVATE`,
		"void glFlush(void) {",
		"unsigned __call = trace::localWriter.beginEnter(&__glFlush_sig);",
		"trace::localWriter.endEnter();",
		"_real_glFlush();",
		"trace::localWriter.beginLeave(__call);",
		"trace::localWriter.endLeave();",
		"}",
	)
	expectRun(t, src, "static const char ** __glFlush_args = NULL;")
	if !strings.HasPrefix(src, "// header\n") || !strings.HasSuffix(src, "// footer\n") {
		t.Fatalf("header/footer missing:\n%s", src)
	}
}
