package types

import (
	"errors"
	"slices"
	"testing"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Int == NoTypeID || b.CString == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if k := in.KindOf(b.Void); k != KindVoid {
		t.Fatalf("expected void kind, got %v", k)
	}
	info, ok := in.LiteralInfo(b.Int)
	if !ok || info.Kind != LitSInt {
		t.Fatalf("int should be a signed literal, got %+v", info)
	}
	if got := in.Expr(b.CString); got != "char *" {
		t.Fatalf("unexpected string spelling %q", got)
	}
	if id, ok := b.ByName("unsigned int"); !ok || id != b.UInt {
		t.Fatalf("ByName(unsigned int) = %v, %v", id, ok)
	}
}

func TestTagCollisionsGetIncreasingSuffixes(t *testing.T) {
	in := NewInterner()
	a := in.Struct("Foo", nil)
	b := in.Alias("Foo", in.Builtins().Int)
	c := in.Enum("Foo", []string{"FOO_A"})
	got := []string{in.Tag(a), in.Tag(b), in.Tag(c)}
	want := []string{"Foo", "Foo1", "Foo2"}
	if !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
}

func TestTagSuffixSkipsTakenNames(t *testing.T) {
	in := NewInterner()
	in.Struct("Bar1", nil)
	in.Struct("Bar", nil)
	second := in.Struct("Bar", nil)
	if tag := in.Tag(second); tag != "Bar2" {
		t.Fatalf("expected Bar2, got %q", tag)
	}
}

func TestTagsArePairwiseDistinct(t *testing.T) {
	in := NewInterner()
	i := in.Builtins().Int
	for range 5 {
		p := in.Pointer(i)
		in.Const(p)
		in.Array(i, "n")
	}
	seen := make(map[string]TypeID)
	for id := TypeID(1); int(id) < in.Len(); id++ {
		tag := in.Tag(id)
		if prev, ok := seen[tag]; ok {
			t.Fatalf("tag %q used by %d and %d", tag, prev, id)
		}
		seen[tag] = id
	}
}

func TestDerivedTagDropsPunctuation(t *testing.T) {
	in := NewInterner()
	id := in.Opaque("const void *")
	if tag := in.Tag(id); tag != "constvoid" {
		t.Fatalf("unexpected tag %q", tag)
	}
}

func TestExplicitTagAppliesToNextTypeOnly(t *testing.T) {
	in := NewInterner()
	if err := in.UseTag("Hwnd"); err != nil {
		t.Fatalf("UseTag: %v", err)
	}
	h := in.Opaque("HWND")
	again := in.Opaque("HWND")
	if in.Tag(h) != "Hwnd" || in.Tag(again) != "HWND" {
		t.Fatalf("tags = %q, %q", in.Tag(h), in.Tag(again))
	}
	var tagErr *TagError
	if err := in.UseTag("bad tag"); !errors.As(err, &tagErr) {
		t.Fatalf("UseTag(bad tag) = %v, want *TagError", err)
	}
	// a rejected tag leaves nothing pending
	if x := in.Opaque("HDC"); in.Tag(x) != "HDC" {
		t.Fatalf("tag = %q, want HDC", in.Tag(x))
	}
}

func TestUnrenderableSpellingPanicsWithTagError(t *testing.T) {
	in := NewInterner()
	defer func() {
		r := recover()
		err, ok := r.(error)
		var tagErr *TagError
		if !ok || !errors.As(err, &tagErr) {
			t.Fatalf("expected *TagError panic, got %v", r)
		}
	}()
	in.Opaque("***")
}

func TestValidateTag(t *testing.T) {
	cases := []struct {
		tag string
		ok  bool
	}{
		{"GLenum", true},
		{"_x1", true},
		{"", false},
		{"a b", false},
		{"a-b", false},
	}
	for _, tc := range cases {
		err := ValidateTag(tc.tag)
		if (err == nil) != tc.ok {
			t.Fatalf("ValidateTag(%q) = %v", tc.tag, err)
		}
	}
}

func TestConstSpelling(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		elem TypeID
		want string
	}{
		{b.Int, "const int"},
		{b.CString, "const char *"},
		{in.Pointer(b.Int), "int * const"},
		{in.Const(b.Float), "const float const"},
	}
	for _, tc := range cases {
		if got := in.Expr(in.Const(tc.elem)); got != tc.want {
			t.Fatalf("Const(%q) = %q, want %q", in.Expr(tc.elem), got, tc.want)
		}
	}
}

func TestConstAndPointerTags(t *testing.T) {
	in := NewInterner()
	p := in.ConstPointer(in.Builtins().Float)
	if tag := in.Tag(p); tag != "PCfloat" {
		t.Fatalf("unexpected tag %q", tag)
	}
	if expr := in.Expr(p); expr != "const float *" {
		t.Fatalf("unexpected spelling %q", expr)
	}
}

func TestInternersAreDeterministic(t *testing.T) {
	build := func() *Interner {
		in := NewInterner()
		b := in.Builtins()
		pt := in.Struct("Point", []Member{{Type: b.Int, Name: "x"}, {Type: b.Int, Name: "y"}})
		in.Enum("Mode", []string{"MODE_A", "MODE_B"})
		in.Bitmask(b.UInt, []string{"FLAG_A"})
		in.Function(b.Void, "draw", []Arg{In(in.Pointer(pt), "p")})
		return in
	}
	a, b := build(), build()
	if a.Len() != b.Len() {
		t.Fatalf("arena sizes differ: %d vs %d", a.Len(), b.Len())
	}
	for id := TypeID(1); int(id) < a.Len(); id++ {
		if a.MustLookup(id) != b.MustLookup(id) {
			t.Fatalf("type %d differs: %+v vs %+v", id, a.MustLookup(id), b.MustLookup(id))
		}
	}
}

func TestCountersAreMonotonic(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	s1 := in.Struct("A", nil)
	s2 := in.Struct("B", nil)
	e1 := in.Enum("E1", nil)
	e2 := in.Enum("E2", nil)
	si1, _ := in.StructInfo(s1)
	si2, _ := in.StructInfo(s2)
	ei1, _ := in.EnumInfo(e1)
	ei2, _ := in.EnumInfo(e2)
	if si2.ID != si1.ID+1 || ei2.ID != ei1.ID+1 {
		t.Fatalf("ids not sequential: structs %d,%d enums %d,%d", si1.ID, si2.ID, ei1.ID, ei2.ID)
	}
	f := in.Function(b.Void, "first", nil)
	if got := in.MustFunc(f).ID; got != 4 {
		t.Fatalf("first function id = %d, want 4", got)
	}
	if a, c := in.NextEnumSigID(), in.NextEnumSigID(); c != a+1 {
		t.Fatalf("enum sig ids not sequential: %d, %d", a, c)
	}
}

func TestMethodArgumentIndicesStartAtOne(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	m := in.Method(b.Int, "SetValue", []Arg{In(b.Int, "value"), Out(in.Pointer(b.Int), "")})
	info := in.MustFunc(m)
	if !info.Method || info.Call != "__stdcall" {
		t.Fatalf("unexpected method info %+v", info)
	}
	if info.Args[0].Index != 1 || info.Args[1].Index != 2 {
		t.Fatalf("unexpected indices %d, %d", info.Args[0].Index, info.Args[1].Index)
	}
	if info.Args[1].Name != "arg1" || !info.Args[1].Output {
		t.Fatalf("unexpected second arg %+v", info.Args[1])
	}
}

func TestPrototype(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	f := in.StdFunction(b.Int, "Compute", []Arg{In(b.Float, "a"), In(in.Pointer(b.Int), "out")})
	if got := in.Prototype(f, ""); got != "int __stdcall Compute(float a, int * out)" {
		t.Fatalf("unexpected prototype %q", got)
	}
	v := in.Function(b.Void, "glFlush", nil)
	if got := in.Prototype(v, ""); got != "void glFlush(void)" {
		t.Fatalf("unexpected prototype %q", got)
	}
	if got := in.Prototype(v, " *PFNGLFLUSH "); got != "void (*PFNGLFLUSH)(void)" {
		t.Fatalf("unexpected pointer declarator %q", got)
	}
}

func TestInterfaceMethodsIncludeBaseFirst(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	unknown := in.RegisterInterface("IUnknown", NoTypeID)
	release := in.Method(b.ULong, "Release", nil)
	in.SetInterfaceMethods(unknown, []FuncID{release})
	dev := in.RegisterInterface("IDevice", unknown)
	present := in.Method(b.Int, "Present", nil)
	in.SetInterfaceMethods(dev, []FuncID{present})

	got := in.Methods(dev)
	if !slices.Equal(got, []FuncID{release, present}) {
		t.Fatalf("methods = %v", got)
	}
	info, _ := in.InterfaceInfo(dev)
	if len(info.Methods) != 1 {
		t.Fatalf("own methods should not include the base's: %v", info.Methods)
	}
}

func TestPolymorphicGroups(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	p := in.Polymorphic(b.Int, "pname", []PolyCase{
		{Expr: "GL_A", Type: b.Float},
		{Expr: "GL_B", Type: b.Int},
		{Expr: "GL_C", Type: b.Float},
	})
	info, _ := in.PolymorphicInfo(p)
	groups := info.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected two arms, got %+v", groups)
	}
	if !slices.Equal(groups[0].Labels, []string{"default", "case GL_B"}) || groups[0].Type != b.Int {
		t.Fatalf("unexpected default arm %+v", groups[0])
	}
	if !slices.Equal(groups[1].Labels, []string{"case GL_A", "case GL_C"}) || groups[1].Type != b.Float {
		t.Fatalf("unexpected float arm %+v", groups[1])
	}
}

func TestAPIFunctionByName(t *testing.T) {
	in := NewInterner()
	api := NewAPI("gl")
	f := in.Function(in.Builtins().Void, "glFinish", nil)
	api.AddFunctions(f)
	other := NewAPI("ext")
	g := in.Function(in.Builtins().Void, "glFlush", nil)
	other.AddFunctions(g)
	api.AddAPI(other)
	if id, ok := api.FunctionByName(in, "glFlush"); !ok || id != g {
		t.Fatalf("FunctionByName(glFlush) = %v, %v", id, ok)
	}
	if _, ok := api.FunctionByName(in, "missing"); ok {
		t.Fatalf("unexpected match")
	}
}
