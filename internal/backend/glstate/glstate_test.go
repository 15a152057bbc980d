package glstate

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"tracegen/internal/inflect"
	"tracegen/internal/types"
)

func trimmed(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func expectRun(t *testing.T, src string, want ...string) {
	t.Helper()
	lines := trimmed(src)
	for i := 0; i+len(want) <= len(lines); i++ {
		if slices.Equal(lines[i:i+len(want)], want) {
			return
		}
	}
	t.Fatalf("generated code lacks\n%s\n--- got ---\n%s", strings.Join(want, "\n"), src)
}

type glTypes struct {
	boolean, integer, float, enum types.TypeID
	ubyteString                   types.TypeID
}

func newGLTypes(in *types.Interner) glTypes {
	b := in.Builtins()
	return glTypes{
		boolean:     in.Alias("GLboolean", b.Bool),
		integer:     in.Alias("GLint", b.Int),
		float:       in.Alias("GLfloat", b.Float),
		enum:        in.FakeEnum(in.Alias("GLenum", b.UInt), []string{"GL_BACK", "GL_FRONT", "GL_MODULATE", "GL_BACK"}),
		ubyteString: in.String("const GLubyte *", "", types.StrNarrow),
	}
}

func glConfig(in *types.Interner) *Config {
	gl := newGLTypes(in)
	return &Config{
		Includes: []string{"glproc.hpp", "<json.hpp>"},
		Enum:     gl.enum,
		Params: []Param{
			{Name: "GL_CULL_FACE", Getters: []string{"glGet"}, Type: gl.boolean},
			{Name: "GL_CULL_FACE_MODE", Getters: []string{"glGet"}, Type: gl.enum},
			{Name: "GL_VENDOR", Getters: []string{"glGet"}, Type: gl.ubyteString},
			{Name: "GL_COLOR_CLEAR_VALUE", Getters: []string{"glGet"}, Type: in.Array(gl.float, "4")},
			{Name: "GL_MAX_LIGHTS", Getters: []string{"glGet"}, Type: gl.integer},
			{Name: "GL_UNQUERIED", Getters: []string{"glGet"}},
			{Name: "GL_AMBIENT", Getters: []string{"glGetLight"}, Type: in.Array(gl.float, "4")},
			{Name: "GL_SPOT_EXPONENT", Getters: []string{"glGetLight"}, Type: gl.float},
			{Name: "GL_TEXTURE_ENV_MODE", Getters: []string{"glGetTexEnv"}, Type: gl.enum},
		},
		Getters: []*inflect.Inflector{
			inflect.New("glGet", map[inflect.ValueKind]string{
				inflect.Bool:    "Booleanv",
				inflect.Int:     "Integerv",
				inflect.Float:   "Floatv",
				inflect.Double:  "Doublev",
				inflect.String:  "String",
				inflect.Pointer: "Pointerv",
			}, ""),
			inflect.New("glGetLight", map[inflect.ValueKind]string{inflect.Int: "iv", inflect.Float: "fv"}, ""),
			inflect.New("glGetTexEnv", map[inflect.ValueKind]string{inflect.Int: "iv", inflect.Float: "fv"}, ""),
		},
		Root: "glGet",
		Sections: []Section{
			{Name: "GL_TEXTURE_ENV", Getter: "glGetTexEnv", Args: []string{"GL_TEXTURE_ENV"}},
			{
				Name:   "GL_LIGHT%i",
				Getter: "glGetLight",
				Args:   []string{"light_enum"},
				Guard:  "glIsEnabled(light_enum)",
				Loop:   &Loop{Var: "light", Bound: "GL_MAX_LIGHTS", Base: "GL_LIGHT0"},
			},
		},
		ErrorCheck:  "glGetError() != GL_NO_ERROR",
		Prefix:      "GL_",
		BoundGetter: "glGetIntegerv",
	}
}

func generate(t *testing.T, in *types.Interner, cfg *Config) string {
	t.Helper()
	src, err := Generate(context.Background(), in, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return src
}

func TestScalarGettersUseInflectedAccessors(t *testing.T) {
	in := types.NewInterner()
	src := generate(t, in, glConfig(in))
	expectRun(t, src,
		"// GL_CULL_FACE",
		"{",
		"GLboolean cull_face = 0;",
		"glGetBooleanv(GL_CULL_FACE, &cull_face);",
		"if (glGetError() != GL_NO_ERROR) {",
		"} else {",
		`json.beginMember("GL_CULL_FACE");`,
		"json.writeBool(cull_face);",
		"json.endMember();",
		"}",
		"}",
	)
	// enums reduce to the integer accessor and print by name
	expectRun(t, src,
		"GLint cull_face_mode = 0;",
		"glGetIntegerv(GL_CULL_FACE_MODE, &cull_face_mode);",
	)
	expectRun(t, src, "dumpEnum(json, cull_face_mode);")
	expectRun(t, src, "json.writeNumber(max_lights);")
}

func TestStringGetterCastsReturnValue(t *testing.T) {
	in := types.NewInterner()
	src := generate(t, in, glConfig(in))
	expectRun(t, src,
		"const GLubyte * vendor = (const GLubyte *)glGetString(GL_VENDOR);",
		"if (glGetError() != GL_NO_ERROR) {",
		"} else {",
		`json.beginMember("GL_VENDOR");`,
		"json.writeString((const char *)vendor);",
	)
}

func TestArrayGetterFillsZeroedBuffer(t *testing.T) {
	in := types.NewInterner()
	src := generate(t, in, glConfig(in))
	expectRun(t, src,
		"GLfloat color_clear_value[4];",
		"memset(color_clear_value, 0, 4 * sizeof *color_clear_value);",
		"glGetFloatv(GL_COLOR_CLEAR_VALUE, color_clear_value);",
	)
	expectRun(t, src,
		"json.beginArray();",
		"for (unsigned __i0 = 0; __i0 < 4; ++__i0) {",
		"json.writeNumber(color_clear_value[__i0]);",
		"}",
		"json.endArray();",
	)
}

func TestUntypedParamsAreSkipped(t *testing.T) {
	in := types.NewInterner()
	src := generate(t, in, glConfig(in))
	if strings.Contains(src, "GL_UNQUERIED") {
		t.Fatalf("parameter without a type was dumped:\n%s", src)
	}
}

func TestSectionsNestObjects(t *testing.T) {
	in := types.NewInterner()
	src := generate(t, in, glConfig(in))
	expectRun(t, src,
		"{",
		`json.beginMember("GL_TEXTURE_ENV");`,
		"json.beginObject();",
		"// GL_TEXTURE_ENV_MODE",
		"{",
		"GLint texture_env_mode = 0;",
		"glGetTexEnviv(GL_TEXTURE_ENV, GL_TEXTURE_ENV_MODE, &texture_env_mode);",
	)
	expectRun(t, src,
		"GLint max_lights = 0;",
		"glGetIntegerv(GL_MAX_LIGHTS, &max_lights);",
		"if (glGetError() != GL_NO_ERROR) {",
		"max_lights = 0;",
		"}",
		"for (GLint light = 0; light < max_lights; ++light) {",
		"GLenum light_enum = GL_LIGHT0 + light;",
		"if (glIsEnabled(light_enum)) {",
		"char name[64];",
		`snprintf(name, sizeof name, "GL_LIGHT%i", light);`,
		"json.beginMember(name);",
		"json.beginObject();",
		"// GL_AMBIENT",
	)
	expectRun(t, src,
		"GLfloat spot_exponent = 0;",
		"glGetLightfv(light_enum, GL_SPOT_EXPONENT, &spot_exponent);",
	)
	// light parameters stay out of the root object
	if strings.Contains(src, "glGetFloatv(GL_SPOT_EXPONENT") {
		t.Fatalf("light parameter queried through the root family")
	}
}

func TestEnumToStringDeduplicatesValues(t *testing.T) {
	in := types.NewInterner()
	src := generate(t, in, glConfig(in))
	if n := strings.Count(src, "case GL_BACK:"); n != 1 {
		t.Fatalf("GL_BACK cases = %d, want 1", n)
	}
	expectRun(t, src,
		"const char *",
		"enumToString(GLenum pname)",
		"{",
		"switch (pname) {",
		"case GL_BACK:",
		`return "GL_BACK";`,
	)
	expectRun(t, src,
		"const char *s = enumToString(pname);",
		"if (s) {",
		"json.writeString(s);",
		"} else {",
		"json.writeNumber(pname);",
		"}",
	)
}

func TestLengthOneArrayDegradesToScalar(t *testing.T) {
	in := types.NewInterner()
	cfg := glConfig(in)
	arr, _ := in.ArrayInfo(cfg.Params[3].Type)
	cfg.Params = append(cfg.Params, Param{Name: "GL_LINE_WIDTH", Getters: []string{"glGet"}, Type: in.Array(arr.Elem, "1")})
	src := generate(t, in, cfg)
	expectRun(t, src,
		"GLfloat line_width = 0;",
		"glGetFloatv(GL_LINE_WIDTH, &line_width);",
	)
	expectRun(t, src,
		`json.beginMember("GL_LINE_WIDTH");`,
		"json.writeNumber(line_width);",
		"json.endMember();",
	)
	if strings.Contains(src, "line_width[0]") {
		t.Fatalf("scalar temporary line_width is indexed:\n%s", src)
	}
}

func TestMissingInflectionFails(t *testing.T) {
	in := types.NewInterner()
	cfg := glConfig(in)
	cfg.Params = append(cfg.Params, Param{
		Name:    "GL_SPOT_POINTER",
		Getters: []string{"glGetLight"},
		Type:    in.OpaquePointer(in.Builtins().Void),
	})
	_, err := Generate(context.Background(), in, cfg)
	if !errors.Is(err, inflect.ErrNoInflection) {
		t.Fatalf("err = %v, want ErrNoInflection", err)
	}
}

func TestStructStateIsRejected(t *testing.T) {
	in := types.NewInterner()
	cfg := glConfig(in)
	pt := in.Struct("Point", []types.Member{{Type: in.Builtins().Int, Name: "x"}})
	cfg.Params = append(cfg.Params, Param{Name: "GL_POINT", Getters: []string{"glGet"}, Type: pt})
	if _, err := Generate(context.Background(), in, cfg); err == nil {
		t.Fatalf("expected an error for struct state")
	}
}

func TestValidateReportsUnknownFamiliesAndAccessors(t *testing.T) {
	in := types.NewInterner()
	cfg := glConfig(in)
	cfg.Root = "glGetNothing"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "glGetNothing") {
		t.Fatalf("Validate = %v, want unknown root family", err)
	}

	cfg = glConfig(in)
	cfg.Known = map[string]bool{}
	for _, g := range cfg.Getters {
		for k := range g.Inflections {
			name, _ := g.Inflect(k)
			cfg.Known[name] = true
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with full table: %v", err)
	}
	delete(cfg.Known, "glGetLightfv")
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "glGetLightfv") {
		t.Fatalf("Validate = %v, want glGetLightfv reported", err)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := types.NewInterner()
	b := types.NewInterner()
	if generate(t, a, glConfig(a)) != generate(t, b, glConfig(b)) {
		t.Fatalf("two runs over the same description differ")
	}
}
