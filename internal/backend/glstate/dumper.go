// Package glstate emits the C++ state snapshot code of a getter-based API:
// for every known parameter it queries the value through the right accessor
// of a getter family and writes it as a JSON member.
package glstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"tracegen/internal/inflect"
	"tracegen/internal/trace"
	"tracegen/internal/types"
)

// Param is one row of the parameter table.
type Param struct {
	Name string
	// Getters lists the families that accept this parameter, by family name
	// (radical plus suffix, e.g. "glGetTexParameter").
	Getters []string
	// Type is the value type; arrays are already built for counts above
	// one. types.NoTypeID marks a parameter that is never queried.
	Type types.TypeID
}

// Section dumps the parameters of one getter family as a nested object.
type Section struct {
	// Name is the JSON member name; inside a loop it is a printf pattern
	// receiving the loop index (e.g. "GL_LIGHT%i").
	Name   string
	Getter string
	// Args precede the parameter name in each accessor call.
	Args []string
	// Guard, when set, is a C expression that must hold for the section to
	// be dumped.
	Guard string
	Loop  *Loop
}

// Loop repeats a section for index in [0, bound).
type Loop struct {
	Var string
	// Bound is a parameter name whose integer value is the loop bound.
	Bound string
	// Base is added to the index to form the enum handed to the accessors
	// (e.g. "GL_LIGHT0"); empty means the raw index is used.
	Base string
}

// Config describes the state of one API.
type Config struct {
	Namespace string
	Includes  []string
	// Enum is the enumeration whose values are named by enumToString.
	Enum types.TypeID
	// Params is the parameter table, in dump order.
	Params []Param
	// Getters are the accessor families, keyed by family name.
	Getters []*inflect.Inflector
	// Root is the family whose parameters form the top level object.
	Root     string
	Sections []Section
	// ErrorCheck is a C condition that holds when the last query failed;
	// the value is then skipped.
	ErrorCheck string
	// Prefix is stripped from parameter names to form temporaries.
	Prefix string
	// BoundGetter returns an integer bound (e.g. "glGetIntegerv").
	BoundGetter string
	// Spellings maps each reduced value kind to the C type of its
	// temporaries.
	Spellings map[inflect.ValueKind]string
	// Known, when set, is the table of exported accessors every family is
	// validated against.
	Known map[string]bool
}

// DefaultSpellings are the OpenGL scalar types.
var DefaultSpellings = map[inflect.ValueKind]string{
	inflect.Bool:    "GLboolean",
	inflect.Int:     "GLint",
	inflect.Enum:    "GLenum",
	inflect.Float:   "GLfloat",
	inflect.Double:  "GLdouble",
	inflect.String:  "const GLubyte *",
	inflect.Pointer: "GLvoid *",
}

func (c *Config) spelling(k inflect.ValueKind) string {
	if s, ok := c.Spellings[k]; ok {
		return s
	}
	return DefaultSpellings[k]
}

func (c *Config) family(name string) *inflect.Inflector {
	for _, g := range c.Getters {
		if g.String() == name {
			return g
		}
	}
	return nil
}

// Validate checks that every referenced family exists and, when Known is
// set, that every accessor it can produce is exported.
func (c *Config) Validate() error {
	var errs []error
	if c.family(c.Root) == nil {
		errs = append(errs, fmt.Errorf("root getter family %q is not declared", c.Root))
	}
	for _, s := range c.Sections {
		if c.family(s.Getter) == nil {
			errs = append(errs, fmt.Errorf("section %s: getter family %q is not declared", s.Name, s.Getter))
		}
		if s.Loop != nil && c.BoundGetter == "" {
			errs = append(errs, fmt.Errorf("section %s: loops need a bound getter", s.Name))
		}
	}
	if c.Known != nil {
		for _, g := range c.Getters {
			if err := g.Validate(c.Known); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

type dumper struct {
	in    *types.Interner
	cfg   *Config
	e     *emitter
	index int
}

func (d *dumper) tempName(pname string) string {
	name := strings.TrimPrefix(pname, d.cfg.Prefix)
	return strings.ToLower(name)
}

func (d *dumper) nextIndex() string {
	name := "__i" + strconv.Itoa(d.index)
	d.index++
	return name
}

// Generate emits the state dumping unit described by cfg.
func Generate(ctx context.Context, in *types.Interner, cfg *Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "glstate"
	}
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeUnit, "glstate/generate", trace.CurrentSpan(ctx).SpanID)
	d := &dumper{in: in, cfg: cfg, e: &emitter{}}
	if err := d.run(); err != nil {
		span.End("failed")
		return "", err
	}
	span.WithExtra("params", strconv.Itoa(len(cfg.Params))).End("")
	return d.e.String(), nil
}

func (d *dumper) run() error {
	e := d.e
	e.raw("#include <string.h>")
	e.raw("#include <stdio.h>")
	e.blank()
	for _, inc := range d.cfg.Includes {
		if strings.HasPrefix(inc, "<") {
			e.raw("#include %s", inc)
		} else {
			e.raw("#include %q", inc)
		}
	}
	e.blank()
	e.raw("namespace %s {", d.cfg.Namespace)
	e.blank()

	if d.cfg.Enum != types.NoTypeID {
		if err := d.enumToString(); err != nil {
			return err
		}
		d.dumpEnum()
	}

	e.raw("void")
	e.raw("dumpParameters(JSONWriter &json)")
	e.raw("{")
	e.depth++
	e.line(`json.beginMember("parameters");`)
	e.line("json.beginObject();")
	e.blank()
	if err := d.atoms(d.cfg.Root, nil); err != nil {
		return err
	}
	for _, s := range d.cfg.Sections {
		if err := d.section(s); err != nil {
			return fmt.Errorf("section %s: %w", s.Name, err)
		}
	}
	e.line("json.endObject();")
	e.line("json.endMember(); // parameters")
	e.depth--
	e.raw("}")
	e.blank()
	e.raw("} /*namespace %s */", d.cfg.Namespace)
	return nil
}

func (d *dumper) enumToString() error {
	info, ok := d.in.EnumInfo(d.cfg.Enum)
	if !ok {
		return fmt.Errorf("%s is not an enum", d.in.Expr(d.cfg.Enum))
	}
	e := d.e
	e.raw("const char *")
	e.raw("enumToString(%s pname)", info.Name)
	e.raw("{")
	e.depth++
	e.line("switch (pname) {")
	seen := make(map[string]bool, len(info.Values))
	for _, v := range info.Values {
		if seen[v] {
			continue
		}
		seen[v] = true
		e.line("case %s:", v)
		e.depth++
		e.line("return %q;", v)
		e.depth--
	}
	e.line("default:")
	e.depth++
	e.line("return NULL;")
	e.depth--
	e.line("}")
	e.depth--
	e.raw("}")
	e.blank()
	return nil
}

func (d *dumper) dumpEnum() {
	e := d.e
	info, _ := d.in.EnumInfo(d.cfg.Enum)
	e.raw("static void")
	e.raw("dumpEnum(JSONWriter &json, %s pname)", info.Name)
	e.raw("{")
	e.depth++
	e.line("const char *s = enumToString(pname);")
	e.open("if (s) {")
	e.line("json.writeString(s);")
	e.close("} else {")
	e.depth++
	e.line("json.writeNumber(pname);")
	e.close("}")
	e.depth--
	e.raw("}")
	e.blank()
}

// atoms emits one block per parameter accepted by the family.
func (d *dumper) atoms(family string, args []string) error {
	infl := d.cfg.family(family)
	g := getter{d: d, infl: infl}
	w := jsonWriter{d: d}
	e := d.e
	for _, p := range d.cfg.Params {
		if p.Type == types.NoTypeID || !slices.Contains(p.Getters, family) {
			continue
		}
		q := query{args: args, pname: p.Name}
		e.line("// %s", p.Name)
		e.open("{")
		if err := g.get(p.Type, q); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
		if d.cfg.ErrorCheck != "" {
			e.line("if (%s) {", d.cfg.ErrorCheck)
			e.line("} else {")
			e.depth++
		}
		e.line("json.beginMember(%q);", p.Name)
		if err := w.write(p.Type, d.tempName(p.Name)); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
		e.line("json.endMember();")
		if d.cfg.ErrorCheck != "" {
			e.close("}")
		}
		e.close("}")
		e.blank()
	}
	return nil
}

func (d *dumper) section(s Section) error {
	e := d.e
	if s.Loop == nil {
		if s.Guard != "" {
			e.open("if (%s) {", s.Guard)
		} else {
			e.open("{")
		}
		e.line("json.beginMember(%q);", s.Name)
		if err := d.object(s, s.Args); err != nil {
			return err
		}
		e.line("json.endMember();")
		e.close("}")
		e.blank()
		return nil
	}

	l := s.Loop
	bound := d.tempName(l.Bound)
	e.open("{")
	e.line("GLint %s = 0;", bound)
	e.line("%s(%s, &%s);", d.cfg.BoundGetter, l.Bound, bound)
	if d.cfg.ErrorCheck != "" {
		e.open("if (%s) {", d.cfg.ErrorCheck)
		e.line("%s = 0;", bound)
		e.close("}")
	}
	e.open("for (GLint %s = 0; %s < %s; ++%s) {", l.Var, l.Var, bound, l.Var)
	if l.Base != "" {
		e.line("GLenum %s_enum = %s + %s;", l.Var, l.Base, l.Var)
	}
	if s.Guard != "" {
		e.open("if (%s) {", s.Guard)
	} else {
		e.open("{")
	}
	e.line("char name[64];")
	e.line("snprintf(name, sizeof name, %q, %s);", s.Name, l.Var)
	e.line("json.beginMember(name);")
	if err := d.object(s, s.Args); err != nil {
		return err
	}
	e.line("json.endMember();")
	e.close("}")
	e.close("}")
	e.close("}")
	e.blank()
	return nil
}

func (d *dumper) object(s Section, args []string) error {
	d.e.line("json.beginObject();")
	if err := d.atoms(s.Getter, args); err != nil {
		return err
	}
	d.e.line("json.endObject();")
	return nil
}
