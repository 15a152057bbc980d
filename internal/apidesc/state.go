package apidesc

import (
	"fmt"
	"strconv"

	"tracegen/internal/backend/glstate"
	"tracegen/internal/diag"
	"tracegen/internal/inflect"
	"tracegen/internal/types"
)

// state turns the [state] table into a snapshot configuration. It returns
// nil when the table has errors.
func (b *builder) state(d *stateDecl, api *types.API) *glstate.Config {
	ok := true
	bad := func(key, format string, args ...any) {
		b.errorf(diag.DscBadState, "state."+key, format, args...)
		ok = false
	}

	cfg := &glstate.Config{
		Namespace:   d.Namespace,
		Includes:    d.Includes,
		Root:        d.Root,
		ErrorCheck:  d.ErrorCheck,
		Prefix:      d.Prefix,
		BoundGetter: d.BoundGetter,
	}

	if d.Enum == "" {
		bad("enum", "missing enum type")
	} else if id, found := b.ref("state.enum", d.Enum); found {
		if b.in.KindOf(id) != types.KindEnum {
			bad("enum", "%s is a %s, not an enum", d.Enum, b.in.KindOf(id))
		}
		cfg.Enum = id
	} else {
		ok = false
	}

	if len(d.Spellings) > 0 {
		cfg.Spellings = make(map[inflect.ValueKind]string, len(d.Spellings))
		for k, spelling := range d.Spellings {
			kind, err := inflect.ParseValueKind(k)
			if err != nil {
				b.errorf(diag.DscBadValueKind, "state.spellings."+k, "%v", err)
				ok = false
				continue
			}
			cfg.Spellings[kind] = spelling
		}
	}

	for i, g := range d.Getters {
		key := fmt.Sprintf("getter[%d]", i)
		if g.Radical == "" {
			bad(key+".radical", "getter family without a radical")
			continue
		}
		infl := make(map[inflect.ValueKind]string, len(g.Inflections))
		for k, v := range g.Inflections {
			kind, err := inflect.ParseValueKind(k)
			if err != nil {
				b.errorf(diag.DscBadValueKind, "state."+key+".inflections."+k, "%v", err)
				ok = false
				continue
			}
			infl[kind] = v
		}
		cfg.Getters = append(cfg.Getters, inflect.New(g.Radical, infl, g.Suffix))
	}

	for i, p := range d.Params {
		key := fmt.Sprintf("param[%d]", i)
		if p.Name == "" {
			bad(key+".name", "parameter without a name")
			continue
		}
		param := glstate.Param{Name: p.Name, Getters: p.Getters}
		if p.Type != "" && p.Type != "X" {
			t, found := b.ref("state."+key+".type", p.Type)
			if !found {
				ok = false
				continue
			}
			if p.Count > 1 {
				t = b.in.Array(t, strconv.Itoa(p.Count))
			}
			param.Type = t
		}
		cfg.Params = append(cfg.Params, param)
	}

	for _, s := range d.Sections {
		sec := glstate.Section{Name: s.Name, Getter: s.Getter, Args: s.Args, Guard: s.Guard}
		if s.Loop != nil {
			sec.Loop = &glstate.Loop{Var: s.Loop.Var, Bound: s.Loop.Bound, Base: s.Loop.Base}
			if s.Loop.Var == "" || s.Loop.Bound == "" {
				bad("section."+s.Name+".loop", "loops need var and bound")
			}
		}
		cfg.Sections = append(cfg.Sections, sec)
	}

	if d.Validate {
		cfg.Known = make(map[string]bool, len(api.Functions))
		for _, fn := range api.Functions {
			cfg.Known[b.in.MustFunc(fn).Name] = true
		}
	}
	if !ok {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		bad("getter", "%v", err)
		return nil
	}
	return cfg
}
