package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tracegen/internal/apidesc"
	"tracegen/internal/backend/cxx"
	"tracegen/internal/backend/glstate"
	"tracegen/internal/diag"
	"tracegen/internal/inflect"
	"tracegen/internal/observ"
	"tracegen/internal/project"
	"tracegen/internal/sigtable"
	"tracegen/internal/trace"
	"tracegen/internal/types"
	"tracegen/internal/walk"
)

// Unit is one description and what was generated from it.
type Unit struct {
	Name  string
	Input string
	Bag   *diag.Bag
	// Source is the interception unit, State the snapshot unit (empty when
	// not requested or the description has no [state] table).
	Source string
	State  string
	Sigs   *sigtable.Table
	Digest project.Digest
	// Types is the size of the reachable type set.
	Types   int
	Outputs []string
	Timer   *observ.Timer

	rep diag.Reporter
}

func newUnit(path string, maxDiagnostics int) *Unit {
	u := &Unit{
		Name:  project.UnitName(path),
		Input: path,
		Bag:   diag.NewBag(maxDiagnostics),
		Timer: observ.NewTimer(),
	}
	u.rep = diag.NewDedupReporter(diag.BagReporter{Bag: u.Bag})
	return u
}

// Failed reports whether the unit has error diagnostics.
func (u *Unit) Failed() bool { return u.Bag.HasErrors() }

// Output file names, relative to the output directory.
func (u *Unit) SourceFile() string { return u.Name + "trace.cpp" }
func (u *Unit) StateFile() string  { return u.Name + "state.cpp" }
func (u *Unit) SigsFile() string   { return u.Name + "trace.sigs" }

type output struct {
	source, state string
	sigs          *sigtable.Table
	types         int
}

func (o output) digest() project.Digest {
	return project.Combine(project.Sum([]byte(o.source)), project.Sum([]byte(o.state)))
}

func (u *Unit) run(ctx context.Context, req *Request) {
	ctx, span := trace.Start(ctx, trace.ScopeStage, "unit/"+u.Name)
	defer func() {
		if u.Failed() {
			span.End("failed")
			return
		}
		span.WithExtra("digest", u.Digest.Short()).End("")
	}()
	start := time.Now()
	fail := func(stage Stage, err error) {
		emit(req.Progress, u.Name, stage, StatusError, err, time.Since(start))
	}

	emit(req.Progress, u.Name, StageLoad, StatusWorking, nil, 0)
	var data []byte
	err := u.Timer.Measure(string(StageLoad), func() error {
		var err error
		data, err = os.ReadFile(u.Input)
		if err != nil {
			diag.ReportError(u.rep, diag.DscIO, diag.Location{File: u.Input}, err.Error()).Emit()
		}
		return err
	})
	if err != nil {
		fail(StageLoad, err)
		return
	}

	emit(req.Progress, u.Name, StageGenerate, StatusWorking, nil, 0)
	var out output
	err = u.Timer.Measure(string(StageGenerate), func() error {
		var err error
		out, err = u.generate(ctx, data, req, u.rep)
		return err
	})
	if err != nil {
		fail(StageGenerate, err)
		return
	}
	u.Source, u.State, u.Sigs, u.Types = out.source, out.state, out.sigs, out.types
	u.Digest = out.digest()

	if req.Verify {
		emit(req.Progress, u.Name, StageVerify, StatusWorking, nil, 0)
		err = u.Timer.Measure(string(StageVerify), func() error {
			return u.verify(ctx, data, req)
		})
		if err != nil {
			fail(StageVerify, err)
			return
		}
	}

	if req.OutDir != "" {
		emit(req.Progress, u.Name, StageWrite, StatusWorking, nil, 0)
		err = u.Timer.Measure(string(StageWrite), func() error {
			return u.write(req)
		})
		if err != nil {
			fail(StageWrite, err)
			return
		}
	}
	emit(req.Progress, u.Name, StageWrite, StatusDone, nil, time.Since(start))
}

var errDescription = errors.New("description has errors")

// generate builds one fresh context from data and emits every unit.
func (u *Unit) generate(ctx context.Context, data []byte, req *Request, r diag.Reporter) (output, error) {
	in := types.NewInterner()
	desc := apidesc.Parse(u.Input, data, in, r)
	if desc == nil || u.Bag.HasErrors() {
		return output{}, errDescription
	}
	out := output{types: len(walk.AllTypes(in, desc.API))}
	if req.Sigs {
		out.sigs = sigtable.New(desc.API.Name)
	}
	loc := diag.Location{File: u.Input}

	src, err := cxx.Generate(ctx, in, desc.API, cxx.Options{
		DispatchPrefix: req.DispatchPrefix,
		IsPublic:       desc.IsPublic,
		Sigs:           out.sigs,
	})
	if err != nil {
		diag.ReportError(r, generationCode(err), loc, err.Error()).Emit()
		return output{}, err
	}
	out.source = src
	if out.sigs != nil {
		out.sigs.Source = project.Sum([]byte(src))
	}

	if req.State && desc.State != nil {
		state, err := glstate.Generate(ctx, in, desc.State)
		if err != nil {
			diag.ReportError(r, generationCode(err), loc.At("state"), err.Error()).Emit()
			return output{}, err
		}
		out.state = state
	}
	return out, nil
}

func generationCode(err error) diag.Code {
	switch {
	case errors.Is(err, cxx.ErrNotWrappable):
		return diag.GenNotWrappable
	case errors.Is(err, inflect.ErrNoInflection):
		return diag.GenNoInflection
	default:
		return diag.GenUnsupportedType
	}
}

// verify regenerates from scratch and requires an identical digest.
func (u *Unit) verify(ctx context.Context, data []byte, req *Request) error {
	again, err := u.generate(ctx, data, req, diag.BagReporter{})
	if err != nil {
		return fmt.Errorf("second run: %w", err)
	}
	if d := again.digest(); d != u.Digest {
		msg := fmt.Sprintf("two runs over the same description differ: %s vs %s", u.Digest.Short(), d.Short())
		diag.ReportError(u.rep, diag.GenNondeterminism, diag.Location{File: u.Input}, msg).Emit()
		return errors.New(msg)
	}
	return nil
}

func (u *Unit) write(req *Request) error {
	report := func(path string, err error) error {
		diag.ReportError(u.rep, diag.GenWriteFailed, diag.Location{File: path}, err.Error()).Emit()
		return err
	}
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return report(req.OutDir, err)
	}
	files := []struct{ name, text string }{{u.SourceFile(), u.Source}}
	if u.State != "" {
		files = append(files, struct{ name, text string }{u.StateFile(), u.State})
	}
	for _, f := range files {
		path := filepath.Join(req.OutDir, f.name)
		// #nosec G306 -- generated sources are shared build inputs
		if err := os.WriteFile(path, []byte(f.text), 0o644); err != nil {
			return report(path, err)
		}
		u.Outputs = append(u.Outputs, path)
	}
	if u.Sigs != nil {
		path := filepath.Join(req.OutDir, u.SigsFile())
		if err := sigtable.WriteFile(path, u.Sigs); err != nil {
			return report(path, err)
		}
		u.Outputs = append(u.Outputs, path)
	}
	return nil
}
