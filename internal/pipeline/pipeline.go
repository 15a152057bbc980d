// Package pipeline generates the trace units of several API descriptions.
//
// Every description is an independent unit with its own types.Interner, so
// units run concurrently while each output stays byte-for-byte reproducible.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"tracegen/internal/diag"
	"tracegen/internal/project"
	"tracegen/internal/trace"
)

// Request configures a run.
type Request struct {
	// Inputs are description paths; each becomes one unit.
	Inputs []string
	// OutDir receives the generated files; empty skips writing.
	OutDir         string
	DispatchPrefix string
	// Sigs writes the msgpack signature table next to each unit.
	Sigs bool
	// State emits the snapshot unit of descriptions with a [state] table.
	State bool
	// Verify generates every unit twice and compares digests.
	Verify         bool
	MaxDiagnostics int
	// Jobs bounds concurrency; 0 means GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
}

// Result holds every unit in input order.
type Result struct {
	Units []*Unit
	// Digest combines the unit digests in input order.
	Digest project.Digest
}

// ErrUnitsFailed is returned when at least one unit reported errors; the
// details are in each Unit's Bag.
var ErrUnitsFailed = errors.New("generation failed")

// Run generates every input. Description and generation problems are
// collected per unit instead of stopping the run.
func Run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing request")
	}
	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("no description to generate")
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "pipeline")
	span.WithExtra("units", strconv.Itoa(len(req.Inputs)))

	units := make([]*Unit, len(req.Inputs))
	names := make(map[string]string, len(req.Inputs))
	for i, path := range req.Inputs {
		u := newUnit(path, req.MaxDiagnostics)
		if prev, dup := names[u.Name]; dup {
			span.End("failed")
			return nil, fmt.Errorf("%s and %s both generate unit %q", prev, path, u.Name)
		}
		names[u.Name] = path
		units[i] = u
		emit(req.Progress, u.Name, StageLoad, StatusQueued, nil, 0)
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for _, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			u.run(gctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("canceled")
		return nil, err
	}

	res := &Result{Units: units}
	failed := 0
	for i, u := range units {
		if u.Failed() {
			failed++
			continue
		}
		if i == 0 {
			res.Digest = u.Digest
		} else {
			res.Digest = project.Combine(res.Digest, u.Digest)
		}
	}
	if failed > 0 {
		span.WithExtra("failed", strconv.Itoa(failed)).End("failed")
		emit(req.Progress, "", StageGenerate, StatusError, ErrUnitsFailed, 0)
		return res, fmt.Errorf("%w: %d of %d units", ErrUnitsFailed, failed, len(units))
	}
	span.WithExtra("digest", res.Digest.Short()).End("")
	emit(req.Progress, "", StageGenerate, StatusDone, nil, 0)
	return res, nil
}

// Bag merges the diagnostics of every unit, sorted.
func (r *Result) Bag() *diag.Bag {
	bag := diag.NewBag(0)
	if r == nil {
		return bag
	}
	for _, u := range r.Units {
		bag.Merge(u.Bag)
	}
	bag.Sort()
	return bag
}
