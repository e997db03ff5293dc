package driver

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/layout"
	"github.com/dafaust/gccrs/internal/sema"
)

// EventKind tags progress events emitted while lowering modules.
type EventKind uint8

const (
	EventModuleStart EventKind = iota
	EventModuleDone
	EventModuleCached
)

// Event is one progress notification for the UI layer.
type Event struct {
	Kind   EventKind
	Module string
	Broken bool
}

// Input pairs one module with its facade; modules do not share lowering
// state.
type Input struct {
	Module *hir.Module
	Res    *sema.Result
}

// Options configures cross-module lowering.
type Options struct {
	Target layout.Target
	Jobs   int        // 0 means GOMAXPROCS
	Cache  *DiskCache // nil disables caching
	Notify func(Event)
}

// LowerModules lowers modules in parallel, bounded by Jobs. Each module
// stays single-threaded internally; only whole modules fan out. Results
// come back in input order.
func LowerModules(ctx context.Context, inputs []Input, opts Options) ([]*ModuleResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	notify := opts.Notify
	if notify == nil {
		notify = func(Event) {}
	}
	var mu sync.Mutex
	emit := func(ev Event) {
		mu.Lock()
		notify(ev)
		mu.Unlock()
	}

	results := make([]*ModuleResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(inputs), 1)))
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(Event{Kind: EventModuleStart, Module: in.Module.Name})

			key := DigestOf(in.Module, opts.Target.Triple)
			var cached DiskPayload
			if hit, err := opts.Cache.Get(key, &cached); err == nil && hit {
				results[i] = resultFromPayload(&cached)
				emit(Event{Kind: EventModuleCached, Module: in.Module.Name, Broken: cached.Broken})
				return nil
			}

			r, err := LowerModule(in.Res, opts.Target, in.Module)
			if err != nil {
				return err
			}
			if !r.Broken() {
				// Broken modules re-lower every run so diagnostics reappear.
				if err := opts.Cache.Put(key, PayloadOf(r, opts.Target.Triple)); err != nil {
					return err
				}
			}
			results[i] = r
			emit(Event{Kind: EventModuleDone, Module: in.Module.Name, Broken: r.Broken()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func resultFromPayload(p *DiskPayload) *ModuleResult {
	r := &ModuleResult{Module: p.Module, Bag: nil}
	for i := range p.FuncNames {
		r.Funcs = append(r.Funcs, FuncResult{Name: p.FuncNames[i], Dump: p.FuncDumps[i]})
	}
	return r
}
