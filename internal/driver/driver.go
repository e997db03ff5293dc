// Package driver orchestrates lowering across whole modules: sequential
// within a function body, parallel across modules, with a disk cache for
// unchanged inputs.
package driver

import (
	"strings"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/layout"
	"github.com/dafaust/gccrs/internal/lower"
	"github.com/dafaust/gccrs/internal/sema"
)

// FuncResult is one lowered function body.
type FuncResult struct {
	Name  string
	Block *backend.Block
	Dump  string
}

// ModuleResult collects every lowered function of one module plus its
// diagnostics.
type ModuleResult struct {
	Module string
	Funcs  []FuncResult
	Bag    *diag.Bag
}

// Broken reports whether any function failed to lower cleanly.
func (r *ModuleResult) Broken() bool {
	return r.Bag.HasErrors()
}

// LowerModule lowers each function of a module in order. Function bodies
// never lower concurrently; cross-module parallelism lives in
// LowerModules. An internal-consistency error aborts the whole module.
func LowerModule(res *sema.Result, target layout.Target, mod *hir.Module) (*ModuleResult, error) {
	out := &ModuleResult{
		Module: mod.Name,
		Funcs:  make([]FuncResult, 0, len(mod.Funcs)),
		Bag:    diag.NewBag(100),
	}
	for _, fn := range mod.Funcs {
		block, err := lower.Function(res, target, out.Bag, fn)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		backend.DumpBlock(&sb, block, backend.DumpOptions{})
		out.Funcs = append(out.Funcs, FuncResult{Name: fn.Name, Block: block, Dump: sb.String()})
	}
	return out, nil
}
