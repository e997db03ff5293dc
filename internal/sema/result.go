// Package sema exposes the results of the earlier compiler phases as a
// read-only lookup facade. The lowering core never re-derives a fact that
// lives here; a missing entry the contract says must exist is an
// internal-consistency failure, not a user error.
package sema

import (
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// Overload is a resolved operator-overload target.
type Overload struct {
	Fn   types.TypeID // FnDef type of the operator method
	Item symbols.SymbolID
}

// Result is the lookup facade over type checking, name resolution and
// trait solving. All tables are populated before lowering begins and are
// immutable from the core's point of view.
type Result struct {
	Types   *types.Interner
	Symbols *symbols.Table

	exprTypes   map[hir.ExprID]types.TypeID
	callees     map[hir.ExprID]symbols.SymbolID
	overloads   map[hir.ExprID]Overload
	receivers   map[hir.ExprID]types.TypeID
	adjusts     map[hir.ExprID][]Adjustment
	variants    map[hir.ExprID]int
	methodTypes map[hir.ExprID]types.TypeID
}

// NewResult creates an empty facade over the given interner and table.
func NewResult(in *types.Interner, tab *symbols.Table) *Result {
	return &Result{
		Types:       in,
		Symbols:     tab,
		exprTypes:   make(map[hir.ExprID]types.TypeID, 64),
		callees:     make(map[hir.ExprID]symbols.SymbolID, 16),
		overloads:   make(map[hir.ExprID]Overload, 8),
		receivers:   make(map[hir.ExprID]types.TypeID, 16),
		adjusts:     make(map[hir.ExprID][]Adjustment, 16),
		variants:    make(map[hir.ExprID]int, 8),
		methodTypes: make(map[hir.ExprID]types.TypeID, 16),
	}
}

// Population (earlier phases / fixtures) --------------------------------------

// SetExprType records the resolved type of an expression.
func (r *Result) SetExprType(id hir.ExprID, ty types.TypeID) {
	r.exprTypes[id] = ty
}

// SetCallee records the resolved callee symbol of a call-shaped expression.
func (r *Result) SetCallee(id hir.ExprID, sym symbols.SymbolID) {
	r.callees[id] = sym
}

// SetOperatorOverload records a resolved operator overload for an
// operator-shaped expression.
func (r *Result) SetOperatorOverload(id hir.ExprID, ov Overload) {
	r.overloads[id] = ov
}

// SetReceiver records the resolved receiver type of a method call.
func (r *Result) SetReceiver(id hir.ExprID, ty types.TypeID) {
	r.receivers[id] = ty
}

// SetAdjustments records the ordered implicit-conversion list of an
// expression's use site.
func (r *Result) SetAdjustments(id hir.ExprID, adj []Adjustment) {
	r.adjusts[id] = adj
}

// SetVariant records which enum variant a constructor call targets.
func (r *Result) SetVariant(id hir.ExprID, variantIdx int) {
	r.variants[id] = variantIdx
}

// SetMethodType records the looked-up FnDef type of a method-call's
// method name segment.
func (r *Result) SetMethodType(id hir.ExprID, fn types.TypeID) {
	r.methodTypes[id] = fn
}

// Queries (the lowering core) -------------------------------------------------

// ResolvedType returns the resolved type of an expression.
func (r *Result) ResolvedType(id hir.ExprID) (types.TypeID, bool) {
	ty, ok := r.exprTypes[id]
	return ty, ok
}

// ResolvedCallee returns the resolved callee symbol of an expression.
func (r *Result) ResolvedCallee(id hir.ExprID) (symbols.SymbolID, bool) {
	sym, ok := r.callees[id]
	return sym, ok
}

// OperatorOverload returns the resolved operator overload, if the
// expression has one.
func (r *Result) OperatorOverload(id hir.ExprID) (Overload, bool) {
	ov, ok := r.overloads[id]
	return ov, ok
}

// Receiver returns the resolved receiver type of a method call.
func (r *Result) Receiver(id hir.ExprID) (types.TypeID, bool) {
	ty, ok := r.receivers[id]
	return ty, ok
}

// Adjustments returns the ordered implicit-conversion list recorded for
// an expression, or nil when none apply.
func (r *Result) Adjustments(id hir.ExprID) []Adjustment {
	return r.adjusts[id]
}

// VariantOf returns the enum variant index a constructor call targets.
func (r *Result) VariantOf(id hir.ExprID) (int, bool) {
	idx, ok := r.variants[id]
	return idx, ok
}

// MethodType returns the FnDef type of a method-call's method segment.
func (r *Result) MethodType(id hir.ExprID) (types.TypeID, bool) {
	fn, ok := r.methodTypes[id]
	return fn, ok
}
