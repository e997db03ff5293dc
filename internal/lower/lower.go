// Package lower translates type-checked HIR function bodies into the
// backend tree. It consumes the lookup facade produced by the earlier
// phases and never re-derives a fact that lives there: user-facing
// problems go into the diagnostic bag and poison the affected value with
// the error sentinel, while a missing fact the phase contract guarantees
// is an internal-consistency failure returned as an error.
package lower

import (
	"fmt"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/layout"
	"github.com/dafaust/gccrs/internal/sema"
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// Lowerer carries the per-function lowering state. One function body is
// lowered start to finish on one goroutine before the next begins.
type Lowerer struct {
	res    *sema.Result
	target layout.Target
	bag    *diag.Bag
	b      *backend.Builder

	// typeCache holds facade type lookups plus the types of expressions
	// the tuple-match decomposition synthesizes.
	typeCache map[hir.ExprID]types.TypeID
	// headBinds carries binding patterns lifted off tuple-head position,
	// keyed by the synthesized outer match that must declare them against
	// its scrutinee temporary.
	headBinds map[hir.ExprID][]hir.BindingData
	ids       *hir.IDGen
}

// Function lowers one function body and returns its backend block.
func Function(res *sema.Result, target layout.Target, bag *diag.Bag, fn *hir.Func) (*backend.Block, error) {
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("lower: nil function body")
	}
	l := &Lowerer{
		res:       res,
		target:    target,
		bag:       bag,
		b:         backend.NewBuilder(fn.Name),
		typeCache: make(map[hir.ExprID]types.TypeID, 64),
		headBinds: make(map[hir.ExprID][]hir.BindingData, 4),
		ids:       hir.NewIDGenFrom(1 << 24), // clear of upstream ids
	}
	for i := range fn.Params {
		p := fn.Params[i]
		l.b.BindVar(p.Sym, &backend.Var{Name: p.Name, Type: p.Type})
	}
	val, err := l.lowerExpr(fn.Body)
	if err != nil {
		return nil, err
	}
	if !backend.IsError(val) && val.Kind != backend.NodeUnit {
		l.b.Append(backend.ExprStmt(val, fn.Body.Span))
	}
	return l.b.Finish()
}

// Builder exposes the builder for tests and the driver's used-symbol scan.
func (l *Lowerer) Builder() *backend.Builder { return l.b }

// typeOf returns the resolved type of an expression, cached per body.
// A missing entry is reported once and yields NoTypeID.
func (l *Lowerer) typeOf(e *hir.Expr) types.TypeID {
	if ty, ok := l.typeCache[e.ID]; ok {
		return ty
	}
	ty, ok := l.res.ResolvedType(e.ID)
	if !ok {
		l.bag.Error(diag.LowUnresolvedType, e.Span, "no resolved type for %s expression", e.Kind)
		ty = types.NoTypeID
	}
	l.typeCache[e.ID] = ty
	return ty
}

// rootOf peels references and resolved generic placeholders.
func (l *Lowerer) rootOf(ty types.TypeID) types.TypeID {
	return l.res.Types.Root(ty)
}

// lowerExpr routes one HIR expression to its lowering routine. Operands
// lower first, left to right.
func (l *Lowerer) lowerExpr(e *hir.Expr) (*backend.Node, error) {
	if e == nil {
		return nil, fmt.Errorf("lower: nil expression")
	}
	switch data := e.Data.(type) {
	case hir.LiteralData:
		return l.lowerLiteral(e, data)
	case hir.IdentifierData:
		return l.lowerIdentifier(e, data)
	case hir.BorrowData:
		return l.lowerBorrow(e, data)
	case hir.DerefData:
		return l.lowerDeref(e, data)
	case hir.NegationData:
		return l.lowerNegation(e, data)
	case hir.ArithData:
		return l.lowerArith(e, data)
	case hir.AssignData:
		return l.lowerAssign(e, data)
	case hir.CompoundAssignData:
		return l.lowerCompoundAssign(e, data)
	case hir.CallData:
		return l.lowerCall(e, data)
	case hir.MethodCallData:
		return l.lowerMethodCall(e, data)
	case hir.FieldAccessData:
		return l.lowerFieldAccess(e, data)
	case hir.IndexData:
		return l.lowerIndex(e, data)
	case hir.TupleData:
		return l.lowerTuple(e, data)
	case hir.ArrayData:
		return l.lowerArray(e, data)
	case hir.RangeData:
		return l.lowerRange(e, data)
	case hir.MatchData:
		return l.lowerMatch(e, data)
	case hir.BlockData:
		return l.lowerBlock(e, data)
	default:
		return nil, fmt.Errorf("lower: unhandled expression kind %s", e.Kind)
	}
}

func (l *Lowerer) lowerIdentifier(e *hir.Expr, data hir.IdentifierData) (*backend.Node, error) {
	decl, ok := l.res.Symbols.Lookup(data.Sym)
	if !ok {
		l.bag.Error(diag.LowUnresolvedSymbol, e.Span, "unresolved name %q", data.Name)
		return backend.ErrorNode, nil
	}
	switch decl.Kind {
	case symbols.DeclVar:
		v, ok := l.b.VarFor(data.Sym)
		if !ok {
			l.bag.Error(diag.LowUnresolvedSymbol, e.Span, "%q used before declaration", data.Name)
			return backend.ErrorNode, nil
		}
		return backend.VarRef(v, e.Span), nil
	case symbols.DeclConst:
		if c, ok := l.b.ConstFor(data.Sym); ok {
			return c, nil
		}
		l.bag.Error(diag.LowUnresolvedSymbol, e.Span, "constant %q has no folded value", data.Name)
		return backend.ErrorNode, nil
	case symbols.DeclFunc, symbols.DeclImplItem, symbols.DeclTraitItem:
		return l.functionReference(decl, e.Span), nil
	default:
		return nil, fmt.Errorf("lower: identifier %q resolves to unexpected decl kind", data.Name)
	}
}

// functionReference returns the cached reference for a function
// declaration, building and caching it on first use.
func (l *Lowerer) functionReference(decl symbols.Decl, span source.Span) *backend.Node {
	if n, ok := l.b.CompiledFn(decl.Type); ok {
		return n
	}
	n := backend.FuncRef(decl.Type, decl.ID, decl.Name, span)
	l.b.RegisterFn(decl.Type, n)
	return n
}

func (l *Lowerer) lowerBorrow(e *hir.Expr, data hir.BorrowData) (*backend.Node, error) {
	val, err := l.lowerExpr(data.Operand)
	if err != nil || backend.IsError(val) {
		return backend.ErrorNode, err
	}
	// Slices and strings are already handle values; borrowing them is
	// the identity.
	if l.res.Types.IsFatPointer(l.typeOf(data.Operand)) {
		return val, nil
	}
	return backend.AddressOf(l.typeOf(e), val, e.Span), nil
}

func (l *Lowerer) lowerDeref(e *hir.Expr, data hir.DerefData) (*backend.Node, error) {
	val, err := l.lowerExpr(data.Operand)
	if err != nil || backend.IsError(val) {
		return backend.ErrorNode, err
	}
	if ov, ok := l.res.OperatorOverload(e.ID); ok {
		val, err = l.overloadCall(ov, data.Operand, val, nil, e.Span)
		if err != nil || backend.IsError(val) {
			return backend.ErrorNode, err
		}
	}
	// A slice stays a slice across a deref: the value is already the
	// handle, there is nothing to load through.
	if l.res.Types.IsFatPointer(val.Type) && l.res.Types.IsFatPointer(l.typeOf(e)) {
		return val, nil
	}
	// Validity is guaranteed upstream; no runtime check.
	return backend.Indirect(l.typeOf(e), val, true, e.Span), nil
}

func (l *Lowerer) lowerNegation(e *hir.Expr, data hir.NegationData) (*backend.Node, error) {
	val, err := l.lowerExpr(data.Operand)
	if err != nil || backend.IsError(val) {
		return backend.ErrorNode, err
	}
	if ov, ok := l.res.OperatorOverload(e.ID); ok {
		return l.overloadCall(ov, data.Operand, val, nil, e.Span)
	}
	op := backend.UnNeg
	if data.Op == hir.OpNot {
		op = backend.UnNot
	}
	return backend.Negation(l.typeOf(e), op, val, e.Span), nil
}

func (l *Lowerer) lowerArith(e *hir.Expr, data hir.ArithData) (*backend.Node, error) {
	left, err := l.lowerExpr(data.Left)
	if err != nil || backend.IsError(left) {
		return backend.ErrorNode, err
	}
	right, err := l.lowerExpr(data.Right)
	if err != nil || backend.IsError(right) {
		return backend.ErrorNode, err
	}
	// Lazy boolean operators never overload.
	if data.Op != hir.OpLazyAnd && data.Op != hir.OpLazyOr {
		if ov, ok := l.res.OperatorOverload(e.ID); ok {
			return l.overloadCall(ov, data.Left, left, []*backend.Node{right}, e.Span)
		}
	}
	return backend.Binary(l.typeOf(e), binOpFor(data.Op), left, right, e.Span), nil
}

// Assignment is a statement in the produced form; its value is unit.
func (l *Lowerer) lowerAssign(e *hir.Expr, data hir.AssignData) (*backend.Node, error) {
	left, err := l.lowerExpr(data.Left)
	if err != nil || backend.IsError(left) {
		return backend.ErrorNode, err
	}
	right, err := l.lowerExpr(data.Right)
	if err != nil || backend.IsError(right) {
		return backend.ErrorNode, err
	}
	right, err = l.applyAdjustments(right, l.res.Adjustments(data.Right.ID), data.Right.Span)
	if err != nil || backend.IsError(right) {
		return backend.ErrorNode, err
	}
	l.b.Append(backend.Assign(left, right, e.Span))
	return backend.Unit(l.res.Types.Builtins().Unit, e.Span), nil
}

func (l *Lowerer) lowerCompoundAssign(e *hir.Expr, data hir.CompoundAssignData) (*backend.Node, error) {
	left, err := l.lowerExpr(data.Left)
	if err != nil || backend.IsError(left) {
		return backend.ErrorNode, err
	}
	right, err := l.lowerExpr(data.Right)
	if err != nil || backend.IsError(right) {
		return backend.ErrorNode, err
	}
	if ov, ok := l.res.OperatorOverload(e.ID); ok {
		call, err := l.overloadCall(ov, data.Left, left, []*backend.Node{right}, e.Span)
		if err != nil || backend.IsError(call) {
			return backend.ErrorNode, err
		}
		l.b.Append(backend.ExprStmt(call, e.Span))
	} else {
		lty := l.typeOf(data.Left)
		rhs := backend.Binary(lty, binOpFor(data.Op), left, right, e.Span)
		l.b.Append(backend.Assign(left, rhs, e.Span))
	}
	return backend.Unit(l.res.Types.Builtins().Unit, e.Span), nil
}

func (l *Lowerer) lowerFieldAccess(e *hir.Expr, data hir.FieldAccessData) (*backend.Node, error) {
	obj, err := l.lowerExpr(data.Object)
	if err != nil || backend.IsError(obj) {
		return backend.ErrorNode, err
	}
	obj, err = l.applyAdjustments(obj, l.res.Adjustments(data.Object.ID), data.Object.Span)
	if err != nil || backend.IsError(obj) {
		return backend.ErrorNode, err
	}
	return backend.Field(l.typeOf(e), obj, data.Index, e.Span), nil
}

func (l *Lowerer) lowerIndex(e *hir.Expr, data hir.IndexData) (*backend.Node, error) {
	obj, err := l.lowerExpr(data.Object)
	if err != nil || backend.IsError(obj) {
		return backend.ErrorNode, err
	}
	idx, err := l.lowerExpr(data.Index)
	if err != nil || backend.IsError(idx) {
		return backend.ErrorNode, err
	}
	if ov, ok := l.res.OperatorOverload(e.ID); ok {
		// The index operator returns a reference to the element.
		ref, err := l.overloadCall(ov, data.Object, obj, []*backend.Node{idx}, e.Span)
		if err != nil || backend.IsError(ref) {
			return backend.ErrorNode, err
		}
		return backend.Indirect(l.typeOf(e), ref, true, e.Span), nil
	}
	return backend.ArrayIndexExpr(l.typeOf(e), obj, idx, e.Span), nil
}

func (l *Lowerer) lowerTuple(e *hir.Expr, data hir.TupleData) (*backend.Node, error) {
	fields := make([]*backend.Node, 0, len(data.Elems))
	for _, elem := range data.Elems {
		v, err := l.lowerExpr(elem)
		if err != nil || backend.IsError(v) {
			return backend.ErrorNode, err
		}
		fields = append(fields, v)
	}
	return backend.Constructor(l.typeOf(e), fields, e.Span), nil
}

func (l *Lowerer) lowerArray(e *hir.Expr, data hir.ArrayData) (*backend.Node, error) {
	ty := l.typeOf(e)
	switch data.Kind {
	case hir.ArrayElemsValues:
		vals := make([]*backend.Node, 0, len(data.Values))
		for _, v := range data.Values {
			n, err := l.lowerExpr(v)
			if err != nil || backend.IsError(n) {
				return backend.ErrorNode, err
			}
			vals = append(vals, n)
		}
		return backend.ArrayCtor(ty, vals, e.Span), nil
	case hir.ArrayElemsCopied:
		count, err := l.lowerExpr(data.Count)
		if err != nil || backend.IsError(count) {
			return backend.ErrorNode, err
		}
		count = backend.Fold(count)
		if count.Kind != backend.NodeConstInt {
			l.bag.Sorry(data.Count.Span, "non-constant array capacity")
			return backend.ErrorNode, nil
		}
		// The fill expands inside its own block so the temporary stays
		// scoped to the initialization.
		block := l.b.PushBlock()
		tmp := l.b.Temporary(ty, e.Span)
		elem, err := l.lowerExpr(data.Elem)
		if err != nil || backend.IsError(elem) {
			l.b.PopBlock()
			return backend.ErrorNode, err
		}
		l.b.Append(backend.ArrayInit(tmp, count, elem, e.Span))
		l.b.PopBlock()
		return backend.Compound(ty, block, backend.VarRef(tmp, e.Span), e.Span), nil
	default:
		return nil, fmt.Errorf("lower: unknown array elements kind")
	}
}

// lowerRange builds the range struct for the five range constructors.
// The full range has no fields.
func (l *Lowerer) lowerRange(e *hir.Expr, data hir.RangeData) (*backend.Node, error) {
	var fields []*backend.Node
	if data.From != nil {
		from, err := l.lowerExpr(data.From)
		if err != nil || backend.IsError(from) {
			return backend.ErrorNode, err
		}
		fields = append(fields, from)
	}
	if data.To != nil {
		to, err := l.lowerExpr(data.To)
		if err != nil || backend.IsError(to) {
			return backend.ErrorNode, err
		}
		fields = append(fields, to)
	}
	return backend.Constructor(l.typeOf(e), fields, e.Span), nil
}

func (l *Lowerer) lowerBlock(e *hir.Expr, data hir.BlockData) (*backend.Node, error) {
	ty := l.typeOf(e)
	if len(data.Exprs) == 0 {
		return backend.Unit(ty, e.Span), nil
	}
	block := l.b.PushBlock()
	var tail *backend.Node
	for i, sub := range data.Exprs {
		v, err := l.lowerExpr(sub)
		if err != nil {
			l.b.PopBlock()
			return backend.ErrorNode, err
		}
		if i == len(data.Exprs)-1 {
			tail = v
			break
		}
		if !backend.IsError(v) && v.Kind != backend.NodeUnit {
			l.b.Append(backend.ExprStmt(v, sub.Span))
		}
	}
	l.b.PopBlock()
	if backend.IsError(tail) {
		return backend.ErrorNode, nil
	}
	return backend.Compound(ty, block, tail, e.Span), nil
}

func binOpFor(op hir.ArithOp) backend.BinOp {
	switch op {
	case hir.OpAdd:
		return backend.BinAdd
	case hir.OpSub:
		return backend.BinSub
	case hir.OpMul:
		return backend.BinMul
	case hir.OpDiv:
		return backend.BinDiv
	case hir.OpRem:
		return backend.BinRem
	case hir.OpBitAnd:
		return backend.BinAnd
	case hir.OpBitOr:
		return backend.BinOr
	case hir.OpBitXor:
		return backend.BinXor
	case hir.OpShl:
		return backend.BinShl
	case hir.OpShr:
		return backend.BinShr
	case hir.OpLazyAnd:
		return backend.BinLazyAnd
	case hir.OpLazyOr:
		return backend.BinLazyOr
	default:
		return backend.BinAdd
	}
}
