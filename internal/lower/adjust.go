package lower

import (
	"fmt"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/sema"
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/types"
)

// applyAdjustments replays an expression's recorded implicit conversions
// strictly left to right. A missing resolution inside an adjustment is an
// internal-consistency failure: earlier phases validated resolvability.
func (l *Lowerer) applyAdjustments(val *backend.Node, adjs []sema.Adjustment, span source.Span) (*backend.Node, error) {
	if backend.IsError(val) {
		return backend.ErrorNode, nil
	}
	for i := range adjs {
		adj := adjs[i]
		var err error
		switch adj.Kind {
		case sema.AdjustBorrow:
			val = l.applyBorrow(val, adj, span)
		case sema.AdjustDeref:
			val, err = l.applyDeref(val, adj, span)
		case sema.AdjustIndirection:
			val = backend.Indirect(adj.Expected, val, true, span)
		case sema.AdjustUnsize:
			val, err = l.applyUnsize(val, adj, span)
		default:
			err = fmt.Errorf("lower: unknown adjustment kind %d", adj.Kind)
		}
		if err != nil {
			return nil, err
		}
		if backend.IsError(val) {
			return backend.ErrorNode, nil
		}
	}
	return val, nil
}

// applyBorrow takes the value's address. Fat-pointer values are already
// handles, so the borrow is the identity there.
func (l *Lowerer) applyBorrow(val *backend.Node, adj sema.Adjustment, span source.Span) *backend.Node {
	if l.res.Types.IsFatPointer(val.Type) {
		return val
	}
	return backend.AddressOf(adj.Expected, val, span)
}

// applyDeref routes through the resolved deref operator when one is
// recorded, borrowing the receiver first if the overload wants a
// reference; the plain form is a direct known-valid indirection.
func (l *Lowerer) applyDeref(val *backend.Node, adj sema.Adjustment, span source.Span) (*backend.Node, error) {
	if adj.OverloadFn != types.NoTypeID {
		decl, ok := l.res.Symbols.Lookup(adj.OverloadItem)
		if !ok {
			return nil, fmt.Errorf("lower: deref adjustment names unknown impl item %d", adj.OverloadItem)
		}
		fnInfo, ok := l.res.Types.Fn(adj.OverloadFn)
		if !ok {
			return nil, fmt.Errorf("lower: deref adjustment with non-function overload type")
		}
		recv := val
		if adj.OverloadNeedsRef {
			refTy := types.NoTypeID
			if len(fnInfo.Params) > 0 {
				refTy = fnInfo.Params[0]
			}
			recv = l.applyBorrow(val, sema.Adjustment{Kind: sema.AdjustBorrow, Expected: refTy}, span)
		}
		callee := l.functionReference(decl, span)
		return backend.Call(fnInfo.Result, callee, []*backend.Node{recv}, span), nil
	}
	// Slice to slice is the identity; the value is already the handle.
	if l.res.Types.IsFatPointer(val.Type) && l.res.Types.IsFatPointer(adj.Expected) {
		return val, nil
	}
	return backend.Indirect(adj.Expected, val, true, span), nil
}

// applyUnsize converts a fixed-size array value into the fat slice form:
// the array's address plus its static element count.
func (l *Lowerer) applyUnsize(val *backend.Node, adj sema.Adjustment, span source.Span) (*backend.Node, error) {
	arrTy, ok := l.res.Types.Lookup(l.rootOf(val.Type))
	if !ok || arrTy.Kind != types.KindArray {
		return nil, fmt.Errorf("lower: unsize adjustment on non-array value (%s)", arrTy.Kind)
	}
	bt := l.res.Types.Builtins()
	data := backend.AddressOf(adj.Expected, val, span)
	length := backend.ConstIntVal(bt.USize, int64(arrTy.Count), span)
	return backend.Constructor(adj.Expected, []*backend.Node{data, length}, span), nil
}
