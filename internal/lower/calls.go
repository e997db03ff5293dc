package lower

import (
	"fmt"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/sema"
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// lowerCall classifies a call expression: when the callee's type is not a
// function, the call constructs an ADT value; otherwise it is a plain
// (possibly variadic) call.
func (l *Lowerer) lowerCall(e *hir.Expr, data hir.CallData) (*backend.Node, error) {
	fnRoot, ok := l.res.Types.Lookup(l.rootOf(l.typeOf(data.Fn)))
	if !ok {
		return backend.ErrorNode, nil
	}
	if fnRoot.Kind != types.KindFnDef && fnRoot.Kind != types.KindFnPtr {
		return l.lowerConstructorCall(e, data)
	}

	callee, err := l.lowerExpr(data.Fn)
	if err != nil || backend.IsError(callee) {
		return backend.ErrorNode, err
	}
	info, ok := l.res.Types.Fn(l.rootOf(l.typeOf(data.Fn)))
	if !ok {
		return nil, fmt.Errorf("lower: call through non-function signature")
	}
	if len(data.Args) > len(info.Params) && !info.Variadic {
		return nil, fmt.Errorf("lower: %d args for %d-param non-variadic signature", len(data.Args), len(info.Params))
	}
	args, err := l.lowerArgs(data.Args)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return backend.ErrorNode, nil
	}
	return backend.Call(l.typeOf(e), callee, args, e.Span), nil
}

// lowerConstructorCall builds a tuple-struct or enum-variant aggregate.
// For enum variants the folded discriminant is prepended to the field
// list as the union tag.
func (l *Lowerer) lowerConstructorCall(e *hir.Expr, data hir.CallData) (*backend.Node, error) {
	ty := l.typeOf(e)
	adt, ok := l.res.Types.Adt(l.rootOf(ty))
	if !ok {
		return nil, fmt.Errorf("lower: constructor call on non-ADT type")
	}
	variantIdx := 0
	if idx, ok := l.res.VariantOf(e.ID); ok {
		variantIdx = idx
	}
	if variantIdx >= len(adt.Variants) {
		return nil, fmt.Errorf("lower: variant index %d out of range for %s", variantIdx, adt.Name)
	}
	variant := adt.Variants[variantIdx]

	args, err := l.lowerArgs(data.Args)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return backend.ErrorNode, nil
	}
	if adt.IsEnum {
		bt := l.res.Types.Builtins()
		tag := backend.Fold(backend.ConstIntVal(bt.ISize, variant.Discriminant, e.Span))
		args = append([]*backend.Node{tag}, args...)
	}
	return backend.Constructor(ty, args, e.Span), nil
}

// lowerArgs lowers arguments left to right, replaying each argument's
// recorded adjustments. A nil slice with nil error means an argument
// poisoned the call.
func (l *Lowerer) lowerArgs(args []*hir.Expr) ([]*backend.Node, error) {
	out := make([]*backend.Node, 0, len(args))
	for _, arg := range args {
		v, err := l.lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		v, err = l.applyAdjustments(v, l.res.Adjustments(arg.ID), arg.Span)
		if err != nil {
			return nil, err
		}
		if backend.IsError(v) {
			return nil, nil
		}
		out = append(out, v)
	}
	return out, nil
}

// lowerMethodCall decides static versus dynamic dispatch from the
// receiver's root type and produces the call with the receiver as the
// first argument.
func (l *Lowerer) lowerMethodCall(e *hir.Expr, data hir.MethodCallData) (*backend.Node, error) {
	fnTy, ok := l.res.MethodType(e.ID)
	if !ok {
		return nil, fmt.Errorf("lower: method call %q without resolved method type", data.Method)
	}
	recvTy, ok := l.res.Receiver(e.ID)
	if !ok {
		recvTy = l.typeOf(data.Receiver)
	}
	rootRecv := l.rootOf(recvTy)

	recv, err := l.lowerExpr(data.Receiver)
	if err != nil || backend.IsError(recv) {
		return backend.ErrorNode, err
	}
	recv, err = l.applyAdjustments(recv, l.res.Adjustments(data.Receiver.ID), data.Receiver.Span)
	if err != nil || backend.IsError(recv) {
		return backend.ErrorNode, err
	}

	rootType, _ := l.res.Types.Lookup(rootRecv)
	if rootType.Kind == types.KindDynamic {
		return l.lowerDynamicDispatch(e, data, fnTy, recvTy, rootRecv, recv)
	}

	callee, err := l.staticCallee(e, data.Method, fnTy, rootRecv)
	if err != nil || backend.IsError(callee) {
		return backend.ErrorNode, err
	}
	args, err := l.lowerArgs(data.Args)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return backend.ErrorNode, nil
	}
	return backend.Call(l.typeOf(e), callee, append([]*backend.Node{recv}, args...), e.Span), nil
}

// staticCallee resolves a statically dispatched method: the compiled-fn
// cache first, then a single impl candidate on the receiver's root type,
// then the trait's own default body. Zero or multiple candidates is a
// broken invariant between phases.
func (l *Lowerer) staticCallee(e *hir.Expr, method string, fnTy, rootRecv types.TypeID) (*backend.Node, error) {
	if n, ok := l.b.CompiledFn(fnTy); ok {
		return n, nil
	}
	var decl symbols.Decl
	cands := l.res.Symbols.ProbeImpls(rootRecv, method)
	switch len(cands) {
	case 1:
		decl = cands[0]
	case 0:
		sym, ok := l.res.ResolvedCallee(e.ID)
		if !ok {
			return nil, fmt.Errorf("lower: no candidate for method %q", method)
		}
		d, ok := l.res.Symbols.Lookup(sym)
		if !ok || d.Kind != symbols.DeclTraitItem || !d.HasDefault {
			return nil, fmt.Errorf("lower: method %q has neither impl nor trait default", method)
		}
		decl = d
	default:
		return nil, fmt.Errorf("lower: %d candidates for method %q", len(cands), method)
	}

	// Generic signatures must already be substituted; the call site's fn
	// identity names the monomorphized instance.
	if info, ok := l.res.Types.Fn(fnTy); ok && info.Generic {
		return nil, fmt.Errorf("lower: method %q called with unsubstituted generic signature", method)
	}
	n := backend.FuncRef(fnTy, decl.ID, decl.Name, e.Span)
	l.b.RegisterFn(fnTy, n)
	return n, nil
}

// lowerDynamicDispatch builds a vtable call: the slot offset is the
// position of the matching fn identity in the dynamic type's ordered
// item list, the object's data field becomes the receiver.
func (l *Lowerer) lowerDynamicDispatch(e *hir.Expr, data hir.MethodCallData, fnTy, recvTy, rootRecv types.TypeID, recv *backend.Node) (*backend.Node, error) {
	dyn, ok := l.res.Types.Dyn(rootRecv)
	if !ok {
		return nil, fmt.Errorf("lower: dynamic dispatch on non-dyn type")
	}
	offset := -1
	for i, item := range dyn.Items {
		if item.Fn == fnTy {
			offset = i
			break
		}
	}
	if offset < 0 {
		l.bag.Error(diag.LowUnresolvedSymbol, e.Span,
			"method %q not found in dyn %s", data.Method, dyn.Name)
		return backend.ErrorNode, nil
	}

	// A reference to the object needs one indirection to reach the
	// {data, vtable} pair itself.
	if t, ok := l.res.Types.Lookup(recvTy); ok && t.Kind == types.KindReference {
		recv = backend.Indirect(rootRecv, recv, true, e.Span)
	}

	bt := l.res.Types.Builtins()
	objData := backend.Field(bt.USize, recv, 0, e.Span)
	vtable := backend.Field(bt.USize, recv, 1, e.Span)
	slot := backend.ArrayIndexExpr(fnTy, vtable, backend.ConstIntVal(bt.USize, int64(offset), e.Span), e.Span)

	args, err := l.lowerArgs(data.Args)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return backend.ErrorNode, nil
	}
	return backend.Call(l.typeOf(e), slot, append([]*backend.Node{objData}, args...), e.Span), nil
}

// overloadCall routes an operator through its resolved overload: the
// left operand becomes the receiver, the right operand (if any) the sole
// argument. Receiver adjustments replay before the call.
func (l *Lowerer) overloadCall(ov sema.Overload, recvExpr *hir.Expr, recv *backend.Node, args []*backend.Node, span source.Span) (*backend.Node, error) {
	decl, ok := l.res.Symbols.Lookup(ov.Item)
	if !ok {
		return nil, fmt.Errorf("lower: operator overload names unknown impl item %d", ov.Item)
	}
	info, ok := l.res.Types.Fn(ov.Fn)
	if !ok {
		return nil, fmt.Errorf("lower: operator overload with non-function type")
	}
	recv, err := l.applyAdjustments(recv, l.res.Adjustments(recvExpr.ID), span)
	if err != nil || backend.IsError(recv) {
		return backend.ErrorNode, err
	}
	callee, ok := l.b.CompiledFn(ov.Fn)
	if !ok {
		callee = backend.FuncRef(ov.Fn, decl.ID, decl.Name, span)
		l.b.RegisterFn(ov.Fn, callee)
	}
	return backend.Call(info.Result, callee, append([]*backend.Node{recv}, args...), span), nil
}
