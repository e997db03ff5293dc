package lower_test

import (
	"testing"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/layout"
	"github.com/dafaust/gccrs/internal/lower"
	"github.com/dafaust/gccrs/internal/sema"
	"github.com/dafaust/gccrs/internal/types"
)

// optionFixture registers an Option-like enum: Some(i32) at index 0 with
// discriminant 0, None at index 1 with discriminant 1.
func optionFixture(f *fixture) types.TypeID {
	return f.in.NewAdt(types.AdtInfo{
		Name:   "Option",
		IsEnum: true,
		Variants: []types.VariantDef{
			{Name: "Some", Fields: []types.FieldDef{{Name: "0", Type: f.bt.I32}}, Discriminant: 0, Index: 0},
			{Name: "None", Discriminant: 1, Index: 1},
		},
	})
}

func TestEnumConstructorPrependsDiscriminant(t *testing.T) {
	f := newFixture()
	optTy := optionFixture(f)
	ctorSym := f.tab.AddFunc("Some", optTy)
	ctorRef := f.ident("Some", ctorSym, optTy)

	call := f.expr(hir.ExprCall, optTy, hir.CallData{Fn: ctorRef, Args: []*hir.Expr{f.intLit(f.bt.I32, "5")}})
	f.res.SetVariant(call.ID, 0)

	got := resultNode(t, f.lowerBody(t, call))
	if got.Kind != backend.NodeConstructor {
		t.Fatalf("constructor call lowered to %s", got.Kind)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("aggregate has %d fields, want tag + payload", len(got.Fields))
	}
	if got.Fields[0].Kind != backend.NodeConstInt || got.Fields[0].IntVal.Int64() != 0 {
		t.Fatalf("tag field = %v, want discriminant 0", got.Fields[0].Kind)
	}
	if got.Fields[1].IntVal.Int64() != 5 {
		t.Fatalf("payload = %s, want 5", got.Fields[1].IntVal)
	}
}

func TestStructConstructorHasNoTag(t *testing.T) {
	f := newFixture()
	pointTy := f.in.NewAdt(types.AdtInfo{Name: "Point", Variants: []types.VariantDef{
		{Name: "Point", Fields: []types.FieldDef{{Name: "x", Type: f.bt.I32}, {Name: "y", Type: f.bt.I32}}},
	}})
	ctorSym := f.tab.AddFunc("Point", pointTy)

	call := f.expr(hir.ExprCall, pointTy, hir.CallData{
		Fn:   f.ident("Point", ctorSym, pointTy),
		Args: []*hir.Expr{f.intLit(f.bt.I32, "1"), f.intLit(f.bt.I32, "2")},
	})
	got := resultNode(t, f.lowerBody(t, call))
	if len(got.Fields) != 2 {
		t.Fatalf("struct aggregate has %d fields, want 2", len(got.Fields))
	}
}

func TestPlainCallChecksArity(t *testing.T) {
	f := newFixture()
	fnTy := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "one", Params: []types.TypeID{f.bt.I32}, Result: f.bt.Unit})
	sym := f.tab.AddFunc("one", fnTy)

	call := f.expr(hir.ExprCall, f.bt.Unit, hir.CallData{
		Fn:   f.ident("one", sym, fnTy),
		Args: []*hir.Expr{f.intLit(f.bt.I32, "1"), f.intLit(f.bt.I32, "2")},
	})
	_, err := lower.Function(f.res, layout.X86_64LinuxGNU(), f.bag, &hir.Func{Name: "t", Body: call})
	if err == nil {
		t.Fatal("extra argument to non-variadic signature did not fail")
	}
}

func TestVariadicCallPassesExtraArgs(t *testing.T) {
	f := newFixture()
	fnTy := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "printf", Params: []types.TypeID{f.bt.Str}, Result: f.bt.Unit, Variadic: true})
	sym := f.tab.AddFunc("printf", fnTy)

	str := f.expr(hir.ExprLiteral, f.bt.Str, hir.LiteralData{Kind: hir.LitString, Value: "%d"})
	call := f.expr(hir.ExprCall, f.bt.Unit, hir.CallData{
		Fn:   f.ident("printf", sym, fnTy),
		Args: []*hir.Expr{str, f.intLit(f.bt.I32, "42")},
	})
	block := f.lowerBody(t, call)
	got := resultNode(t, block)
	if got.Kind != backend.NodeCall || len(got.Args) != 2 {
		t.Fatalf("variadic call lowered to %s with %d args", got.Kind, len(got.Args))
	}
}

// methodCallFixture builds `recv.method()` over the given receiver type.
func methodCallFixture(f *fixture, recvTy, fnTy types.TypeID, method string) (*hir.Expr, hir.Param) {
	p, sym := f.param("recv", recvTy)
	recv := f.ident("recv", sym, recvTy)
	call := f.expr(hir.ExprMethodCall, f.bt.I32, hir.MethodCallData{Receiver: recv, Method: method})
	f.res.SetMethodType(call.ID, fnTy)
	f.res.SetReceiver(call.ID, recvTy)
	return call, p
}

func TestStaticMethodDispatch(t *testing.T) {
	f := newFixture()
	optTy := optionFixture(f)
	fnTy := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "unwrap", Params: []types.TypeID{optTy}, Result: f.bt.I32})
	f.tab.AddImplItem(optTy, "unwrap", fnTy)

	call, p := methodCallFixture(f, optTy, fnTy, "unwrap")
	got := resultNode(t, f.lowerBody(t, call, p))
	if got.Kind != backend.NodeCall {
		t.Fatalf("method call lowered to %s", got.Kind)
	}
	if got.Callee.Kind != backend.NodeFuncRef || got.Callee.Name != "unwrap" {
		t.Fatalf("callee = %s %q, want func_ref unwrap", got.Callee.Kind, got.Callee.Name)
	}
	if len(got.Args) != 1 || got.Args[0].Kind != backend.NodeVar {
		t.Fatal("receiver is not the first argument")
	}
}

func TestStaticDispatchAmbiguityFails(t *testing.T) {
	f := newFixture()
	optTy := optionFixture(f)
	fnTy := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "unwrap", Params: []types.TypeID{optTy}, Result: f.bt.I32})
	f.tab.AddImplItem(optTy, "unwrap", fnTy)
	f.tab.AddImplItem(optTy, "unwrap", fnTy)

	call, p := methodCallFixture(f, optTy, fnTy, "unwrap")
	_, err := lower.Function(f.res, layout.X86_64LinuxGNU(), f.bag, &hir.Func{
		Name: "t", Params: []hir.Param{p}, Body: call,
	})
	if err == nil {
		t.Fatal("two impl candidates did not fail as an internal inconsistency")
	}
}

func TestTraitDefaultFallback(t *testing.T) {
	f := newFixture()
	optTy := optionFixture(f)
	fnTy := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "describe", Params: []types.TypeID{optTy}, Result: f.bt.I32})
	defSym := f.tab.AddTraitItem("Describe", "describe", fnTy, true)

	call, p := methodCallFixture(f, optTy, fnTy, "describe")
	f.res.SetCallee(call.ID, defSym)

	got := resultNode(t, f.lowerBody(t, call, p))
	if got.Callee.Kind != backend.NodeFuncRef || got.Callee.Name != "describe" {
		t.Fatalf("callee = %s %q, want the trait default body", got.Callee.Kind, got.Callee.Name)
	}
}

func TestDynamicDispatchVtableOffset(t *testing.T) {
	f := newFixture()
	drawFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "draw", Result: f.bt.I32})
	areaFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "area", Result: f.bt.I32})
	hideFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "hide", Result: f.bt.I32})
	dynTy := f.in.NewDyn(types.DynInfo{Name: "Shape", Items: []types.DynItem{
		{TraitItem: "draw", Fn: drawFn},
		{TraitItem: "area", Fn: areaFn},
		{TraitItem: "hide", Fn: hideFn},
	}})

	call, p := methodCallFixture(f, dynTy, areaFn, "area")
	got := resultNode(t, f.lowerBody(t, call, p))
	if got.Kind != backend.NodeCall {
		t.Fatalf("virtual call lowered to %s", got.Kind)
	}
	slot := got.Callee
	if slot.Kind != backend.NodeArrayIndex {
		t.Fatalf("callee = %s, want vtable slot access", slot.Kind)
	}
	if slot.Index.IntVal.Int64() != 1 {
		t.Fatalf("vtable offset = %s, want 1 (second item)", slot.Index.IntVal)
	}
	vtable := slot.Operand
	if vtable.Kind != backend.NodeField || vtable.FieldIdx != 1 {
		t.Fatalf("vtable source = %s field %d, want object field 1", vtable.Kind, vtable.FieldIdx)
	}
	if got.Args[0].Kind != backend.NodeField || got.Args[0].FieldIdx != 0 {
		t.Fatal("receiver argument is not the object's data field")
	}
}

func TestDynamicDispatchOffsetTracksItemPosition(t *testing.T) {
	// The offset is the matching fn identity's position; unrelated items
	// around it do not shift an already-resolved slot.
	f := newFixture()
	areaFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "area", Result: f.bt.I32})
	otherA := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "a", Result: f.bt.I32})
	otherB := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "b", Result: f.bt.I32})
	dynTy := f.in.NewDyn(types.DynInfo{Name: "Shape", Items: []types.DynItem{
		{TraitItem: "b", Fn: otherB},
		{TraitItem: "area", Fn: areaFn},
		{TraitItem: "a", Fn: otherA},
	}})

	call, p := methodCallFixture(f, dynTy, areaFn, "area")
	got := resultNode(t, f.lowerBody(t, call, p))
	if got.Callee.Index.IntVal.Int64() != 1 {
		t.Fatalf("offset = %s, want 1 regardless of neighbors", got.Callee.Index.IntVal)
	}
}

func TestDynamicDispatchThroughReference(t *testing.T) {
	f := newFixture()
	areaFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "area", Result: f.bt.I32})
	dynTy := f.in.NewDyn(types.DynInfo{Name: "Shape", Items: []types.DynItem{{TraitItem: "area", Fn: areaFn}}})
	refDyn := f.in.Intern(types.Type{Kind: types.KindReference, Elem: dynTy})

	call, p := methodCallFixture(f, refDyn, areaFn, "area")
	got := resultNode(t, f.lowerBody(t, call, p))
	vtable := got.Callee.Operand
	if vtable.Operand.Kind != backend.NodeIndirect {
		t.Fatalf("reference receiver reached the vtable as %s, want an indirection first", vtable.Operand.Kind)
	}
}

func TestOperatorOverloadAddBecomesMethodCall(t *testing.T) {
	f := newFixture()
	vecTy := f.in.NewAdt(types.AdtInfo{Name: "Vec2", Variants: []types.VariantDef{
		{Name: "Vec2", Fields: []types.FieldDef{{Name: "x", Type: f.bt.I32}, {Name: "y", Type: f.bt.I32}}},
	}})
	addFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "add", Params: []types.TypeID{vecTy, vecTy}, Result: vecTy})
	addSym := f.tab.AddImplItem(vecTy, "add", addFn)
	pa, sa := f.param("a", vecTy)
	pb, sb := f.param("b", vecTy)

	arith := f.expr(hir.ExprArith, vecTy, hir.ArithData{
		Op:    hir.OpAdd,
		Left:  f.ident("a", sa, vecTy),
		Right: f.ident("b", sb, vecTy),
	})
	f.res.SetOperatorOverload(arith.ID, sema.Overload{Fn: addFn, Item: addSym})

	got := resultNode(t, f.lowerBody(t, arith, pa, pb))
	if got.Kind != backend.NodeCall || got.Callee.Name != "add" {
		t.Fatalf("overloaded + lowered to %s, want call to add", got.Kind)
	}
	if len(got.Args) != 2 {
		t.Fatalf("overload call has %d args, want receiver + rhs", len(got.Args))
	}
}

func TestIndexOverloadDereferencesResult(t *testing.T) {
	f := newFixture()
	vecTy := f.in.NewAdt(types.AdtInfo{Name: "Buf", Variants: []types.VariantDef{
		{Name: "Buf", Fields: []types.FieldDef{{Name: "len", Type: f.bt.USize}}},
	}})
	refI32 := f.in.Intern(types.Type{Kind: types.KindReference, Elem: f.bt.I32})
	idxFn := f.in.NewFn(types.KindFnDef, types.FnInfo{Name: "index", Params: []types.TypeID{vecTy, f.bt.USize}, Result: refI32})
	idxSym := f.tab.AddImplItem(vecTy, "index", idxFn)
	p, sym := f.param("buf", vecTy)

	idx := f.expr(hir.ExprIndex, f.bt.I32, hir.IndexData{
		Object: f.ident("buf", sym, vecTy),
		Index:  f.intLit(f.bt.USize, "2"),
	})
	f.res.SetOperatorOverload(idx.ID, sema.Overload{Fn: idxFn, Item: idxSym})

	got := resultNode(t, f.lowerBody(t, idx, p))
	if got.Kind != backend.NodeIndirect || got.Operand.Kind != backend.NodeCall {
		t.Fatalf("overloaded index lowered to %s over %v, want indirect over call", got.Kind, got.Operand)
	}
}
