package lower_test

import (
	"testing"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/layout"
	"github.com/dafaust/gccrs/internal/lower"
	"github.com/dafaust/gccrs/internal/sema"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// fixture hand-builds the facade tables the earlier phases would produce.
type fixture struct {
	in  *types.Interner
	bt  types.Builtins
	tab *symbols.Table
	res *sema.Result
	bag *diag.Bag
	ids *hir.IDGen
}

func newFixture() *fixture {
	in := types.NewInterner()
	tab := symbols.NewTable()
	return &fixture{
		in:  in,
		bt:  in.Builtins(),
		tab: tab,
		res: sema.NewResult(in, tab),
		bag: diag.NewBag(50),
		ids: hir.NewIDGen(),
	}
}

// expr mints a typed expression node and records its resolved type.
func (f *fixture) expr(kind hir.ExprKind, ty types.TypeID, data hir.ExprData) *hir.Expr {
	e := &hir.Expr{ID: f.ids.Next(), Kind: kind, Data: data}
	f.res.SetExprType(e.ID, ty)
	return e
}

func (f *fixture) intLit(ty types.TypeID, text string) *hir.Expr {
	return f.expr(hir.ExprLiteral, ty, hir.LiteralData{Kind: hir.LitInt, Value: text})
}

// param registers a variable symbol and its matching function parameter.
func (f *fixture) param(name string, ty types.TypeID) (hir.Param, symbols.SymbolID) {
	sym := f.tab.AddVar(name, ty)
	return hir.Param{Name: name, Sym: sym, Type: ty}, sym
}

func (f *fixture) ident(name string, sym symbols.SymbolID, ty types.TypeID) *hir.Expr {
	return f.expr(hir.ExprIdentifier, ty, hir.IdentifierData{Name: name, Sym: sym})
}

// lowerBody lowers a single-expression function body.
func (f *fixture) lowerBody(t *testing.T, body *hir.Expr, params ...hir.Param) *backend.Block {
	t.Helper()
	block, err := lower.Function(f.res, layout.X86_64LinuxGNU(), f.bag, &hir.Func{
		Name:   "test_fn",
		Params: params,
		Body:   body,
	})
	if err != nil {
		t.Fatalf("Function: %v", err)
	}
	return block
}

// resultNode digs the lowered body value out of the trailing expression
// statement.
func resultNode(t *testing.T, block *backend.Block) *backend.Node {
	t.Helper()
	if len(block.Stmts) == 0 {
		t.Fatal("empty lowered block")
	}
	last := block.Stmts[len(block.Stmts)-1]
	if last.Kind != backend.StmtExpr {
		t.Fatalf("last stmt is %s, want expr", last.Kind)
	}
	return last.Expr
}

func wantDiag(t *testing.T, bag *diag.Bag, code diag.Code) {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("no %s diagnostic recorded (%d total)", code, bag.Len())
}

func TestBorrowOfSliceIsIdentity(t *testing.T) {
	f := newFixture()
	sliceTy := f.in.Intern(types.Type{Kind: types.KindSlice, Elem: f.bt.I32})
	refTy := f.in.Intern(types.Type{Kind: types.KindReference, Elem: sliceTy})
	p, sym := f.param("s", sliceTy)

	operand := f.ident("s", sym, sliceTy)
	borrow := f.expr(hir.ExprBorrow, refTy, hir.BorrowData{Operand: operand})

	block := f.lowerBody(t, borrow, p)
	got := resultNode(t, block)
	if got.Kind != backend.NodeVar || got.Var.Name != "s" {
		t.Fatalf("borrow of slice lowered to %s, want the bare slice handle", got.Kind)
	}
}

func TestBorrowTakesAddress(t *testing.T) {
	f := newFixture()
	refTy := f.in.Intern(types.Type{Kind: types.KindReference, Elem: f.bt.I32})
	p, sym := f.param("x", f.bt.I32)

	borrow := f.expr(hir.ExprBorrow, refTy, hir.BorrowData{Operand: f.ident("x", sym, f.bt.I32)})
	got := resultNode(t, f.lowerBody(t, borrow, p))
	if got.Kind != backend.NodeAddressOf {
		t.Fatalf("borrow lowered to %s, want addr_of", got.Kind)
	}
	if got.Type != refTy {
		t.Fatalf("borrow type = %d, want %d", got.Type, refTy)
	}
}

func TestDerefIsKnownValid(t *testing.T) {
	f := newFixture()
	refTy := f.in.Intern(types.Type{Kind: types.KindReference, Elem: f.bt.I32})
	p, sym := f.param("r", refTy)

	deref := f.expr(hir.ExprDeref, f.bt.I32, hir.DerefData{Operand: f.ident("r", sym, refTy)})
	got := resultNode(t, f.lowerBody(t, deref, p))
	if got.Kind != backend.NodeIndirect || !got.KnownValid {
		t.Fatalf("deref lowered to %s (knownValid=%v), want known-valid indirect", got.Kind, got.KnownValid)
	}
}

func TestDerefOfSliceIsIdentity(t *testing.T) {
	f := newFixture()
	sliceTy := f.in.Intern(types.Type{Kind: types.KindSlice, Elem: f.bt.I32})
	p, sym := f.param("s", sliceTy)

	deref := f.expr(hir.ExprDeref, sliceTy, hir.DerefData{Operand: f.ident("s", sym, sliceTy)})
	got := resultNode(t, f.lowerBody(t, deref, p))
	if got.Kind != backend.NodeVar || got.Var.Name != "s" {
		t.Fatalf("deref of slice lowered to %s, want the bare slice handle", got.Kind)
	}
}

func TestCompoundAssignWithoutOverload(t *testing.T) {
	f := newFixture()
	p, sym := f.param("x", f.bt.I32)
	assign := f.expr(hir.ExprCompoundAssign, f.bt.Unit, hir.CompoundAssignData{
		Op:    hir.OpAdd,
		Left:  f.ident("x", sym, f.bt.I32),
		Right: f.intLit(f.bt.I32, "1"),
	})

	block := f.lowerBody(t, assign, p)
	var found *backend.Stmt
	for _, s := range block.Stmts {
		if s.Kind == backend.StmtAssign {
			found = s
		}
	}
	if found == nil {
		t.Fatal("no assign statement emitted")
	}
	if found.Rhs.Kind != backend.NodeBinary || found.Rhs.Bin != backend.BinAdd {
		t.Fatalf("rhs is %s, want binary +", found.Rhs.Kind)
	}
}

func TestPlainAssignIsStatementValuedUnit(t *testing.T) {
	f := newFixture()
	p, sym := f.param("x", f.bt.I32)
	assign := f.expr(hir.ExprAssign, f.bt.Unit, hir.AssignData{
		Left:  f.ident("x", sym, f.bt.I32),
		Right: f.intLit(f.bt.I32, "7"),
	})

	block := f.lowerBody(t, assign, p)
	var found *backend.Stmt
	for _, s := range block.Stmts {
		if s.Kind == backend.StmtAssign {
			found = s
		}
	}
	if found == nil {
		t.Fatal("no assign statement emitted")
	}
	if found.Lhs.Kind != backend.NodeVar || found.Rhs.Kind != backend.NodeConstInt {
		t.Fatalf("assign is %s = %s, want var = const", found.Lhs.Kind, found.Rhs.Kind)
	}
	last := block.Stmts[len(block.Stmts)-1]
	if last.Kind == backend.StmtExpr && !backend.IsError(last.Expr) {
		t.Fatalf("assignment produced a trailing value %s, want unit elided", last.Expr.Kind)
	}
}

func TestRangeConstructors(t *testing.T) {
	f := newFixture()
	rangeTy := f.in.NewAdt(types.AdtInfo{Name: "Range", Variants: []types.VariantDef{
		{Name: "Range", Fields: []types.FieldDef{{Name: "start", Type: f.bt.I32}, {Name: "end", Type: f.bt.I32}}},
	}})
	fullTy := f.in.NewAdt(types.AdtInfo{Name: "RangeFull", Variants: []types.VariantDef{{Name: "RangeFull"}}})

	cases := []struct {
		name   string
		kind   hir.ExprKind
		ty     types.TypeID
		data   hir.RangeData
		fields int
	}{
		{"from_to", hir.ExprRangeFromTo, rangeTy, hir.RangeData{From: f.intLit(f.bt.I32, "1"), To: f.intLit(f.bt.I32, "5")}, 2},
		{"from", hir.ExprRangeFrom, rangeTy, hir.RangeData{From: f.intLit(f.bt.I32, "1")}, 1},
		{"to", hir.ExprRangeTo, rangeTy, hir.RangeData{To: f.intLit(f.bt.I32, "5")}, 1},
		{"inclusive", hir.ExprRangeFromToIncl, rangeTy, hir.RangeData{From: f.intLit(f.bt.I32, "1"), To: f.intLit(f.bt.I32, "5")}, 2},
		{"full", hir.ExprRangeFull, fullTy, hir.RangeData{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := f.expr(tc.kind, tc.ty, tc.data)
			got := resultNode(t, f.lowerBody(t, e))
			if got.Kind != backend.NodeConstructor {
				t.Fatalf("range lowered to %s, want constructor", got.Kind)
			}
			if len(got.Fields) != tc.fields {
				t.Fatalf("constructor has %d fields, want %d", len(got.Fields), tc.fields)
			}
		})
	}
}

func TestCopiedArrayNeedsConstantCapacity(t *testing.T) {
	f := newFixture()
	arrTy := f.in.Intern(types.Type{Kind: types.KindArray, Elem: f.bt.I32, Count: 4})

	t.Run("constant", func(t *testing.T) {
		e := f.expr(hir.ExprArray, arrTy, hir.ArrayData{
			Kind:  hir.ArrayElemsCopied,
			Elem:  f.intLit(f.bt.I32, "0"),
			Count: f.intLit(f.bt.USize, "4"),
		})
		got := resultNode(t, f.lowerBody(t, e))
		if got.Kind != backend.NodeCompound {
			t.Fatalf("copied array lowered to %s, want compound", got.Kind)
		}
		var init *backend.Stmt
		for _, s := range got.Block.Stmts {
			if s.Kind == backend.StmtArrayInit {
				init = s
			}
		}
		if init == nil {
			t.Fatal("no array_init statement inside the compound block")
		}
		if init.Count.IntVal.Int64() != 4 {
			t.Fatalf("array_init count = %s, want 4", init.Count.IntVal)
		}
	})

	t.Run("non_constant", func(t *testing.T) {
		p, sym := f.param("n", f.bt.USize)
		e := f.expr(hir.ExprArray, arrTy, hir.ArrayData{
			Kind:  hir.ArrayElemsCopied,
			Elem:  f.intLit(f.bt.I32, "0"),
			Count: f.ident("n", sym, f.bt.USize),
		})
		f.lowerBody(t, e, p)
		wantDiag(t, f.bag, diag.LowUnsupportedConstruct)
	})
}

func TestUnresolvedTypeIsReportedOnce(t *testing.T) {
	f := newFixture()
	// No SetExprType call: the facade has no entry for this node.
	e := &hir.Expr{ID: f.ids.Next(), Kind: hir.ExprTuple, Data: hir.TupleData{}}
	f.lowerBody(t, e)
	wantDiag(t, f.bag, diag.LowUnresolvedType)
}

func TestUnresolvedIdentifierPoisonsConsumer(t *testing.T) {
	f := newFixture()
	bad := f.expr(hir.ExprIdentifier, f.bt.I32, hir.IdentifierData{Name: "ghost", Sym: 999})
	neg := f.expr(hir.ExprNegation, f.bt.I32, hir.NegationData{Op: hir.OpNeg, Operand: bad})

	block := f.lowerBody(t, neg)
	wantDiag(t, f.bag, diag.LowUnresolvedSymbol)
	for _, s := range block.Stmts {
		if s.Kind == backend.StmtExpr && !backend.IsError(s.Expr) {
			t.Fatal("poisoned value leaked into the block as a real statement")
		}
	}
}

func TestBlockValueIsTail(t *testing.T) {
	f := newFixture()
	tail := f.intLit(f.bt.I32, "7")
	blockExpr := f.expr(hir.ExprBlock, f.bt.I32, hir.BlockData{Exprs: []*hir.Expr{
		f.intLit(f.bt.I32, "1"),
		tail,
	}})
	got := resultNode(t, f.lowerBody(t, blockExpr))
	if got.Kind != backend.NodeCompound {
		t.Fatalf("block lowered to %s, want compound", got.Kind)
	}
	if got.Value.Kind != backend.NodeConstInt || got.Value.IntVal.Int64() != 7 {
		t.Fatalf("block value = %v, want const 7", got.Value.Kind)
	}
}
