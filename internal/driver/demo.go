package driver

import (
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/sema"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// Demo builds a small pre-resolved module, standing in for the frontend
// phases so the lowering pipeline can be exercised end to end from the
// CLI.
func Demo() Input {
	in := types.NewInterner()
	bt := in.Builtins()
	tab := symbols.NewTable()
	res := sema.NewResult(in, tab)
	ids := hir.NewIDGen()

	expr := func(kind hir.ExprKind, ty types.TypeID, data hir.ExprData) *hir.Expr {
		e := &hir.Expr{ID: ids.Next(), Kind: kind, Data: data}
		res.SetExprType(e.ID, ty)
		return e
	}
	intLit := func(text string) *hir.Expr {
		return expr(hir.ExprLiteral, bt.I32, hir.LiteralData{Kind: hir.LitInt, Value: text})
	}
	litPat := func(text string) *hir.Pattern {
		return &hir.Pattern{Kind: hir.PatLiteral, Data: hir.LiteralPatData{Kind: hir.LitInt, Value: text}}
	}
	tuplePat := func(items ...*hir.Pattern) *hir.Pattern {
		return &hir.Pattern{Kind: hir.PatTuple, Data: hir.TuplePatData{ItemsKind: hir.TupleItemsMultiple, Patterns: items}}
	}
	caseOf := func(pat *hir.Pattern, body *hir.Expr) hir.MatchCase {
		return hir.MatchCase{Arm: hir.MatchArm{Patterns: []*hir.Pattern{pat}}, Body: body}
	}

	// fn tuple_match() -> i32 { match (1, 2) { (1, 2) => 10, (1, 3) => 20, _ => 30 } }
	pairTy := in.NewTuple([]types.TypeID{bt.I32, bt.I32})
	scrutinee := expr(hir.ExprTuple, pairTy, hir.TupleData{Elems: []*hir.Expr{intLit("1"), intLit("2")}})
	tupleMatch := expr(hir.ExprMatch, bt.I32, hir.MatchData{
		Scrutinee: scrutinee,
		Cases: []hir.MatchCase{
			caseOf(tuplePat(litPat("1"), litPat("2")), intLit("10")),
			caseOf(tuplePat(litPat("1"), litPat("3")), intLit("20")),
			caseOf(&hir.Pattern{Kind: hir.PatWildcard, Data: hir.WildcardData{}}, intLit("30")),
		},
	})

	// fn option_match(opt: Option) -> i32 { match opt { Some(x) => x, None => 0 } }
	optTy := in.NewAdt(types.AdtInfo{
		Name:   "Option",
		IsEnum: true,
		Variants: []types.VariantDef{
			{Name: "Some", Fields: []types.FieldDef{{Name: "0", Type: bt.I32}}, Discriminant: 0, Index: 0},
			{Name: "None", Discriminant: 1, Index: 1},
		},
	})
	optSym := tab.AddVar("opt", optTy)
	xSym := tab.AddVar("x", bt.I32)
	optionMatch := expr(hir.ExprMatch, bt.I32, hir.MatchData{
		Scrutinee: expr(hir.ExprIdentifier, optTy, hir.IdentifierData{Name: "opt", Sym: optSym}),
		Cases: []hir.MatchCase{
			caseOf(&hir.Pattern{Kind: hir.PatVariant, Data: hir.VariantPatData{
				Path:       "Option::Some",
				VariantIdx: 0,
				Elems:      []*hir.Pattern{{Kind: hir.PatBinding, Data: hir.BindingData{Name: "x", Sym: xSym}}},
			}}, expr(hir.ExprIdentifier, bt.I32, hir.IdentifierData{Name: "x", Sym: xSym})),
			caseOf(&hir.Pattern{Kind: hir.PatVariant, Data: hir.VariantPatData{
				Path:       "Option::None",
				VariantIdx: 1,
			}}, intLit("0")),
		},
	})

	// fn str_len() { "abc" used as a fat {data, length} value }
	strLit := expr(hir.ExprLiteral, bt.Str, hir.LiteralData{Kind: hir.LitString, Value: "abc"})

	mod := &hir.Module{
		Name: "demo",
		Funcs: []*hir.Func{
			{Name: "tuple_match", Body: tupleMatch},
			{Name: "option_match", Params: []hir.Param{{Name: "opt", Sym: optSym, Type: optTy}}, Body: optionMatch},
			{Name: "str_value", Body: strLit},
		},
	}
	return Input{Module: mod, Res: res}
}
