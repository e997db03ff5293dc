package hir_test

import (
	"testing"

	"github.com/dafaust/gccrs/internal/hir"
)

func lit(v string) *hir.Pattern {
	return &hir.Pattern{Kind: hir.PatLiteral, Data: hir.LiteralPatData{Kind: hir.LitInt, Value: v}}
}

func tuplePat(items ...*hir.Pattern) *hir.Pattern {
	return &hir.Pattern{Kind: hir.PatTuple, Data: hir.TuplePatData{ItemsKind: hir.TupleItemsMultiple, Patterns: items}}
}

func TestPatternCloneIsDeep(t *testing.T) {
	orig := tuplePat(lit("1"), tuplePat(lit("2"), lit("3")))
	clone := orig.Clone()
	if !orig.Equal(clone) {
		t.Fatalf("clone is not structurally equal to the original")
	}

	// Mutating the clone must not leak into the original.
	cd := clone.Data.(hir.TuplePatData)
	cd.Patterns[0].Data = hir.LiteralPatData{Kind: hir.LitInt, Value: "99"}
	od := orig.Data.(hir.TuplePatData)
	if od.Patterns[0].Data.(hir.LiteralPatData).Value != "1" {
		t.Fatalf("clone shares nodes with the original")
	}
}

func TestPatternEqualStructural(t *testing.T) {
	cases := []struct {
		name string
		a, b *hir.Pattern
		want bool
	}{
		{"same literal", lit("1"), lit("1"), true},
		{"different literal", lit("1"), lit("2"), false},
		{
			"wildcards",
			&hir.Pattern{Kind: hir.PatWildcard, Data: hir.WildcardData{}},
			&hir.Pattern{Kind: hir.PatWildcard, Data: hir.WildcardData{}},
			true,
		},
		{
			"bindings ignore names",
			&hir.Pattern{Kind: hir.PatBinding, Data: hir.BindingData{Name: "x"}},
			&hir.Pattern{Kind: hir.PatBinding, Data: hir.BindingData{Name: "y"}},
			true,
		},
		{"tuple same", tuplePat(lit("1"), lit("2")), tuplePat(lit("1"), lit("2")), true},
		{"tuple arity", tuplePat(lit("1")), tuplePat(lit("1"), lit("2")), false},
		{
			"variant index",
			&hir.Pattern{Kind: hir.PatVariant, Data: hir.VariantPatData{VariantIdx: 0}},
			&hir.Pattern{Kind: hir.PatVariant, Data: hir.VariantPatData{VariantIdx: 1}},
			false,
		},
	}
	for _, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("%s: Equal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsCatchAll(t *testing.T) {
	wild := &hir.Pattern{Kind: hir.PatWildcard, Data: hir.WildcardData{}}
	bind := &hir.Pattern{Kind: hir.PatBinding, Data: hir.BindingData{Name: "x"}}
	if !wild.IsCatchAll() || !bind.IsCatchAll() {
		t.Fatalf("wildcard/binding must be catch-all")
	}
	if lit("1").IsCatchAll() {
		t.Fatalf("literal must not be catch-all")
	}
}
