package diag_test

import (
	"testing"

	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := diag.NewBag(2)
	sp := source.Span{File: 0, Start: 1, End: 2}
	if !bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.LowInvalidLiteral, Primary: sp}) {
		t.Fatalf("first Add rejected")
	}
	bag.Error(diag.LowLiteralOverflow, sp, "value %d out of range", 300)
	if bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Primary: sp}) {
		t.Fatalf("Add past the limit accepted")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("HasErrors = false, want true")
	}
}

func TestBagSorryIsUnsupportedConstruct(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Sorry(source.Span{}, "match on floating-point types is not yet supported")
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("Len = %d, want 1", len(items))
	}
	if items[0].Code != diag.LowUnsupportedConstruct {
		t.Fatalf("Code = %v, want LowUnsupportedConstruct", items[0].Code)
	}
}
