package backend_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/types"
)

func TestBuilderBlockStack(t *testing.T) {
	b := backend.NewBuilder("main")
	inner := b.PushBlock()
	b.Append(backend.ExprStmt(backend.ConstIntVal(1, 7, source.Span{}), source.Span{}))
	if got := b.PopBlock(); got != inner {
		t.Fatalf("PopBlock returned %p, want %p", got, inner)
	}
	if len(inner.Stmts) != 1 {
		t.Fatalf("inner block has %d stmts, want 1", len(inner.Stmts))
	}
	root, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(root.Stmts) != 0 {
		t.Fatalf("root block has %d stmts, want 0", len(root.Stmts))
	}
}

func TestBuilderFinishWithOpenBlock(t *testing.T) {
	b := backend.NewBuilder("main")
	b.PushBlock()
	if _, err := b.Finish(); err == nil {
		t.Fatal("Finish succeeded with an open block")
	}
}

func TestBuilderPopRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("popping the root block did not panic")
		}
	}()
	backend.NewBuilder("main").PopBlock()
}

func TestTemporariesAreDistinct(t *testing.T) {
	b := backend.NewBuilder("f")
	v1 := b.Temporary(types.TypeID(3), source.Span{})
	v2 := b.Temporary(types.TypeID(3), source.Span{})
	if v1.Name == v2.Name {
		t.Fatalf("temporaries share name %q", v1.Name)
	}
	if !v1.Temp || !v2.Temp {
		t.Fatal("temporary slots not marked Temp")
	}
	root, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(root.Stmts) != 2 {
		t.Fatalf("expected 2 decl stmts, got %d", len(root.Stmts))
	}
}

func TestErrorPropagation(t *testing.T) {
	span := source.Span{}
	ok := backend.ConstIntVal(1, 1, span)
	cases := []*backend.Node{
		backend.AddressOf(2, backend.ErrorNode, span),
		backend.Field(2, backend.ErrorNode, 0, span),
		backend.Call(2, backend.ErrorNode, nil, span),
		backend.Call(2, ok, []*backend.Node{backend.ErrorNode}, span),
		backend.Binary(2, backend.BinAdd, ok, backend.ErrorNode, span),
		backend.Constructor(2, []*backend.Node{ok, backend.ErrorNode}, span),
		backend.ArrayIndexExpr(2, ok, backend.ErrorNode, span),
	}
	for i, n := range cases {
		if !backend.IsError(n) {
			t.Errorf("case %d: error operand did not poison the node", i)
		}
	}
}

func TestFoldNegatedConstant(t *testing.T) {
	span := source.Span{}
	n := backend.Negation(1, backend.UnNeg, backend.ConstInt(1, big.NewInt(42), span), span)
	folded := backend.Fold(n)
	if folded.Kind != backend.NodeConstInt {
		t.Fatalf("Fold kind = %s, want const_int", folded.Kind)
	}
	if folded.IntVal.Int64() != -42 {
		t.Fatalf("Fold value = %s, want -42", folded.IntVal)
	}
}

func TestDumpSwitch(t *testing.T) {
	span := source.Span{}
	b := backend.NewBuilder("f")
	body := b.PushBlock()
	l := b.NewLabel()
	body.Add(backend.Case(backend.ConstIntVal(1, 0, span), nil, l, span))
	body.Add(backend.DefaultCase(b.NewLabel(), span))
	b.PopBlock()
	b.Append(backend.Switch(backend.ConstIntVal(1, 9, span), body, span))
	root, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	var sb strings.Builder
	backend.DumpBlock(&sb, root, backend.DumpOptions{})
	out := sb.String()
	for _, want := range []string{"switch 9 {", "case 0: goto L0", "default: goto L1"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
