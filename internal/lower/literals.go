package lower

import (
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/types"
)

// lowerLiteral materializes a literal token as a backend constant.
// Numeric parsing is arbitrary-precision; the value is checked against
// the resolved type before conversion.
func (l *Lowerer) lowerLiteral(e *hir.Expr, data hir.LiteralData) (*backend.Node, error) {
	ty := l.typeOf(e)
	switch data.Kind {
	case hir.LitInt:
		return l.lowerIntLiteral(e, data.Value, ty)
	case hir.LitFloat:
		return l.lowerFloatLiteral(e, data.Value, ty)
	case hir.LitBool:
		return backend.ConstBool(ty, data.Value == "true", e.Span), nil
	case hir.LitChar:
		r, size := utf8.DecodeRuneInString(data.Value)
		if size == 0 || r == utf8.RuneError && size == 1 {
			l.bag.Error(diag.LowInvalidLiteral, e.Span, "invalid char literal %q", data.Value)
			return backend.ErrorNode, nil
		}
		return backend.ConstChar(ty, r, e.Span), nil
	case hir.LitByte:
		if len(data.Value) != 1 {
			l.bag.Error(diag.LowInvalidLiteral, e.Span, "invalid byte literal %q", data.Value)
			return backend.ErrorNode, nil
		}
		return backend.ConstIntVal(ty, int64(data.Value[0]), e.Span), nil
	case hir.LitString:
		return l.lowerStringLiteral(e, data.Value, ty), nil
	case hir.LitByteString:
		return l.lowerByteStringLiteral(e, data.Value, ty)
	default:
		return nil, fmt.Errorf("lower: unknown literal kind")
	}
}

func (l *Lowerer) lowerIntLiteral(e *hir.Expr, text string, ty types.TypeID) (*backend.Node, error) {
	val, ok := new(big.Int).SetString(text, 0)
	if !ok {
		l.bag.Error(diag.LowInvalidLiteral, e.Span, "invalid integer literal %q", text)
		return backend.ErrorNode, nil
	}
	root, ok := l.res.Types.Lookup(l.rootOf(ty))
	if !ok {
		return nil, fmt.Errorf("lower: integer literal with unknown type")
	}
	minVal, maxVal, ok := types.IntegerBounds(root, l.target.PtrBits())
	if !ok {
		return nil, fmt.Errorf("lower: integer literal resolved to non-integer type %s", root.Kind)
	}
	if val.Cmp(minVal) < 0 || val.Cmp(maxVal) > 0 {
		l.bag.Error(diag.LowLiteralOverflow, e.Span,
			"integer literal %s out of range [%s, %s]", text, minVal, maxVal)
		return backend.ErrorNode, nil
	}
	return backend.ConstInt(ty, val, e.Span), nil
}

func (l *Lowerer) lowerFloatLiteral(e *hir.Expr, text string, ty types.TypeID) (*backend.Node, error) {
	val, _, err := big.ParseFloat(text, 10, 256, big.ToNearestEven)
	if err != nil {
		l.bag.Error(diag.LowInvalidLiteral, e.Span, "invalid float literal %q", text)
		return backend.ErrorNode, nil
	}
	root, ok := l.res.Types.Lookup(l.rootOf(ty))
	if !ok || root.Kind != types.KindFloat {
		return nil, fmt.Errorf("lower: float literal resolved to non-float type")
	}
	f, _ := val.Float64()
	if math.IsInf(f, 0) {
		l.bag.Error(diag.LowLiteralOverflow, e.Span, "float literal %s overflows f64", text)
		return backend.ErrorNode, nil
	}
	if root.Width == types.Width32 {
		f32 := float32(f)
		if math.IsInf(float64(f32), 0) {
			l.bag.Error(diag.LowLiteralOverflow, e.Span, "float literal %s overflows f32", text)
			return backend.ErrorNode, nil
		}
		f = float64(f32)
	}
	return backend.ConstFloat(ty, f, e.Span), nil
}

// lowerStringLiteral builds the fat string value: a data pointer to the
// immutable backing buffer plus a usize byte length.
func (l *Lowerer) lowerStringLiteral(e *hir.Expr, text string, ty types.TypeID) *backend.Node {
	bt := l.res.Types.Builtins()
	data := backend.ConstString(bt.Str, text, e.Span)
	length := backend.ConstIntVal(bt.USize, int64(len(text)), e.Span)
	return backend.Constructor(ty, []*backend.Node{data, length}, e.Span)
}

// lowerByteStringLiteral builds a fixed u8 array constant and takes its
// address to match the literal's reference-to-array type.
func (l *Lowerer) lowerByteStringLiteral(e *hir.Expr, text string, ty types.TypeID) (*backend.Node, error) {
	bt := l.res.Types.Builtins()
	elems := make([]*backend.Node, len(text))
	for i := 0; i < len(text); i++ {
		elems[i] = backend.ConstIntVal(bt.U8, int64(text[i]), e.Span)
	}
	rootTy, ok := l.res.Types.Lookup(ty)
	arrTy := ty
	if ok && rootTy.Kind == types.KindReference {
		arrTy = rootTy.Elem
	}
	arr := backend.ArrayCtor(arrTy, elems, e.Span)
	return backend.AddressOf(ty, arr, e.Span), nil
}
