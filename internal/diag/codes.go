package diag

import (
	"fmt"
)

// Code identifies the class of a diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Lowering-phase diagnostics. Earlier phases own lower ranges; the
	// lowering core only ever emits from this block.
	LowInfo                 Code = 5000
	LowUnresolvedType       Code = 5001
	LowUnresolvedSymbol     Code = 5002
	LowInvalidLiteral       Code = 5003
	LowLiteralOverflow      Code = 5004
	LowUnsupportedConstruct Code = 5005
)

func (c Code) String() string {
	switch c {
	case LowInfo:
		return "lowering"
	case LowUnresolvedType:
		return "unresolved type"
	case LowUnresolvedSymbol:
		return "unresolved symbol"
	case LowInvalidLiteral:
		return "invalid literal"
	case LowLiteralOverflow:
		return "literal overflow"
	case LowUnsupportedConstruct:
		return "unsupported construct"
	case UnknownCode:
		return "unknown"
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}
