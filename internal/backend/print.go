package backend

import (
	"fmt"
	"io"
	"strings"
)

// DumpOptions configures backend tree dumping.
type DumpOptions struct {
	// Types annotates every node with its type id.
	Types bool
}

// DumpBlock writes a human-readable form of a backend block.
func DumpBlock(w io.Writer, b *Block, opts DumpOptions) {
	if w == nil || b == nil {
		return
	}
	dumpBlock(w, b, 0, opts)
}

func dumpBlock(w io.Writer, b *Block, depth int, opts DumpOptions) {
	for _, s := range b.Stmts {
		dumpStmt(w, s, depth, opts)
	}
}

func dumpStmt(w io.Writer, s *Stmt, depth int, opts DumpOptions) {
	ind := strings.Repeat("  ", depth)
	switch s.Kind {
	case StmtAssign:
		fmt.Fprintf(w, "%s%s = %s\n", ind, nodeStr(s.Lhs, opts), nodeStr(s.Rhs, opts))
	case StmtExpr:
		fmt.Fprintf(w, "%s%s\n", ind, nodeStr(s.Expr, opts))
	case StmtDecl:
		if s.Init != nil {
			fmt.Fprintf(w, "%svar %s: T%d = %s\n", ind, s.Var.Name, s.Var.Type, nodeStr(s.Init, opts))
		} else {
			fmt.Fprintf(w, "%svar %s: T%d\n", ind, s.Var.Name, s.Var.Type)
		}
	case StmtLabel:
		fmt.Fprintf(w, "%s%s:\n", ind, labelStr(s.Label))
	case StmtGoto:
		fmt.Fprintf(w, "%sgoto %s\n", ind, labelStr(s.Label))
	case StmtSwitch:
		fmt.Fprintf(w, "%sswitch %s {\n", ind, nodeStr(s.Expr, opts))
		dumpBlock(w, s.Body, depth+1, opts)
		fmt.Fprintf(w, "%s}\n", ind)
	case StmtCase:
		switch {
		case s.Low == nil:
			fmt.Fprintf(w, "%sdefault: goto %s\n", ind, labelStr(s.Label))
		case s.High == nil:
			fmt.Fprintf(w, "%scase %s: goto %s\n", ind, nodeStr(s.Low, opts), labelStr(s.Label))
		default:
			fmt.Fprintf(w, "%scase %s..=%s: goto %s\n", ind, nodeStr(s.Low, opts), nodeStr(s.High, opts), labelStr(s.Label))
		}
	case StmtArrayInit:
		fmt.Fprintf(w, "%sarray_init %s count=%s elem=%s\n", ind, s.Var.Name, nodeStr(s.Count, opts), nodeStr(s.Elem, opts))
	default:
		fmt.Fprintf(w, "%s<%s>\n", ind, s.Kind)
	}
}

func labelStr(l *Label) string {
	if l == nil {
		return "L?"
	}
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("L%d", l.ID)
}

func nodeStr(n *Node, opts DumpOptions) string {
	if n == nil {
		return "<nil>"
	}
	var body string
	switch n.Kind {
	case NodeError:
		return "<error>"
	case NodeUnit:
		body = "()"
	case NodeConstBool:
		body = fmt.Sprintf("%v", n.BoolVal)
	case NodeConstInt:
		body = n.IntVal.String()
	case NodeConstFloat:
		body = fmt.Sprintf("%g", n.FloatVal)
	case NodeConstString:
		body = fmt.Sprintf("%q", n.StrVal)
	case NodeConstChar:
		body = fmt.Sprintf("%q", n.CharVal)
	case NodeVar:
		body = n.Var.Name
	case NodeFuncRef:
		body = n.Name
	case NodeAddressOf:
		body = "&" + nodeStr(n.Operand, opts)
	case NodeIndirect:
		body = "*" + nodeStr(n.Operand, opts)
	case NodeField:
		body = fmt.Sprintf("%s.%d", nodeStr(n.Operand, opts), n.FieldIdx)
	case NodeConstructor:
		parts := make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			parts = append(parts, nodeStr(f, opts))
		}
		if n.IsUnion {
			body = fmt.Sprintf("{[%d]= %s}", n.FieldIdx, strings.Join(parts, ", "))
		} else {
			body = "{" + strings.Join(parts, ", ") + "}"
		}
	case NodeArrayCtor:
		parts := make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			parts = append(parts, nodeStr(f, opts))
		}
		body = "[" + strings.Join(parts, ", ") + "]"
	case NodeArrayIndex:
		body = fmt.Sprintf("%s[%s]", nodeStr(n.Operand, opts), nodeStr(n.Index, opts))
	case NodeCall:
		parts := make([]string, 0, len(n.Args))
		for _, a := range n.Args {
			parts = append(parts, nodeStr(a, opts))
		}
		body = fmt.Sprintf("%s(%s)", nodeStr(n.Callee, opts), strings.Join(parts, ", "))
	case NodeBinary:
		body = fmt.Sprintf("(%s %s %s)", nodeStr(n.Left, opts), n.Bin, nodeStr(n.Right, opts))
	case NodeNegation:
		body = fmt.Sprintf("%s%s", n.Un, nodeStr(n.Operand, opts))
	case NodeCompound:
		body = fmt.Sprintf("({...} -> %s)", nodeStr(n.Value, opts))
	default:
		body = "<" + n.Kind.String() + ">"
	}
	if opts.Types {
		return fmt.Sprintf("%s:T%d", body, n.Type)
	}
	return body
}
