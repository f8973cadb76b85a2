package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders v in a compact Jimple-like syntax.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case *Local:
		return val.Name
	case *Const:
		return formatConst(val)
	case *StringConst:
		return strconv.Quote(val.S)
	case *Null:
		return "null"
	case *Binary:
		return operand(val.X) + " " + val.Op.Symbol() + " " + operand(val.Y)
	case *Unary:
		switch val.Op {
		case Neg:
			return "-" + operand(val.X)
		case Not:
			return "!" + operand(val.X)
		default:
			return "lengthof " + operand(val.X)
		}
	case *Compare:
		return operand(val.X) + " " + val.Op.Symbol() + " " + operand(val.Y)
	case *Cast:
		return "(" + val.To.String() + ") " + operand(val.X)
	case *FieldRef:
		if val.Object == nil {
			return val.Class + "." + val.Name
		}

		return operand(val.Object) + "." + val.Name
	case *ArrayRef:
		return operand(val.Array) + "[" + FormatValue(val.Index) + "]"
	case *Call:
		return formatCall(val)
	case *NewObject:
		return "new " + val.Class
	case *NewArray:
		return "new " + val.Elem.String() + "[" + FormatValue(val.Size) + "]"
	case *InstanceOf:
		return operand(val.X) + " instanceof " + val.Class
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

func operand(v Value) string {
	switch v.(type) {
	case *Binary, *Compare, *Cast, *InstanceOf:
		return "(" + FormatValue(v) + ")"
	default:
		return FormatValue(v)
	}
}

func formatConst(c *Const) string {
	switch c.T {
	case Bool:
		return strconv.FormatBool(c.I != 0)
	case Long:
		return strconv.FormatInt(c.I, 10) + "L"
	case Float:
		return strconv.FormatFloat(c.F, 'g', -1, 32) + "F"
	case Double:
		return strconv.FormatFloat(c.F, 'g', -1, 64)
	default:
		return strconv.FormatInt(c.I, 10)
	}
}

func formatCall(c *Call) string {
	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, FormatValue(a))
	}

	joined := strings.Join(args, ", ")

	switch c.Kind {
	case CallBuiltin:
		if c.Class != "" {
			return "@" + c.Method + "<" + c.Class + ">(" + joined + ")"
		}

		return "@" + c.Method + "(" + joined + ")"
	case CallVirtual:
		return operand(c.Receiver) + "." + c.Method + "(" + joined + ")"
	default:
		return c.Class + "." + c.Method + "(" + joined + ")"
	}
}

// FormatStmt renders a single statement.
func FormatStmt(s Stmt) string {
	switch st := s.(type) {
	case *Assign:
		return FormatValue(st.Dst) + " = " + FormatValue(st.Src)
	case *If:
		return "if " + FormatValue(st.Cond) + " goto " + string(st.Target)
	case *Goto:
		return "goto " + string(st.Target)
	case *Invoke:
		return FormatValue(st.Call)
	case *Switch:
		arms := make([]string, 0, len(st.Cases)+1)
		for _, c := range st.Cases {
			arms = append(arms, fmt.Sprintf("case %d: goto %s", c.Value, c.Target))
		}

		arms = append(arms, "default: goto "+string(st.Default))

		return "switch " + FormatValue(st.Key) + " { " + strings.Join(arms, "; ") + " }"
	case *Return:
		if st.Value == nil {
			return "return"
		}

		return "return " + FormatValue(st.Value)
	case *Mark:
		return string(st.Label) + ":"
	default:
		return fmt.Sprintf("<%T>", s)
	}
}

// FormatMethod renders a method with its signature, locals and body.
func FormatMethod(m *Method) string {
	var b strings.Builder

	params := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, p.T.String()+" "+p.Name)
	}

	fmt.Fprintf(&b, "%s %s(%s) {\n", m.Return, m.QualifiedName(), strings.Join(params, ", "))

	for _, l := range m.Locals {
		fmt.Fprintf(&b, "    %s %s;\n", l.T, l.Name)
	}

	if len(m.Locals) > 0 {
		b.WriteString("\n")
	}

	for _, s := range m.Body {
		if _, ok := s.(*Mark); ok {
			fmt.Fprintf(&b, "  %s\n", FormatStmt(s))
			continue
		}

		fmt.Fprintf(&b, "    %s;\n", FormatStmt(s))
	}

	b.WriteString("}\n")

	return b.String()
}

// FormatProgram renders every method of every class.
func FormatProgram(p *Program) string {
	var b strings.Builder

	for _, c := range p.Classes {
		fmt.Fprintf(&b, "class %s {\n", c.Name)

		for _, f := range c.Fields {
			modifier := ""
			if f.Static {
				modifier = "static "
			}

			fmt.Fprintf(&b, "  %s%s %s;\n", modifier, f.T, f.Name)
		}

		for _, m := range c.Methods {
			b.WriteString("\n")
			b.WriteString(FormatMethod(m))
		}

		b.WriteString("}\n")
	}

	return b.String()
}
