package ir

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProgram is returned when a program document cannot be converted
// into IR (unknown locals, operators or empty one-of nodes).
var ErrInvalidProgram = errors.New("invalid program")

type programDoc struct {
	Classes []classDoc `yaml:"classes"`
	Tests   []testDoc  `yaml:"tests,omitempty"`
}

type classDoc struct {
	Name    string      `yaml:"name"`
	Fields  []fieldDoc  `yaml:"fields,omitempty"`
	Methods []methodDoc `yaml:"methods,omitempty"`
}

type fieldDoc struct {
	Name   string `yaml:"name"`
	Type   Type   `yaml:"type"`
	Static bool   `yaml:"static,omitempty"`
}

type varDoc struct {
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`
}

type methodDoc struct {
	Name   string    `yaml:"name"`
	Params []varDoc  `yaml:"params,omitempty"`
	Return Type      `yaml:"return"`
	Locals []varDoc  `yaml:"locals,omitempty"`
	Body   []stmtDoc `yaml:"body"`
}

type testDoc struct {
	Class  string   `yaml:"class"`
	Method string   `yaml:"method"`
	Args   []string `yaml:"args,omitempty,flow"`
}

type valueDoc struct {
	Local      *string        `yaml:"local,omitempty"`
	Const      *constDoc      `yaml:"const,omitempty"`
	String     *string        `yaml:"string,omitempty"`
	Nil        bool           `yaml:"nil,omitempty"`
	Binop      *binopDoc      `yaml:"binop,omitempty"`
	Unop       *unopDoc       `yaml:"unop,omitempty"`
	Cmp        *cmpDoc        `yaml:"cmp,omitempty"`
	Cast       *castDoc       `yaml:"cast,omitempty"`
	Field      *fieldRefDoc   `yaml:"field,omitempty"`
	Index      *indexDoc      `yaml:"index,omitempty"`
	Call       *callDoc       `yaml:"call,omitempty"`
	New        *string        `yaml:"new,omitempty"`
	NewArray   *newArrayDoc   `yaml:"newarray,omitempty"`
	InstanceOf *instanceOfDoc `yaml:"instanceof,omitempty"`
}

type constDoc struct {
	Type  Type   `yaml:"type"`
	Value string `yaml:"value"`
}

type binopDoc struct {
	Op   string   `yaml:"op"`
	X    valueDoc `yaml:"x"`
	Y    valueDoc `yaml:"y"`
	Type *Type    `yaml:"type,omitempty"`
}

type unopDoc struct {
	Op   string   `yaml:"op"`
	X    valueDoc `yaml:"x"`
	Type *Type    `yaml:"type,omitempty"`
}

type cmpDoc struct {
	Op string   `yaml:"op"`
	X  valueDoc `yaml:"x"`
	Y  valueDoc `yaml:"y"`
}

type castDoc struct {
	To Type     `yaml:"to"`
	X  valueDoc `yaml:"x"`
}

type fieldRefDoc struct {
	Class  string    `yaml:"class"`
	Name   string    `yaml:"name"`
	Type   *Type     `yaml:"type,omitempty"`
	Object *valueDoc `yaml:"object,omitempty"`
}

type indexDoc struct {
	Array valueDoc `yaml:"array"`
	Index valueDoc `yaml:"index"`
	Type  Type     `yaml:"type"`
}

type callDoc struct {
	Kind     string     `yaml:"kind,omitempty"`
	Class    string     `yaml:"class,omitempty"`
	Method   string     `yaml:"method"`
	Receiver *valueDoc  `yaml:"receiver,omitempty"`
	Params   []Type     `yaml:"params,omitempty,flow"`
	Args     []valueDoc `yaml:"args,omitempty"`
	Return   *Type      `yaml:"return,omitempty"`
}

type newArrayDoc struct {
	Elem Type     `yaml:"elem"`
	Size valueDoc `yaml:"size"`
}

type instanceOfDoc struct {
	X     valueDoc `yaml:"x"`
	Class string   `yaml:"class"`
}

type stmtDoc struct {
	Assign *assignDoc `yaml:"assign,omitempty"`
	If     *ifDoc     `yaml:"if,omitempty"`
	Goto   *string    `yaml:"goto,omitempty"`
	Invoke *callDoc   `yaml:"invoke,omitempty"`
	Switch *switchDoc `yaml:"switch,omitempty"`
	Return *valueDoc  `yaml:"return,omitempty"`
	Label  *string    `yaml:"label,omitempty"`
}

type assignDoc struct {
	Dst valueDoc `yaml:"dst"`
	Src valueDoc `yaml:"src"`
}

type ifDoc struct {
	Cond valueDoc `yaml:"cond"`
	Goto string   `yaml:"goto"`
}

type switchDoc struct {
	Key     valueDoc  `yaml:"key"`
	Cases   []caseDoc `yaml:"cases,omitempty"`
	Default string    `yaml:"default"`
}

type caseDoc struct {
	Value int64  `yaml:"value"`
	Goto  string `yaml:"goto"`
}

var callKindNames = map[CallKind]string{CallStatic: "static", CallVirtual: "virtual", CallBuiltin: "builtin"}

// Decode parses a YAML program document.
func Decode(data []byte) (*Program, error) {
	var doc programDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}

	return fromDoc(doc)
}

// Encode renders a program as a YAML document that Decode accepts.
func Encode(p *Program) ([]byte, error) {
	return yaml.Marshal(toDoc(p))
}

func fromDoc(doc programDoc) (*Program, error) {
	p := &Program{}

	// Signatures first so calls and field reads can be typed from declarations.
	for _, cd := range doc.Classes {
		c := &Class{Name: cd.Name}
		for _, fd := range cd.Fields {
			c.Fields = append(c.Fields, Field{Name: fd.Name, T: fd.Type, Static: fd.Static})
		}

		for _, md := range cd.Methods {
			m := &Method{Class: cd.Name, Name: md.Name, Return: md.Return}
			for _, v := range md.Params {
				m.Params = append(m.Params, &Local{Name: v.Name, T: v.Type})
			}

			for _, v := range md.Locals {
				m.Locals = append(m.Locals, &Local{Name: v.Name, T: v.Type})
			}

			c.Methods = append(c.Methods, m)
		}

		p.Classes = append(p.Classes, c)
	}

	for ci, cd := range doc.Classes {
		for mi, md := range cd.Methods {
			m := p.Classes[ci].Methods[mi]
			d := &decoder{program: p, method: m}

			for si, sd := range md.Body {
				s, err := d.stmt(sd)
				if err != nil {
					return nil, fmt.Errorf("%s statement %d: %w", m.QualifiedName(), si, err)
				}

				m.Body = append(m.Body, s)
			}
		}
	}

	for _, td := range doc.Tests {
		p.Tests = append(p.Tests, TestCase{Class: td.Class, Method: td.Method, Args: td.Args})
	}

	return p, nil
}

type decoder struct {
	program *Program
	method  *Method
}

func (d *decoder) stmt(sd stmtDoc) (Stmt, error) {
	switch {
	case sd.Assign != nil:
		dst, err := d.value(sd.Assign.Dst)
		if err != nil {
			return nil, err
		}

		src, err := d.value(sd.Assign.Src)
		if err != nil {
			return nil, err
		}

		return &Assign{Dst: dst, Src: src}, nil
	case sd.If != nil:
		cond, err := d.value(sd.If.Cond)
		if err != nil {
			return nil, err
		}

		return &If{Cond: cond, Target: Label(sd.If.Goto)}, nil
	case sd.Goto != nil:
		return &Goto{Target: Label(*sd.Goto)}, nil
	case sd.Invoke != nil:
		call, err := d.call(sd.Invoke)
		if err != nil {
			return nil, err
		}

		return &Invoke{Call: call}, nil
	case sd.Switch != nil:
		key, err := d.value(sd.Switch.Key)
		if err != nil {
			return nil, err
		}

		sw := &Switch{Key: key, Default: Label(sd.Switch.Default)}
		for _, c := range sd.Switch.Cases {
			sw.Cases = append(sw.Cases, Case{Value: c.Value, Target: Label(c.Goto)})
		}

		return sw, nil
	case sd.Return != nil:
		if sd.Return.empty() {
			return &Return{}, nil
		}

		v, err := d.value(*sd.Return)
		if err != nil {
			return nil, err
		}

		return &Return{Value: v}, nil
	case sd.Label != nil:
		return &Mark{Label: Label(*sd.Label)}, nil
	default:
		return nil, fmt.Errorf("%w: empty statement", ErrInvalidProgram)
	}
}

//nolint:gocyclo // One arm per expression kind.
func (d *decoder) value(vd valueDoc) (Value, error) {
	switch {
	case vd.Local != nil:
		l := d.method.Local(*vd.Local)
		if l == nil {
			return nil, fmt.Errorf("%w: unknown local %q", ErrInvalidProgram, *vd.Local)
		}

		return l, nil
	case vd.Const != nil:
		return parseConst(vd.Const.Type, vd.Const.Value)
	case vd.String != nil:
		return &StringConst{S: *vd.String}, nil
	case vd.Nil:
		return &Null{}, nil
	case vd.Binop != nil:
		return d.binary(vd.Binop)
	case vd.Unop != nil:
		x, err := d.value(vd.Unop.X)
		if err != nil {
			return nil, err
		}

		op, err := lookupOp(unaryOpNames, vd.Unop.Op)
		if err != nil {
			return nil, err
		}

		t := x.Type()
		if op == Len {
			t = Int
		}

		if vd.Unop.Type != nil {
			t = *vd.Unop.Type
		}

		return &Unary{Op: op, X: x, T: t}, nil
	case vd.Cmp != nil:
		op, err := lookupOp(cmpOpNames, vd.Cmp.Op)
		if err != nil {
			return nil, err
		}

		x, y, err := d.pair(vd.Cmp.X, vd.Cmp.Y)
		if err != nil {
			return nil, err
		}

		return &Compare{Op: op, X: x, Y: y}, nil
	case vd.Cast != nil:
		x, err := d.value(vd.Cast.X)
		if err != nil {
			return nil, err
		}

		return &Cast{X: x, To: vd.Cast.To}, nil
	case vd.Field != nil:
		return d.field(vd.Field)
	case vd.Index != nil:
		arr, idx, err := d.pair(vd.Index.Array, vd.Index.Index)
		if err != nil {
			return nil, err
		}

		return &ArrayRef{Array: arr, Index: idx, T: vd.Index.Type}, nil
	case vd.Call != nil:
		return d.call(vd.Call)
	case vd.New != nil:
		return &NewObject{Class: *vd.New}, nil
	case vd.NewArray != nil:
		size, err := d.value(vd.NewArray.Size)
		if err != nil {
			return nil, err
		}

		return &NewArray{Elem: vd.NewArray.Elem, Size: size}, nil
	case vd.InstanceOf != nil:
		x, err := d.value(vd.InstanceOf.X)
		if err != nil {
			return nil, err
		}

		return &InstanceOf{X: x, Class: vd.InstanceOf.Class}, nil
	default:
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidProgram)
	}
}

func (d *decoder) pair(a, b valueDoc) (Value, Value, error) {
	x, err := d.value(a)
	if err != nil {
		return nil, nil, err
	}

	y, err := d.value(b)
	if err != nil {
		return nil, nil, err
	}

	return x, y, nil
}

func (d *decoder) binary(bd *binopDoc) (Value, error) {
	op, err := lookupOp(binaryOpNames, bd.Op)
	if err != nil {
		return nil, err
	}

	x, y, err := d.pair(bd.X, bd.Y)
	if err != nil {
		return nil, err
	}

	t := x.Type()
	if bd.Type != nil {
		t = *bd.Type
	}

	return &Binary{Op: op, X: x, Y: y, T: t}, nil
}

func (d *decoder) field(fd *fieldRefDoc) (Value, error) {
	ref := &FieldRef{Class: fd.Class, Name: fd.Name}

	if fd.Object != nil {
		obj, err := d.value(*fd.Object)
		if err != nil {
			return nil, err
		}

		ref.Object = obj
	}

	switch {
	case fd.Type != nil:
		ref.T = *fd.Type
	default:
		c := d.program.Class(fd.Class)
		if c == nil {
			return nil, fmt.Errorf("%w: unknown class %q", ErrInvalidProgram, fd.Class)
		}

		f, ok := c.Field(fd.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %s.%s", ErrInvalidProgram, fd.Class, fd.Name)
		}

		ref.T = f.T
	}

	return ref, nil
}

func (d *decoder) call(cd *callDoc) (*Call, error) {
	call := &Call{Class: cd.Class, Method: cd.Method, Params: cd.Params}

	switch cd.Kind {
	case "", "static":
		call.Kind = CallStatic
	case "virtual":
		call.Kind = CallVirtual
	case "builtin":
		call.Kind = CallBuiltin
	default:
		return nil, fmt.Errorf("%w: unknown call kind %q", ErrInvalidProgram, cd.Kind)
	}

	if cd.Receiver != nil {
		recv, err := d.value(*cd.Receiver)
		if err != nil {
			return nil, err
		}

		call.Receiver = recv
	}

	for _, ad := range cd.Args {
		arg, err := d.value(ad)
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, arg)
	}

	if cd.Return != nil {
		call.Ret = *cd.Return
	}

	// Fill the signature from the declaring method when the document omits it.
	if c := d.program.Class(cd.Class); c != nil && call.Kind != CallBuiltin {
		if target := c.Method(cd.Method); target != nil {
			if call.Params == nil {
				for _, p := range target.Params {
					call.Params = append(call.Params, p.T)
				}
			}

			if cd.Return == nil {
				call.Ret = target.Return
			}
		}
	}

	if call.Params == nil {
		for _, a := range call.Args {
			call.Params = append(call.Params, a.Type())
		}
	}

	if len(call.Params) != len(call.Args) {
		return nil, fmt.Errorf("%w: %s.%s expects %d arguments, got %d",
			ErrInvalidProgram, cd.Class, cd.Method, len(call.Params), len(call.Args))
	}

	return call, nil
}

func lookupOp[T comparable](names map[T]string, name string) (T, error) {
	for op, n := range names {
		if n == name {
			return op, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("%w: unknown operator %q", ErrInvalidProgram, name)
}

func parseConst(t Type, text string) (*Const, error) {
	switch {
	case t == Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
		}

		return BoolConst(b), nil
	case t.IsIntegral():
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
		}

		return IntConst(t, n), nil
	case t.IsFloating():
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
		}

		return FloatConst(t, f), nil
	default:
		return nil, fmt.Errorf("%w: constant of type %s", ErrInvalidProgram, t)
	}
}

func (vd valueDoc) empty() bool {
	return vd == valueDoc{}
}

func toDoc(p *Program) programDoc {
	doc := programDoc{}

	for _, c := range p.Classes {
		cd := classDoc{Name: c.Name}
		for _, f := range c.Fields {
			cd.Fields = append(cd.Fields, fieldDoc{Name: f.Name, Type: f.T, Static: f.Static})
		}

		for _, m := range c.Methods {
			md := methodDoc{Name: m.Name, Return: m.Return, Params: varDocs(m.Params), Locals: varDocs(m.Locals)}
			for _, s := range m.Body {
				md.Body = append(md.Body, stmtToDoc(s))
			}

			cd.Methods = append(cd.Methods, md)
		}

		doc.Classes = append(doc.Classes, cd)
	}

	for _, tc := range p.Tests {
		doc.Tests = append(doc.Tests, testDoc{Class: tc.Class, Method: tc.Method, Args: tc.Args})
	}

	return doc
}

func varDocs(locals []*Local) []varDoc {
	out := make([]varDoc, 0, len(locals))
	for _, l := range locals {
		out = append(out, varDoc{Name: l.Name, Type: l.T})
	}

	return out
}

func stmtToDoc(s Stmt) stmtDoc {
	switch st := s.(type) {
	case *Assign:
		return stmtDoc{Assign: &assignDoc{Dst: valueToDoc(st.Dst), Src: valueToDoc(st.Src)}}
	case *If:
		return stmtDoc{If: &ifDoc{Cond: valueToDoc(st.Cond), Goto: string(st.Target)}}
	case *Goto:
		target := string(st.Target)
		return stmtDoc{Goto: &target}
	case *Invoke:
		return stmtDoc{Invoke: callToDoc(st.Call)}
	case *Switch:
		sd := &switchDoc{Key: valueToDoc(st.Key), Default: string(st.Default)}
		for _, c := range st.Cases {
			sd.Cases = append(sd.Cases, caseDoc{Value: c.Value, Goto: string(c.Target)})
		}

		return stmtDoc{Switch: sd}
	case *Return:
		if st.Value == nil {
			return stmtDoc{Return: &valueDoc{}}
		}

		v := valueToDoc(st.Value)

		return stmtDoc{Return: &v}
	case *Mark:
		label := string(st.Label)
		return stmtDoc{Label: &label}
	default:
		return stmtDoc{}
	}
}

func valueToDoc(v Value) valueDoc {
	switch val := v.(type) {
	case *Local:
		name := val.Name
		return valueDoc{Local: &name}
	case *Const:
		return valueDoc{Const: &constDoc{Type: val.T, Value: constText(val)}}
	case *StringConst:
		s := val.S
		return valueDoc{String: &s}
	case *Null:
		return valueDoc{Nil: true}
	case *Binary:
		t := val.T
		return valueDoc{Binop: &binopDoc{Op: val.Op.String(), X: valueToDoc(val.X), Y: valueToDoc(val.Y), Type: &t}}
	case *Unary:
		t := val.T
		return valueDoc{Unop: &unopDoc{Op: val.Op.String(), X: valueToDoc(val.X), Type: &t}}
	case *Compare:
		return valueDoc{Cmp: &cmpDoc{Op: val.Op.String(), X: valueToDoc(val.X), Y: valueToDoc(val.Y)}}
	case *Cast:
		return valueDoc{Cast: &castDoc{To: val.To, X: valueToDoc(val.X)}}
	case *FieldRef:
		t := val.T
		fd := &fieldRefDoc{Class: val.Class, Name: val.Name, Type: &t}

		if val.Object != nil {
			obj := valueToDoc(val.Object)
			fd.Object = &obj
		}

		return valueDoc{Field: fd}
	case *ArrayRef:
		return valueDoc{Index: &indexDoc{Array: valueToDoc(val.Array), Index: valueToDoc(val.Index), Type: val.T}}
	case *Call:
		return valueDoc{Call: callToDoc(val)}
	case *NewObject:
		class := val.Class
		return valueDoc{New: &class}
	case *NewArray:
		return valueDoc{NewArray: &newArrayDoc{Elem: val.Elem, Size: valueToDoc(val.Size)}}
	case *InstanceOf:
		return valueDoc{InstanceOf: &instanceOfDoc{X: valueToDoc(val.X), Class: val.Class}}
	default:
		return valueDoc{}
	}
}

func callToDoc(c *Call) *callDoc {
	ret := c.Ret
	cd := &callDoc{Kind: callKindNames[c.Kind], Class: c.Class, Method: c.Method, Params: c.Params, Return: &ret}

	if c.Receiver != nil {
		recv := valueToDoc(c.Receiver)
		cd.Receiver = &recv
	}

	for _, a := range c.Args {
		cd.Args = append(cd.Args, valueToDoc(a))
	}

	return cd
}

func constText(c *Const) string {
	switch {
	case c.T == Bool:
		return strconv.FormatBool(c.I != 0)
	case c.T == Float:
		return strconv.FormatFloat(c.F, 'g', -1, 32)
	case c.T.IsFloating():
		return strconv.FormatFloat(c.F, 'g', -1, 64)
	default:
		return strconv.FormatInt(c.I, 10)
	}
}
