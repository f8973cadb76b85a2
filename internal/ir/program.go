package ir

// Program is a set of classes plus the test vectors the harness replays.
type Program struct {
	Classes []*Class
	Tests   []TestCase
}

// Class is a declaring type: the unit that owns a selector and a live set.
type Class struct {
	Name    string
	Fields  []Field
	Methods []*Method
}

// Field declares a class field.
type Field struct {
	Name   string
	T      Type
	Static bool
}

// Method is a method body together with its signature and locals.
type Method struct {
	Class  string
	Name   string
	Params []*Local
	Return Type
	Locals []*Local
	Body   []Stmt
}

// TestCase invokes Class.Method with textual arguments parsed against the
// method's parameter types.
type TestCase struct {
	Class  string
	Method string
	Args   []string
}

// Class returns the class named name, or nil.
func (p *Program) Class(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Method returns the method named name, or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// Field returns the field named name.
func (c *Class) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Local resolves a parameter or local by name.
func (m *Method) Local(name string) *Local {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}

	for _, l := range m.Locals {
		if l.Name == name {
			return l
		}
	}

	return nil
}

// QualifiedName returns "Class.Method".
func (m *Method) QualifiedName() string {
	return m.Class + "." + m.Name
}

// WithBody returns a copy of m that shares the signature but owns body and locals.
func (m *Method) WithBody(body []Stmt, locals []*Local) *Method {
	return &Method{
		Class:  m.Class,
		Name:   m.Name,
		Params: m.Params,
		Return: m.Return,
		Locals: locals,
		Body:   body,
	}
}
