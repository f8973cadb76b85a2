// Package ir defines the typed intermediate representation that the weaver
// rewrites: programs, classes, methods, statements and expressions.
package ir

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type is the static type carried by every IR value.
type Type int

// Supported static types.
const (
	Void Type = iota
	Bool
	Byte
	Short
	Int
	Long
	Float
	Double
	Ref
)

var typeNames = map[Type]string{
	Void:   "void",
	Bool:   "boolean",
	Byte:   "byte",
	Short:  "short",
	Int:    "int",
	Long:   "long",
	Float:  "float",
	Double: "double",
	Ref:    "ref",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType converts a type name into a Type.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "bool" {
		return Bool, nil
	}

	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}

	return Void, fmt.Errorf("unknown type %q", name)
}

// IsIntegral reports whether t belongs to the integer family (byte, short, int, long).
func (t Type) IsIntegral() bool {
	return t == Byte || t == Short || t == Int || t == Long
}

// IsFloating reports whether t is float or double.
func (t Type) IsFloating() bool {
	return t == Float || t == Double
}

// IsNumeric reports whether t is an integer or floating type. Booleans are not numeric.
func (t Type) IsNumeric() bool {
	return t.IsIntegral() || t.IsFloating()
}

// IsPrimitive reports whether values of t can be held in a mutation temp.
func (t Type) IsPrimitive() bool {
	return t == Bool || t.IsNumeric()
}

// MarshalYAML implements yaml.Marshaler.
func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseType(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*t = parsed

	return nil
}
