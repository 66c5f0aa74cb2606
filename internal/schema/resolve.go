package schema

import (
	"context"
	"fmt"
	"strings"

	language "github.com/gqlexec/gqlexec/internal/language"
)

// PathElement is a string response key or an int list index.
type PathElement any

// Path locates a value (or error) within the response tree. It is only used
// for error attribution, never for data lookup.
type Path []PathElement

// With returns a new path with elem appended. The receiver is not modified.
func (p Path) With(elem PathElement) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = elem
	return next
}

func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		}
	}
	return b.String()
}

// ResolveInfo is a read-only snapshot of the execution state surrounding one
// field invocation. A fresh value is constructed per invocation and must not
// be mutated by resolvers.
type ResolveInfo struct {
	FieldName      string
	FieldNodes     []*language.Field
	ReturnType     *TypeRef
	ParentType     *Type
	Path           Path
	Schema         *Schema
	Fragments      map[string]*language.FragmentDefinition
	RootValue      any
	Operation      *language.OperationDefinition
	VariableValues map[string]any
}

// ResolveFunc produces a field's raw value from its parent value and
// arguments. It may block on I/O; failures are signalled through the error
// return and become located field errors.
type ResolveFunc func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error)

// TypeResolveFunc names the concrete object type for a value of an abstract
// type. Returning "" means the type could not be determined.
type TypeResolveFunc func(ctx context.Context, value any, info *ResolveInfo) string

// IsTypeOfFunc reports whether a runtime value is an instance of the
// declaring object type.
type IsTypeOfFunc func(value any) bool

// SerializeFunc converts an internal scalar value to its JSON-safe form.
type SerializeFunc func(value any) (any, error)

// ParseValueFunc coerces an externally supplied (variable) value to the
// scalar's internal form.
type ParseValueFunc func(value any) (any, error)

// ParseLiteralFunc coerces an AST literal to the scalar's internal form.
type ParseLiteralFunc func(value *language.Value) (any, error)

// SerializeLeaf serializes a scalar or enum result value. For enums the
// internal value is mapped back to its symbolic name.
func (t *Type) SerializeLeaf(value any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.Serialize != nil {
			return t.Serialize(value)
		}
		return value, nil
	case TypeKindEnum:
		for _, ev := range t.EnumValues {
			if ev.Value == value || ev.Name == value {
				return ev.Name, nil
			}
		}
		return nil, fmt.Errorf("value %v is not a value of enum %s", value, t.Name)
	}
	return nil, fmt.Errorf("type %s is not a leaf type", t.Name)
}

// ParseLeafValue coerces an input value for a scalar or enum. For enums the
// symbolic name is mapped to its internal value.
func (t *Type) ParseLeafValue(value any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.ParseValue != nil {
			return t.ParseValue(value)
		}
		return value, nil
	case TypeKindEnum:
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("enum %s cannot represent non-string value %v", t.Name, value)
		}
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return ev.Value, nil
			}
		}
		return nil, fmt.Errorf("value %q is not a value of enum %s", name, t.Name)
	}
	return nil, fmt.Errorf("type %s is not a leaf type", t.Name)
}

// ParseLeafLiteral coerces an AST literal for a scalar or enum.
func (t *Type) ParseLeafLiteral(value *language.Value) (any, error) {
	if t.Kind == TypeKindScalar && t.ParseLiteral != nil {
		return t.ParseLiteral(value)
	}
	return t.ParseLeafValue(literalGoValue(value))
}

// literalGoValue converts an AST literal to a plain Go value without any
// type direction. Variables are not resolved here.
func literalGoValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.IntValue:
		iv, _ := parseInt(v.Raw)
		return iv
	case language.FloatValue:
		fv, _ := parseFloat(v.Raw)
		return fv
	case language.StringValue, language.BlockValue, language.EnumValue:
		return v.Raw
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = literalGoValue(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, f := range v.Children {
			m[f.Name] = literalGoValue(f.Value)
		}
		return m
	default:
		return nil
	}
}
