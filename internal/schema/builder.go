package schema

import (
	"fmt"

	language "github.com/gqlexec/gqlexec/internal/language"
)

// ScalarCapabilities carries the coercion hooks for a custom scalar.
// Nil members fall back to identity behavior.
type ScalarCapabilities struct {
	Serialize    SerializeFunc
	ParseValue   ParseValueFunc
	ParseLiteral ParseLiteralFunc
}

// Resolvers binds runtime behavior onto an SDL-defined schema.
//
// Fields is keyed "Type.field". TypeResolvers and IsTypeOf are keyed by type
// name. Scalars attaches capabilities to custom scalar declarations.
type Resolvers struct {
	Fields        map[string]ResolveFunc
	TypeResolvers map[string]TypeResolveFunc
	IsTypeOf      map[string]IsTypeOfFunc
	Scalars       map[string]ScalarCapabilities
}

// FromSDL builds an executable schema from a parsed SDL document, binding the
// supplied resolver map onto it. Definitions and type extensions are merged;
// interface and union membership is registered on the abstract types so the
// executor's possible-type queries work without further wiring.
func FromSDL(doc *language.SchemaDocument, res Resolvers) (*Schema, error) {
	s := NewSchema("")

	defs := make(language.DefinitionList, 0, len(doc.Definitions)+len(doc.Extensions))
	defs = append(defs, doc.Definitions...)
	defs = append(defs, doc.Extensions...)

	// First pass: create types and fields. Argument and input-field defaults
	// need the full type map, so they are converted in a second pass.
	type pendingDefault struct {
		target  *InputValue
		literal *language.Value
	}
	var pending []pendingDefault

	convertArgs := func(args language.ArgumentDefinitionList) []*InputValue {
		out := make([]*InputValue, 0, len(args))
		for _, a := range args {
			iv := NewInputValue(a.Name, a.Description, typeRefFromSDL(a.Type))
			if a.DefaultValue != nil {
				pending = append(pending, pendingDefault{target: iv, literal: a.DefaultValue})
			}
			out = append(out, iv)
		}
		return out
	}

	for _, def := range defs {
		t := s.Types[def.Name]
		if t == nil {
			t = NewType(def.Name, kindFromSDL(def.Kind), def.Description)
			s.AddType(t)
		}
		switch def.Kind {
		case language.Object, language.Interface:
			for _, iface := range def.Interfaces {
				t.AddInterface(iface)
			}
			for _, fd := range def.Fields {
				f := NewField(fd.Name, fd.Description, typeRefFromSDL(fd.Type))
				for _, a := range convertArgs(fd.Arguments) {
					f.AddArgument(a)
				}
				t.AddField(f)
			}
		case language.Union:
			for _, member := range def.Types {
				t.AddPossibleType(member)
			}
		case language.Enum:
			for _, ev := range def.EnumValues {
				t.AddEnumValue(NewEnumValue(ev.Name, ev.Description))
			}
		case language.InputObject:
			for _, fd := range def.Fields {
				iv := NewInputValue(fd.Name, fd.Description, typeRefFromSDL(fd.Type))
				if fd.DefaultValue != nil {
					pending = append(pending, pendingDefault{target: iv, literal: fd.DefaultValue})
				}
				t.AddInputField(iv)
			}
		case language.Scalar:
			// capabilities attached below
		default:
			return nil, fmt.Errorf("unsupported definition kind %q for type %s", def.Kind, def.Name)
		}
	}

	// Register objects on the interfaces they implement.
	for _, t := range s.Types {
		if t.Kind != TypeKindObject {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			iface := s.Types[ifaceName]
			if iface == nil || iface.Kind != TypeKindInterface {
				return nil, fmt.Errorf("type %s implements unknown interface %s", t.Name, ifaceName)
			}
			iface.AddPossibleType(t.Name)
		}
	}

	for _, pd := range pending {
		v, err := literalValue(s, pd.literal, pd.target.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid default value for %s: %w", pd.target.Name, err)
		}
		pd.target.SetDefault(v)
	}

	// Root operation types.
	for _, sd := range doc.Schema {
		for _, ot := range sd.OperationTypes {
			switch ot.Operation {
			case language.Query:
				s.SetQueryType(ot.Type)
			case language.Mutation:
				s.SetMutationType(ot.Type)
			case language.Subscription:
				s.SetSubscriptionType(ot.Type)
			}
		}
	}
	if s.QueryType == "" {
		if _, ok := s.Types["Query"]; ok {
			s.SetQueryType("Query")
		}
	}
	if s.MutationType == "" {
		if _, ok := s.Types["Mutation"]; ok {
			s.SetMutationType("Mutation")
		}
	}
	if s.SubscriptionType == "" {
		if _, ok := s.Types["Subscription"]; ok {
			s.SetSubscriptionType("Subscription")
		}
	}

	if err := bind(s, res); err != nil {
		return nil, err
	}
	return s, nil
}

func bind(s *Schema, res Resolvers) error {
	for key, fn := range res.Fields {
		typeName, fieldName, ok := splitFieldKey(key)
		if !ok {
			return fmt.Errorf("invalid resolver key %q, want \"Type.field\"", key)
		}
		t := s.Types[typeName]
		if t == nil {
			return fmt.Errorf("resolver %q references unknown type %s", key, typeName)
		}
		f := t.Field(fieldName)
		if f == nil {
			return fmt.Errorf("resolver %q references unknown field %s.%s", key, typeName, fieldName)
		}
		f.SetResolve(fn)
	}
	for name, fn := range res.TypeResolvers {
		t := s.Types[name]
		if t == nil || !t.IsAbstract() {
			return fmt.Errorf("type resolver references non-abstract type %s", name)
		}
		t.SetResolveType(fn)
	}
	for name, fn := range res.IsTypeOf {
		t := s.Types[name]
		if t == nil || t.Kind != TypeKindObject {
			return fmt.Errorf("isTypeOf references non-object type %s", name)
		}
		t.SetIsTypeOf(fn)
	}
	for name, caps := range res.Scalars {
		t := s.Types[name]
		if t == nil || t.Kind != TypeKindScalar {
			return fmt.Errorf("scalar capabilities reference non-scalar type %s", name)
		}
		if caps.Serialize != nil {
			t.Serialize = caps.Serialize
		}
		if caps.ParseValue != nil {
			t.ParseValue = caps.ParseValue
		}
		if caps.ParseLiteral != nil {
			t.ParseLiteral = caps.ParseLiteral
		}
	}
	return nil
}

func splitFieldKey(key string) (typeName, fieldName string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], i > 0 && i < len(key)-1
		}
	}
	return "", "", false
}

func kindFromSDL(kind language.DefinitionKind) TypeKind {
	switch kind {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	default:
		return TypeKindScalar
	}
}

func typeRefFromSDL(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromSDL(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(typeRefFromSDL(t.Elem))
}

// literalValue converts an AST literal to a Go value directed by the declared
// input type. Used for argument and input-field defaults, which cannot
// reference variables.
func literalValue(s *Schema, v *language.Value, ref *TypeRef) (any, error) {
	if v == nil || v.Kind == language.NullValue {
		if IsNonNull(ref) {
			return nil, fmt.Errorf("null literal for non-null type %s", ref.String())
		}
		return nil, nil
	}
	if IsNonNull(ref) {
		return literalValue(s, v, ref.Unwrap())
	}
	if IsList(ref) {
		inner := ref.Unwrap()
		if v.Kind != language.ListValue {
			single, err := literalValue(s, v, inner)
			if err != nil {
				return nil, err
			}
			return []any{single}, nil
		}
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			cv, err := literalValue(s, c.Value, inner)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	t := s.Types[ref.GetNamedType()]
	if t == nil {
		return nil, fmt.Errorf("unknown type %s", ref.GetNamedType())
	}
	switch t.Kind {
	case TypeKindScalar, TypeKindEnum:
		return t.ParseLeafLiteral(v)
	case TypeKindInputObject:
		if v.Kind != language.ObjectValue {
			return nil, fmt.Errorf("expected an input object literal for %s", t.Name)
		}
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			fd := t.InputField(c.Name)
			if fd == nil {
				return nil, fmt.Errorf("unknown field %q on input object %s", c.Name, t.Name)
			}
			cv, err := literalValue(s, c.Value, fd.Type)
			if err != nil {
				return nil, err
			}
			m[c.Name] = cv
		}
		for _, fd := range t.InputFields {
			if _, present := m[fd.Name]; !present && fd.HasDefault {
				m[fd.Name] = fd.DefaultValue
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("type %s cannot be used in input position", t.Name)
	}
}
