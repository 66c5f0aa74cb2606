package schema

import (
	"fmt"
	"strconv"

	language "github.com/gqlexec/gqlexec/internal/language"
)

var stringType = &Type{
	Name:        "String",
	Kind:        TypeKindScalar,
	Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	Serialize:   serializeString,
	ParseValue:  parseStringValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind == language.StringValue || v.Kind == language.BlockValue {
			return v.Raw, nil
		}
		return nil, fmt.Errorf("String cannot represent a non-string literal")
	},
}

var intType = &Type{
	Name:        "Int",
	Kind:        TypeKindScalar,
	Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
	Serialize:   parseIntValue,
	ParseValue:  parseIntValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.IntValue {
			return nil, fmt.Errorf("Int cannot represent a non-integer literal")
		}
		return parseInt(v.Raw)
	},
}

var floatType = &Type{
	Name:        "Float",
	Kind:        TypeKindScalar,
	Description: "The `Float` scalar type represents signed double-precision fractional values.",
	Serialize:   parseFloatValue,
	ParseValue:  parseFloatValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.IntValue && v.Kind != language.FloatValue {
			return nil, fmt.Errorf("Float cannot represent a non-numeric literal")
		}
		return parseFloat(v.Raw)
	},
}

var booleanType = &Type{
	Name:        "Boolean",
	Kind:        TypeKindScalar,
	Description: "The `Boolean` scalar type represents `true` or `false`.",
	Serialize:   parseBooleanValue,
	ParseValue:  parseBooleanValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.BooleanValue {
			return nil, fmt.Errorf("Boolean cannot represent a non-boolean literal")
		}
		return v.Raw == "true", nil
	},
}

var idType = &Type{
	Name:        "ID",
	Kind:        TypeKindScalar,
	Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	Serialize:   parseIDValue,
	ParseValue:  parseIDValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind == language.StringValue || v.Kind == language.IntValue {
			return v.Raw, nil
		}
		return nil, fmt.Errorf("ID cannot represent a non-string, non-integer literal")
	},
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        &TypeRef{Kind: TypeRefKindNonNull, OfType: &TypeRef{Kind: TypeRefKindNamed, Named: "Boolean"}},
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        &TypeRef{Kind: TypeRefKindNonNull, OfType: &TypeRef{Kind: TypeRefKindNamed, Named: "Boolean"}},
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

func parseInt(raw string) (any, error) {
	iv, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot coerce %q to Int", raw)
	}
	return iv, nil
}

func parseFloat(raw string) (any, error) {
	fv, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot coerce %q to Float", raw)
	}
	return fv, nil
}

func parseIntValue(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	case float32:
		if v == float32(int(v)) {
			return int(v), nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
}

func parseFloatValue(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Float", value, value)
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return fmt.Sprintf("%v", value), nil
}

func parseStringValue(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
}

func parseBooleanValue(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}

func parseIDValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to ID", value, value)
}
