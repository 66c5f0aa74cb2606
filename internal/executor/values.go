package executor

import (
	"fmt"
	"strings"

	language "github.com/gqlexec/gqlexec/internal/language"
	schema "github.com/gqlexec/gqlexec/internal/schema"
)

// coerceVariableValues validates and coerces the request's variable values
// against the operation's variable definitions. Any failure here is
// request-fatal. An unsupplied variable with no default stays absent from the
// returned map; absence and explicit null are distinct states downstream.
func coerceVariableValues(s *schema.Schema, operation *language.OperationDefinition, input map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, vd := range operation.VariableDefinitions {
		ref := typeRefFromAST(vd.Type)
		named := s.Types[ref.GetNamedType()]
		if named == nil || !named.IsInput() {
			return nil, InvalidVariableTypeError{Variable: vd.Variable, Type: ref.String()}
		}

		supplied, ok := input[vd.Variable]
		if !ok {
			if vd.DefaultValue != nil {
				value, problems := coerceLiteral(s, vd.DefaultValue, ref, nil)
				if len(problems) > 0 {
					return nil, InvalidVariableValueError{Variable: vd.Variable, Problems: problems}
				}
				coerced[vd.Variable] = value
				continue
			}
			if ref.IsNonNull() {
				return nil, MissingRequiredVariableError{Variable: vd.Variable, Type: ref.String()}
			}
			continue
		}

		value, problems := coerceValue(s, supplied, ref)
		if len(problems) > 0 {
			return nil, InvalidVariableValueError{Variable: vd.Variable, Problems: problems}
		}
		coerced[vd.Variable] = value
	}
	return coerced, nil
}

// coerceArgumentValues builds the argument map for one field or directive
// invocation against the declared argument definitions. An argument key is
// present only when a value was determined: explicit null is preserved as a
// nil entry, while a fully absent argument has no entry at all.
func coerceArgumentValues(state *executionState, argDefs []*schema.InputValue, argNodes language.ArgumentList) (map[string]any, error) {
	args := make(map[string]any, len(argDefs))
	for _, def := range argDefs {
		node := argNodes.ForName(def.Name)

		if node == nil || node.Value == nil {
			if def.HasDefault {
				args[def.Name] = def.DefaultValue
				continue
			}
			if def.Type.IsNonNull() {
				return nil, fmt.Errorf("argument %q of required type %s was not provided", def.Name, def.Type)
			}
			continue
		}

		if node.Value.Kind == language.Variable {
			varName := node.Value.Raw
			value, supplied := state.variableValues[varName]
			if !supplied {
				if def.HasDefault {
					args[def.Name] = def.DefaultValue
					continue
				}
				if def.Type.IsNonNull() {
					return nil, fmt.Errorf("argument %q of required type %s was provided the variable $%s which was not provided", def.Name, def.Type, varName)
				}
				continue
			}
			if value == nil && def.Type.IsNonNull() {
				return nil, fmt.Errorf("argument %q of non-null type %s must not be null", def.Name, def.Type)
			}
			args[def.Name] = value
			continue
		}

		value, problems := coerceLiteral(state.schema, node.Value, def.Type, state.variableValues)
		if len(problems) > 0 {
			return nil, fmt.Errorf("invalid value for argument %q: %s", def.Name, strings.Join(problems, "; "))
		}
		args[def.Name] = value
	}
	return args, nil
}

// coerceValue coerces an externally supplied runtime value (a variable value
// or a variable used inside a literal) against the expected type. Problems
// are accumulated rather than failing fast so the caller can report every
// structural defect at once.
func coerceValue(s *schema.Schema, value any, t *schema.TypeRef) (any, []string) {
	if t.IsNonNull() {
		if value == nil {
			return nil, []string{fmt.Sprintf("expected non-null value of type %s", t)}
		}
		return coerceValue(s, value, t.Unwrap())
	}
	if value == nil {
		return nil, nil
	}

	if t.IsList() {
		itemType := t.Unwrap()
		if items, ok := value.([]any); ok {
			out := make([]any, len(items))
			var problems []string
			for i, item := range items {
				coerced, itemProblems := coerceValue(s, item, itemType)
				for _, p := range itemProblems {
					problems = append(problems, fmt.Sprintf("at index %d: %s", i, p))
				}
				out[i] = coerced
			}
			return out, problems
		}
		// A solitary value coerces to a single-item list.
		coerced, problems := coerceValue(s, value, itemType)
		return []any{coerced}, problems
	}

	named := s.Types[t.GetNamedType()]
	if named == nil {
		return nil, []string{fmt.Sprintf("unknown type %q", t.GetNamedType())}
	}

	if named.IsLeaf() {
		coerced, err := named.ParseLeafValue(value)
		if err != nil {
			return nil, []string{err.Error()}
		}
		return coerced, nil
	}

	if named.Kind == schema.TypeKindInputObject {
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, []string{fmt.Sprintf("expected an object of type %s, got %T", named.Name, value)}
		}
		out := make(map[string]any, len(fields))
		var problems []string
		for _, inputField := range named.InputFields {
			supplied, present := fields[inputField.Name]
			if !present {
				if inputField.HasDefault {
					out[inputField.Name] = inputField.DefaultValue
					continue
				}
				if inputField.Type.IsNonNull() {
					problems = append(problems, fmt.Sprintf("field %q of required type %s was not provided", inputField.Name, inputField.Type))
				}
				continue
			}
			coerced, fieldProblems := coerceValue(s, supplied, inputField.Type)
			for _, p := range fieldProblems {
				problems = append(problems, fmt.Sprintf("in field %q: %s", inputField.Name, p))
			}
			out[inputField.Name] = coerced
		}
		for name := range fields {
			if named.InputField(name) == nil {
				problems = append(problems, fmt.Sprintf("field %q is not defined by type %s", name, named.Name))
			}
		}
		return out, problems
	}

	return nil, []string{fmt.Sprintf("type %s is not an input type", named.Name)}
}

// coerceLiteral coerces an AST literal against the expected type. Variables
// embedded in the literal are substituted from vars and then follow the
// runtime-value path; an unsupplied embedded variable reads as null.
func coerceLiteral(s *schema.Schema, v *language.Value, t *schema.TypeRef, vars map[string]any) (any, []string) {
	if v == nil {
		return nil, nil
	}

	if v.Kind == language.Variable {
		value, supplied := vars[v.Raw]
		if !supplied {
			if t.IsNonNull() {
				return nil, []string{fmt.Sprintf("variable $%s of required type %s was not provided", v.Raw, t)}
			}
			return nil, nil
		}
		return coerceValue(s, value, t)
	}

	if t.IsNonNull() {
		if v.Kind == language.NullValue {
			return nil, []string{fmt.Sprintf("expected non-null value of type %s", t)}
		}
		return coerceLiteral(s, v, t.Unwrap(), vars)
	}
	if v.Kind == language.NullValue {
		return nil, nil
	}

	if t.IsList() {
		itemType := t.Unwrap()
		if v.Kind == language.ListValue {
			out := make([]any, len(v.Children))
			var problems []string
			for i, child := range v.Children {
				coerced, itemProblems := coerceLiteral(s, child.Value, itemType, vars)
				for _, p := range itemProblems {
					problems = append(problems, fmt.Sprintf("at index %d: %s", i, p))
				}
				out[i] = coerced
			}
			return out, problems
		}
		coerced, problems := coerceLiteral(s, v, itemType, vars)
		return []any{coerced}, problems
	}

	named := s.Types[t.GetNamedType()]
	if named == nil {
		return nil, []string{fmt.Sprintf("unknown type %q", t.GetNamedType())}
	}

	if named.IsLeaf() {
		coerced, err := named.ParseLeafLiteral(v)
		if err != nil {
			return nil, []string{err.Error()}
		}
		return coerced, nil
	}

	if named.Kind == schema.TypeKindInputObject {
		if v.Kind != language.ObjectValue {
			return nil, []string{fmt.Sprintf("expected an object literal of type %s", named.Name)}
		}
		children := make(map[string]*language.Value, len(v.Children))
		for _, child := range v.Children {
			children[child.Name] = child.Value
		}
		out := make(map[string]any, len(children))
		var problems []string
		for _, inputField := range named.InputFields {
			child, present := children[inputField.Name]
			if !present {
				if inputField.HasDefault {
					out[inputField.Name] = inputField.DefaultValue
					continue
				}
				if inputField.Type.IsNonNull() {
					problems = append(problems, fmt.Sprintf("field %q of required type %s was not provided", inputField.Name, inputField.Type))
				}
				continue
			}
			coerced, fieldProblems := coerceLiteral(s, child, inputField.Type, vars)
			for _, p := range fieldProblems {
				problems = append(problems, fmt.Sprintf("in field %q: %s", inputField.Name, p))
			}
			out[inputField.Name] = coerced
		}
		for name := range children {
			if named.InputField(name) == nil {
				problems = append(problems, fmt.Sprintf("field %q is not defined by type %s", name, named.Name))
			}
		}
		return out, problems
	}

	return nil, []string{fmt.Sprintf("type %s is not an input type", named.Name)}
}
