package executor

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/gqlexec/gqlexec/internal/language"
	schema "github.com/gqlexec/gqlexec/internal/schema"
)

// completeValue recursively converts a resolver result into a response value
// directed by the declared type.
//
// A non-nil error means a located error has already been recorded and the
// violation could not be contained at this position; the caller substitutes
// null if its own position is nullable, or keeps propagating if not.
func completeValue(ctx context.Context, state *executionState, t *schema.TypeRef, fieldNodes []*language.Field, info *schema.ResolveInfo, result any, path Path) (any, error) {
	if t.IsNonNull() {
		completed, err := completeValue(ctx, state, t.Unwrap(), fieldNodes, info, result, path)
		if err != nil {
			return nil, err
		}
		if completed == nil {
			state.errs.add(locatedError(NullabilityError{
				Parent: info.ParentType.Name,
				Field:  info.FieldName,
			}, fieldNodes, path))
			return nil, errNullified
		}
		return completed, nil
	}

	if isNullish(result) {
		return nil, nil
	}

	if t.IsList() {
		return completeListValue(ctx, state, t, fieldNodes, info, result, path)
	}

	typeObj := state.schema.Types[t.GetNamedType()]
	if typeObj == nil {
		state.errs.add(locatedError(fmt.Errorf("unknown type %q", t.GetNamedType()), fieldNodes, path))
		return nil, errNullified
	}

	switch {
	case typeObj.IsLeaf():
		return completeLeafValue(state, typeObj, fieldNodes, result, path)
	case typeObj.IsAbstract():
		return completeAbstractValue(ctx, state, typeObj, fieldNodes, info, result, path)
	case typeObj.Kind == schema.TypeKindObject:
		return completeObjectValue(ctx, state, typeObj, fieldNodes, info, result, path)
	default:
		state.errs.add(locatedError(fmt.Errorf("cannot complete value of type %q", typeObj.Name), fieldNodes, path))
		return nil, errNullified
	}
}

// completeListValue completes each item against the inner type at its indexed
// path. A failed item with a nullable inner type becomes a null entry; a
// failed item with a non-null inner type collapses the whole list.
func completeListValue(ctx context.Context, state *executionState, t *schema.TypeRef, fieldNodes []*language.Field, info *schema.ResolveInfo, result any, path Path) (any, error) {
	rv := reflect.ValueOf(result)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		state.errs.add(locatedError(fmt.Errorf("expected a list value for field %s.%s but got %T", info.ParentType.Name, info.FieldName, result), fieldNodes, path))
		return nil, errNullified
	}

	itemType := t.Unwrap()
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		completed, err := completeValue(ctx, state, itemType, fieldNodes, info, rv.Index(i).Interface(), path.With(i))
		if err != nil {
			if itemType.IsNonNull() {
				return nil, err
			}
			completed = nil
		}
		items[i] = completed
	}
	return items, nil
}

// completeLeafValue serializes a scalar or enum result. A serialization
// failure, or a serializer returning null for a non-null input, is a located
// field error.
func completeLeafValue(state *executionState, typeObj *schema.Type, fieldNodes []*language.Field, result any, path Path) (any, error) {
	serialized, err := typeObj.SerializeLeaf(result)
	if err != nil || isNullish(serialized) {
		state.errs.add(locatedError(SerializationError{Type: typeObj.Name}, fieldNodes, path))
		return nil, errNullified
	}
	return serialized, nil
}

// completeAbstractValue determines the concrete runtime type for an interface
// or union value, then completes it as that object type.
func completeAbstractValue(ctx context.Context, state *executionState, typeObj *schema.Type, fieldNodes []*language.Field, info *schema.ResolveInfo, result any, path Path) (any, error) {
	name := ""
	if typeObj.ResolveType != nil {
		name = typeObj.ResolveType(ctx, result, info)
	} else {
		name = defaultResolveType(state, typeObj, result)
	}
	if name == "" {
		state.errs.add(locatedError(TypeResolutionError{
			Abstract: typeObj.Name,
			Parent:   info.ParentType.Name,
			Field:    info.FieldName,
		}, fieldNodes, path))
		return nil, errNullified
	}

	runtimeType := state.schema.Types[name]
	if runtimeType == nil || runtimeType.Kind != schema.TypeKindObject || !state.schema.IsPossibleType(typeObj, runtimeType) {
		state.errs.add(locatedError(InvalidRuntimeTypeError{
			RuntimeType: name,
			Abstract:    typeObj.Name,
		}, fieldNodes, path))
		return nil, errNullified
	}

	return completeObjectValue(ctx, state, runtimeType, fieldNodes, info, result, path)
}

// defaultResolveType scans the registered possible types and picks the first
// whose isTypeOf predicate accepts the value.
func defaultResolveType(state *executionState, abstract *schema.Type, value any) string {
	for _, possible := range state.schema.GetPossibleTypes(abstract) {
		if possible.IsTypeOf != nil && possible.IsTypeOf(value) {
			return possible.Name
		}
	}
	return ""
}

// completeObjectValue merges the sub-selections of every field node for this
// response key into one collection, then executes them against the object.
// Sub-selections always run unordered; the serial discipline applies only to
// a mutation's root selection set.
func completeObjectValue(ctx context.Context, state *executionState, typeObj *schema.Type, fieldNodes []*language.Field, info *schema.ResolveInfo, result any, path Path) (any, error) {
	if typeObj.IsTypeOf != nil && !typeObj.IsTypeOf(result) {
		state.errs.add(locatedError(InstanceMismatchError{Type: typeObj.Name, Value: result}, fieldNodes, path))
		return nil, errNullified
	}

	grouped := newCollectedFieldMap()
	visited := make(map[string]struct{})
	for _, node := range fieldNodes {
		if node.SelectionSet != nil {
			collectFields(state, typeObj, node.SelectionSet, grouped, visited)
		}
	}

	return executeFields(ctx, state, typeObj, result, grouped, path)
}
