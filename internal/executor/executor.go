package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	language "github.com/gqlexec/gqlexec/internal/language"
	schema "github.com/gqlexec/gqlexec/internal/schema"
)

// Executor runs validated query documents against a schema.
type Executor struct {
	schema *schema.Schema
}

func NewExecutor(s *schema.Schema) *Executor {
	return &Executor{schema: s}
}

// executionState is the per-request state threaded through collection,
// resolution and completion. Everything but the error sink is read-only once
// built.
type executionState struct {
	schema         *schema.Schema
	fragments      map[string]*language.FragmentDefinition
	operation      *language.OperationDefinition
	rootValue      any
	variableValues map[string]any
	errs           errorSink
}

// newExecutionState selects the operation and coerces variables. This is the
// only place allowed to fail the whole request; any returned error is
// request-fatal and typed.
func newExecutionState(s *schema.Schema, document *language.QueryDocument, operationName string, variableValues map[string]any, rootValue any) (*executionState, error) {
	fragments := make(map[string]*language.FragmentDefinition, len(document.Fragments))
	for _, f := range document.Fragments {
		fragments[f.Name] = f
	}

	var operation *language.OperationDefinition
	switch {
	case len(document.Operations) == 0:
		return nil, NoOperationError{}
	case operationName == "":
		if len(document.Operations) > 1 {
			return nil, AmbiguousOperationError{}
		}
		operation = document.Operations[0]
	default:
		operation = document.Operations.ForName(operationName)
		if operation == nil {
			return nil, UnknownOperationError{Name: operationName}
		}
	}

	coerced, err := coerceVariableValues(s, operation, variableValues)
	if err != nil {
		return nil, err
	}

	return &executionState{
		schema:         s,
		fragments:      fragments,
		operation:      operation,
		rootValue:      rootValue,
		variableValues: coerced,
	}, nil
}

// ExecuteRequest executes one operation from the document and returns a
// partial-success result. The context is passed through to every resolver
// unchanged; request-scoped values for resolvers travel on it.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
) *ExecutionResult {
	state, err := newExecutionState(e.schema, document, operationName, variableValues, rootValue)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error(), Err: err}}, Aborted: true}
	}

	var rootType *schema.Type
	switch state.operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	}
	if rootType == nil {
		return &ExecutionResult{
			Errors:  []GraphQLError{{Message: fmt.Sprintf("schema is not configured for %s operations", state.operation.Operation)}},
			Aborted: true,
		}
	}

	fields := collectFields(state, rootType, state.operation.SelectionSet, nil, nil)

	var data *ResponseMap
	var execErr error
	if state.operation.Operation == language.Mutation {
		data, execErr = executeFieldsSerially(ctx, state, rootType, rootValue, fields, nil)
	} else {
		data, execErr = executeFields(ctx, state, rootType, rootValue, fields, nil)
	}

	result := &ExecutionResult{Errors: state.errs.drain()}
	if execErr == nil {
		result.Data = data
	}
	// A bubbled non-null violation at the root leaves Data nil; the located
	// error is already in the list.
	return result
}

type fieldOutcome struct {
	value   any
	omitted bool
	err     error
}

// executeFields resolves collected fields in the unordered discipline: each
// field runs in its own goroutine, but the response map is assembled in
// first-occurrence key order regardless of completion order.
func executeFields(ctx context.Context, state *executionState, parentType *schema.Type, source any, fields *collectedFieldMap, path Path) (*ResponseMap, error) {
	ordered := fields.orderedFields()
	outcomes := make([]fieldOutcome, len(ordered))

	if len(ordered) == 1 {
		cf := ordered[0]
		v, omitted, err := resolveField(ctx, state, parentType, source, cf.Fields, path.With(cf.ResponseKey))
		outcomes[0] = fieldOutcome{value: v, omitted: omitted, err: err}
	} else {
		var wg sync.WaitGroup
		for i, cf := range ordered {
			wg.Add(1)
			go func(i int, cf collectedField) {
				defer wg.Done()
				v, omitted, err := resolveField(ctx, state, parentType, source, cf.Fields, path.With(cf.ResponseKey))
				outcomes[i] = fieldOutcome{value: v, omitted: omitted, err: err}
			}(i, cf)
		}
		wg.Wait()
	}

	result := NewResponseMap()
	for i, cf := range ordered {
		o := outcomes[i]
		if o.err != nil {
			// Non-null violation below this field; nullify the whole
			// selection set and let an ancestor contain it.
			return nil, o.err
		}
		if o.omitted {
			continue
		}
		result.Set(cf.ResponseKey, o.value)
	}
	return result, nil
}

// executeFieldsSerially resolves collected fields in the ordered discipline
// used for mutation roots: one field completes fully, including any blocking
// resolver work, before the next begins.
func executeFieldsSerially(ctx context.Context, state *executionState, parentType *schema.Type, source any, fields *collectedFieldMap, path Path) (*ResponseMap, error) {
	result := NewResponseMap()
	for _, cf := range fields.orderedFields() {
		v, omitted, err := resolveField(ctx, state, parentType, source, cf.Fields, path.With(cf.ResponseKey))
		if err != nil {
			return nil, err
		}
		if omitted {
			continue
		}
		result.Set(cf.ResponseKey, v)
	}
	return result, nil
}

// resolveField resolves one response key: it looks up the field definition,
// coerces arguments, invokes the resolver (or the default one), and hands the
// raw result to value completion.
//
// omitted means the field has no definition on the parent type and is dropped
// from the response. A non-nil error is a non-null violation bubbling upward;
// the located error is already recorded.
func resolveField(ctx context.Context, state *executionState, parentType *schema.Type, source any, fieldNodes []*language.Field, path Path) (value any, omitted bool, err error) {
	fieldName := fieldNodes[0].Name

	// The definition lookup is the single seam for meta-fields. Only
	// __typename is served here; full introspection belongs to an outer
	// layer.
	if fieldName == "__typename" {
		return parentType.Name, false, nil
	}

	fieldDef := parentType.Field(fieldName)
	if fieldDef == nil {
		return nil, true, nil
	}

	args, argErr := coerceArgumentValues(state, fieldDef.Arguments, fieldNodes[0].Arguments)
	if argErr != nil {
		state.errs.add(locatedError(argErr, fieldNodes, path))
		if schema.IsNonNull(fieldDef.Type) {
			return nil, false, errNullified
		}
		return nil, false, nil
	}

	info := &schema.ResolveInfo{
		FieldName:      fieldName,
		FieldNodes:     fieldNodes,
		ReturnType:     fieldDef.Type,
		ParentType:     parentType,
		Path:           path,
		Schema:         state.schema,
		Fragments:      state.fragments,
		RootValue:      state.rootValue,
		Operation:      state.operation,
		VariableValues: state.variableValues,
	}

	resolve := fieldDef.Resolve
	if resolve == nil {
		resolve = defaultResolve
	}

	result, resolveErr := invokeResolver(ctx, resolve, source, args, info)
	if resolveErr != nil {
		state.errs.add(locatedError(resolveErr, fieldNodes, path))
		if schema.IsNonNull(fieldDef.Type) {
			return nil, false, errNullified
		}
		return nil, false, nil
	}

	completed, cerr := completeValue(ctx, state, fieldDef.Type, fieldNodes, info, result, path)
	if cerr != nil {
		if schema.IsNonNull(fieldDef.Type) {
			return nil, false, cerr
		}
		return nil, false, nil
	}
	return completed, false, nil
}

// invokeResolver calls the resolver, converting panics into resolver errors
// so one misbehaving resolver cannot take down the request.
func invokeResolver(ctx context.Context, resolve schema.ResolveFunc, source any, args map[string]any, info *schema.ResolveInfo) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("resolver panic: %w", e)
				return
			}
			err = fmt.Errorf("resolver panic: %v", r)
		}
	}()
	return resolve(ctx, source, args, info)
}

// defaultResolve is the property-lookup fallback: map sources resolve to the
// entry under the field name, everything else resolves to null.
func defaultResolve(_ context.Context, source any, _ map[string]any, info *schema.ResolveInfo) (any, error) {
	if m, ok := source.(map[string]any); ok {
		return m[info.FieldName], nil
	}
	if m, ok := source.(*ResponseMap); ok {
		v, _ := m.Get(info.FieldName)
		return v, nil
	}
	return nil, nil
}

// isNullish reports nil interfaces and typed nils (map, slice, ptr, func,
// chan, interface).
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}
