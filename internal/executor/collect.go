package executor

import (
	language "github.com/gqlexec/gqlexec/internal/language"
	schema "github.com/gqlexec/gqlexec/internal/schema"
)

// collectedFieldMap groups same-key field nodes while preserving the
// first-occurrence order of response keys.
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseKey string
	Fields      []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseKey string, field *language.Field) {
	if idx, exists := cfm.index[responseKey]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseKey] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseKey: responseKey,
		Fields:      []*language.Field{field},
	})
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields expands a selection set against a concrete runtime object
// type into grouped field nodes. grouped and visited may be nil for a fresh
// collection; object completion passes them through so the sub-selections of
// merged field nodes accumulate into one map.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, grouped *collectedFieldMap, visited map[string]struct{}) *collectedFieldMap {
	if grouped == nil {
		grouped = newCollectedFieldMap()
	}
	if visited == nil {
		visited = make(map[string]struct{})
	}
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			responseKey := sel.Alias
			if responseKey == "" {
				responseKey = sel.Name
			}
			grouped.add(responseKey, sel)

		case *language.InlineFragment:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			if !typeConditionMatches(state, sel.TypeCondition, objectType) {
				continue
			}
			collectFields(state, objectType, sel.SelectionSet, grouped, visited)

		case *language.FragmentSpread:
			if _, seen := visited[sel.Name]; seen {
				continue
			}
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			visited[sel.Name] = struct{}{}

			// An undefined fragment is a validation concern, not an
			// execution error.
			fragment := state.fragments[sel.Name]
			if fragment == nil {
				continue
			}
			if !typeConditionMatches(state, fragment.TypeCondition, objectType) {
				continue
			}
			collectFields(state, objectType, fragment.SelectionSet, grouped, visited)
		}
	}
	return grouped
}

// typeConditionMatches reports whether a fragment's type condition is
// satisfied by the runtime object type. An absent condition always matches;
// an abstract condition matches through the schema's possible-type registry.
func typeConditionMatches(state *executionState, condition string, objectType *schema.Type) bool {
	if condition == "" || condition == objectType.Name {
		return true
	}
	conditionType := state.schema.Types[condition]
	if conditionType == nil {
		return false
	}
	if conditionType.IsAbstract() {
		return state.schema.IsPossibleType(conditionType, objectType)
	}
	return false
}

// shouldIncludeNode evaluates @skip and @include. @skip wins: a skipped node
// is excluded no matter what @include says.
func shouldIncludeNode(state *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := directiveIfArgument(state, skip); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := directiveIfArgument(state, include); ok && !v {
			return false
		}
	}
	return true
}

// directiveIfArgument evaluates the boolean `if:` argument of a @skip or
// @include directive, coercing the directive's arguments against its
// registered definition. A directive whose arguments fail coercion states
// nothing; rejecting such documents belongs to validation.
func directiveIfArgument(state *executionState, directive *language.Directive) (value, ok bool) {
	def := state.schema.Directives[directive.Name]
	if def == nil {
		return false, false
	}
	args, err := coerceArgumentValues(state, def.Arguments, directive.Arguments)
	if err != nil {
		return false, false
	}
	v, ok := args["if"].(bool)
	return v, ok
}
