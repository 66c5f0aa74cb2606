package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	language "github.com/gqlexec/gqlexec/internal/language"
	schema "github.com/gqlexec/gqlexec/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// rmap builds a ResponseMap from alternating key/value pairs, in order.
func rmap(pairs ...any) *ResponseMap {
	m := NewResponseMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

// resultCmpOpts compares execution results while ignoring the wrapped Go
// error and source locations; tests that care about locations assert them
// directly.
var resultCmpOpts = cmp.Options{
	cmpopts.IgnoreFields(GraphQLError{}, "Err", "Locations"),
}

func valueResolver(v any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		return v, nil
	}
}

func errorResolver(err error) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		return nil, err
	}
}
