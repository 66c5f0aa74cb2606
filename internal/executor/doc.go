// Package executor implements a recursive GraphQL executor with per-field
// goroutine concurrency for queries, serial root execution for mutations,
// and spec-conformant value completion with Non-Null null propagation.
//
// # Overview
//
// The executor follows the recursive execution model of the GraphQL
// specification:
//   - Collect the selection set for a runtime object type into grouped field
//     nodes, expanding fragments and evaluating @skip/@include.
//   - Resolve each response key by coercing its arguments and invoking the
//     field's resolver (or the default property lookup).
//   - Complete the raw resolver result against the declared type: unwrap
//     Non-Null, map lists item by item, serialize leafs, determine concrete
//     types for abstract values, and recurse into object sub-selections.
//   - Accumulate located errors while allowing partial success.
//
// # Preparation
//
// Before execution, the executor:
//  1. Chooses the operation (by name, or by uniqueness when unnamed).
//  2. Coerces variables from the provided input against the operation's
//     variable definitions. Errors here are request-fatal: execution stops
//     and the result carries no data at all.
//  3. Builds a per-request execution state: schema, fragment index, operation,
//     coerced variables, root value, and the shared error sink.
//  4. Determines the root object type from the operation kind and collects
//     the root selection set.
//
// # Ordering and Concurrency
//
// Query selection sets execute unordered: each grouped field runs in its own
// goroutine and may finish in any order. Mutation root fields execute
// serially, each completing fully before the next begins; their
// sub-selections execute unordered again. In both disciplines the response
// object lists keys in the first-occurrence order of the selection set, so
// concurrent completion is never observable in the output.
//
// # Errors and Nullability
//
// A failed field resolves to null and appends one located error, carrying the
// response path and the source positions of its field nodes. When the failed
// field's type is Non-Null the null propagates to the nearest nullable
// ancestor, nullifying everything in between; a violation that reaches the
// root nullifies the entire data payload. List items fail independently
// unless the item type is Non-Null, in which case the whole list collapses.
package executor
