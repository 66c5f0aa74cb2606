package executor

import (
	"bytes"
	"encoding/json"
	"reflect"

	schema "github.com/gqlexec/gqlexec/internal/schema"
)

// Path and PathElement are re-exported so callers building results or
// inspecting errors do not need to import the schema package.
type (
	Path        = schema.Path
	PathElement = schema.PathElement
)

// ExecutionResult is the outcome of executing one request. Data and Errors
// may both be present (partial success). Data is nil when execution could not
// start a response at all, or when a non-null violation bubbled to the root.
//
// Aborted marks a request that failed before any resolver ran (operation
// selection or variable coercion). The two nil-Data states serialize
// differently: an aborted result carries no data key at all, while a root
// non-null violation keeps an explicit "data": null.
type ExecutionResult struct {
	Data    any
	Errors  []GraphQLError
	Aborted bool
}

func (r *ExecutionResult) MarshalJSON() ([]byte, error) {
	if r.Aborted {
		return json.Marshal(struct {
			Errors []GraphQLError `json:"errors"`
		}{r.Errors})
	}
	return json.Marshal(struct {
		Data   any            `json:"data"`
		Errors []GraphQLError `json:"errors,omitempty"`
	}{r.Data, r.Errors})
}

// ResponseMap is an insertion-ordered string-keyed map. The executor's
// ordering guarantee (response keys appear in first-occurrence selection
// order) is observable in serialized output, so plain Go maps cannot carry
// response objects.
type ResponseMap struct {
	keys   []string
	index  map[string]int
	values []any
}

func NewResponseMap() *ResponseMap {
	return &ResponseMap{index: make(map[string]int)}
}

// Set stores v under key, keeping the key's first-insertion position.
func (m *ResponseMap) Set(key string, v any) {
	if i, ok := m.index[key]; ok {
		m.values[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
}

func (m *ResponseMap) Get(key string) (any, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

func (m *ResponseMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (m *ResponseMap) Keys() []string { return m.keys }

// Equal reports deep equality including key order. go-cmp picks this up.
func (m *ResponseMap) Equal(o *ResponseMap) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !reflect.DeepEqual(m.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func (m *ResponseMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
