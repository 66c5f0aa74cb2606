package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	language "github.com/gqlexec/gqlexec/internal/language"
	reqid "github.com/gqlexec/gqlexec/internal/reqid"
	schema "github.com/gqlexec/gqlexec/internal/schema"
)

func newTestHandler(t *testing.T, res schema.Resolvers, opts ...Option) *Handler {
	t.Helper()
	sdl := `
		type Query { hello: String, boom: String }
		type Mutation { put(v: String!): String }
	`
	doc, err := language.ParseSchema("test.graphql", sdl)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	sch, err := schema.FromSDL(doc, res)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	h, err := New(sch, opts...)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h
}

func helloResolvers() schema.Resolvers {
	return schema.Resolvers{Fields: map[string]schema.ResolveFunc{
		"Query.hello": func(ctx context.Context, src any, args map[string]any, info *schema.ResolveInfo) (any, error) {
			return "world", nil
		},
	}}
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t, helloResolvers())
	w := postJSON(t, h, `{"query":"{ hello }"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"data":{"hello":"world"}}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestGetQuery(t *testing.T) {
	h := newTestHandler(t, helloResolvers())
	req := httptest.NewRequest("GET", "/?query={hello}", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"data":{"hello":"world"}}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestBatchRequest(t *testing.T) {
	h := newTestHandler(t, helloResolvers())
	w := postJSON(t, h, `[{"query":"{ hello }"},{"query":"{ hi: hello }"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid batch JSON: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
}

func TestErrorResultKeepsPartialData(t *testing.T) {
	res := helloResolvers()
	res.Fields["Query.boom"] = func(ctx context.Context, src any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		return nil, context.DeadlineExceeded
	}
	h := newTestHandler(t, res)

	w := postJSON(t, h, `{"query":"{ hello boom }"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out struct {
		Data   map[string]any `json:"data"`
		Errors []struct {
			Message string `json:"message"`
			Path    []any  `json:"path"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Data["hello"] != "world" || out.Data["boom"] != nil {
		t.Fatalf("unexpected data: %v", out.Data)
	}
	if len(out.Errors) != 1 || out.Errors[0].Path[0] != "boom" {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}
}

func TestSyntaxErrorIsBadQueryResponse(t *testing.T) {
	h := newTestHandler(t, helloResolvers())
	w := postJSON(t, h, `{"query":"{ hello"}`)
	var out struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Errors) != 1 {
		t.Fatalf("expected one error, got %v", out.Errors)
	}
}

func TestErrorResponsesOmitDataKey(t *testing.T) {
	h := newTestHandler(t, helloResolvers())

	// Syntax errors never reach execution, so the response has errors only.
	w := postJSON(t, h, `{"query":"{ hello"}`)
	if strings.Contains(w.Body.String(), `"data"`) {
		t.Fatalf("syntax error response carries a data key: %s", w.Body.String())
	}

	// Same for requests aborted by variable coercion.
	w = postJSON(t, h, `{"query":"query ($n: Int!) { hello }"}`)
	if strings.Contains(w.Body.String(), `"data"`) {
		t.Fatalf("aborted request response carries a data key: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "was not provided") {
		t.Fatalf("missing variable error not reported: %s", w.Body.String())
	}
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, helloResolvers(), WithCORS("*"))

	// simple request
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	// preflight
	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	if pw.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", pw.Code)
	}
	if pw.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight missing CORS header")
	}
	if pw.Header().Get("Access-Control-Allow-Headers") != "X-Test" {
		t.Fatalf("preflight missing allow headers")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, helloResolvers(), WithMaxBodyBytes(10))
	w := postJSON(t, h, `{"query":"1234567890"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var capturedID int64
	res := schema.Resolvers{Fields: map[string]schema.ResolveFunc{
		"Query.hello": func(ctx context.Context, src any, args map[string]any, info *schema.ResolveInfo) (any, error) {
			capturedID, _ = reqid.FromContext(ctx)
			return "world", nil
		},
	}}
	h := newTestHandler(t, res)

	w := postJSON(t, h, `{"query":"{ hello }"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if capturedID == 0 {
		t.Fatalf("missing request id in context")
	}
}

func TestMutationOverPost(t *testing.T) {
	res := helloResolvers()
	res.Fields["Mutation.put"] = func(ctx context.Context, src any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		return args["v"], nil
	}
	h := newTestHandler(t, res)

	w := postJSON(t, h, `{"query":"mutation ($v: String!) { put(v: $v) }","variables":{"v":"stored"}}`)
	if got := strings.TrimSpace(w.Body.String()); got != `{"data":{"put":"stored"}}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestGraphiQLServedToBrowsers(t *testing.T) {
	h := newTestHandler(t, helloResolvers())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected HTML, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "GraphiQL") {
		t.Fatalf("expected GraphiQL page")
	}
}
