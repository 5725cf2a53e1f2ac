// Package laztest provides testing helpers for building metadata documents
// and fake RPC servers. It is used by tests across the module.
package laztest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// MetadataBuilder constructs metadata documents with a fluent API.
type MetadataBuilder struct {
	functions []map[string]any
	endpoints []map[string]any
}

// NewMetadata creates an empty metadata document builder.
func NewMetadata() *MetadataBuilder {
	return &MetadataBuilder{}
}

// Function adds a function entry. Input and output schema JSON default to
// null; use FunctionWithSchemas for typed entries.
func (b *MetadataBuilder) Function(name string, mutation bool, inputType, outputType string) *MetadataBuilder {
	return b.FunctionWithSchemas(name, mutation, inputType, outputType, "", "")
}

// FunctionWithSchemas adds a function entry carrying schema JSON payloads.
func (b *MetadataBuilder) FunctionWithSchemas(name string, mutation bool, inputType, outputType, inputSchema, outputSchema string) *MetadataBuilder {
	entry := map[string]any{
		"function_name":      name,
		"is_mutation":        mutation,
		"is_async":           true,
		"input_type_name":    nil,
		"output_type_name":   outputType,
		"params":             []any{},
		"input_schema_json":  nil,
		"output_schema_json": nil,
	}
	if inputType != "" {
		entry["input_type_name"] = inputType
	}
	if inputSchema != "" {
		entry["input_schema_json"] = inputSchema
	}
	if outputSchema != "" {
		entry["output_schema_json"] = outputSchema
	}
	b.functions = append(b.functions, entry)
	return b
}

// RawFunction adds a function entry verbatim, for malformed-input tests.
func (b *MetadataBuilder) RawFunction(entry map[string]any) *MetadataBuilder {
	b.functions = append(b.functions, entry)
	return b
}

// Endpoint adds an endpoint entry.
func (b *MetadataBuilder) Endpoint(uri string, methods ...string) *MetadataBuilder {
	if methods == nil {
		methods = []string{"GET"}
	}
	b.endpoints = append(b.endpoints, map[string]any{"uri": uri, "methods": methods})
	return b
}

// Build returns the document as JSON.
func (b *MetadataBuilder) Build() []byte {
	doc := map[string]any{
		"total_functions":     len(b.functions),
		"functions":           b.functions,
		"endpoints_discovery": b.endpoints,
		"total_endpoints":     len(b.endpoints),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic("laztest: cannot marshal metadata document: " + err.Error())
	}
	return data
}

// RecordedCall captures one request the fake server handled.
type RecordedCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Server is a fake laz server backed by httptest. It serves the metadata
// document on /_laz/metadata and a configurable JSON response everywhere
// else, recording every non-metadata request.
type Server struct {
	*httptest.Server

	metadata []byte
	status   int
	response []byte

	mu    sync.Mutex
	calls []RecordedCall
}

// NewServer starts a fake server serving the given metadata document.
// Non-metadata requests answer 200 {"ok":true} until Respond is called.
func NewServer(metadata []byte) *Server {
	s := &Server{
		metadata: metadata,
		status:   http.StatusOK,
		response: []byte(`{"ok":true}`),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// NewBrokenServer starts a fake server whose metadata endpoint fails with the
// given status.
func NewBrokenServer(metadataStatus int) *Server {
	s := &Server{
		status:   http.StatusOK,
		response: []byte(`{"ok":true}`),
	}
	s.metadata = nil
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/_laz/metadata" {
			w.WriteHeader(metadataStatus)
			return
		}
		s.handle(w, r)
	}))
	return s
}

// Respond sets the status and body returned for non-metadata requests.
func (s *Server) Respond(status int, body string) *Server {
	s.status = status
	s.response = []byte(body)
	return s
}

// Calls returns a copy of all recorded non-metadata requests.
func (s *Server) Calls() []RecordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedCall(nil), s.calls...)
}

// LastCall returns the most recent recorded request, or nil.
func (s *Server) LastCall() *RecordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	call := s.calls[len(s.calls)-1]
	return &call
}

// Addr returns the host and port of the test server.
func (s *Server) Addr() (host string, port int) {
	u, err := url.Parse(s.URL)
	if err != nil {
		panic("laztest: cannot parse test server URL: " + err.Error())
	}
	p, err := strconv.Atoi(u.Port())
	if err != nil {
		panic("laztest: test server URL has no port: " + err.Error())
	}
	return u.Hostname(), p
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/_laz/metadata" {
		w.Header().Set("Content-Type", "application/json")
		w.Write(s.metadata)
		return
	}

	call := RecordedCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
	}
	if r.Body != nil {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		call.Body = body
	}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	w.Write(s.response)
}
