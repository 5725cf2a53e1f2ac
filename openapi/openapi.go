// Package openapi discovers RPC endpoints from an OpenAPI 3 document.
// Servers that publish a spec instead of a laz route table still get endpoint
// discovery: the document's paths flatten into the same (uri, methods) list
// the resolver consumes.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	laz "github.com/lazrpc/lazgo"
)

var fetchClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads an OpenAPI document and flattens it into an endpoint list.
func Fetch(ctx context.Context, url string) ([]laz.EndpointInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/x-yaml, text/yaml")

	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching spec from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching spec from %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading spec: %w", err)
	}

	return Endpoints(ctx, data)
}

// Endpoints parses an OpenAPI document (JSON or YAML) and returns its routes
// as endpoint entries, sorted by URI for deterministic output. Each entry's
// methods are the operations declared on the path, upper-cased and sorted.
func Endpoints(ctx context.Context, data []byte) ([]laz.EndpointInfo, error) {
	doc, err := load(data)
	if err != nil {
		return nil, err
	}

	// Validation issues are common in real-world specs and do not prevent
	// flattening the path table, so they are not fatal here.
	_ = doc.Validate(ctx)

	if doc.Paths == nil {
		return nil, nil
	}

	endpoints := make([]laz.EndpointInfo, 0, doc.Paths.Len())
	for path, pathItem := range doc.Paths.Map() {
		var methods []string
		for method, op := range pathItem.Operations() {
			if op == nil {
				continue
			}
			methods = append(methods, strings.ToUpper(method))
		}
		if len(methods) == 0 {
			continue
		}
		sort.Strings(methods)
		endpoints = append(endpoints, laz.EndpointInfo{URI: path, Methods: methods})
	}

	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].URI < endpoints[j].URI })
	return endpoints, nil
}

func load(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	// kin-openapi accepts JSON directly; YAML documents are converted first.
	if !json.Valid(data) {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
		}
		data = converted
	}

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}
	return doc, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeKeys(tree))
}

// normalizeKeys rewrites yaml's map[any]any nodes into map[string]any so the
// tree can be marshalled as JSON.
func normalizeKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeKeys(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeKeys(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeKeys(val)
		}
		return t
	default:
		return v
	}
}
