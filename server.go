package laz

import (
	"encoding/json"
	"net/http"

	"github.com/lazrpc/lazgo/schema"
)

// Server-side half of the metadata protocol: builds the document a Client
// consumes from an explicit registry plus a flattened route table, and serves
// it on the well-known path.

// BuildMetadata encodes the registry's functions and the given endpoint list
// as a metadata document. Schema JSON for a function's input and output types
// is included when the registry can resolve the type name.
func BuildMetadata(reg *schema.Registry, endpoints []EndpointInfo) ([]byte, error) {
	functions := reg.Functions()

	doc := metadataDocument{
		TotalFunctions: len(functions),
		Functions:      make([]functionEntry, 0, len(functions)),
		TotalEndpoints: len(endpoints),
	}

	for _, fn := range functions {
		entry := functionEntry{
			FunctionName:   fn.FunctionName,
			IsMutation:     fn.IsMutation,
			IsAsync:        fn.IsAsync,
			OutputTypeName: fn.OutputTypeName,
		}
		if fn.InputTypeName != "" {
			name := fn.InputTypeName
			entry.InputTypeName = &name
			if raw, ok := marshalNamedSchema(reg, name); ok {
				entry.InputSchemaJSON = &raw
			}
		}
		if raw, ok := marshalNamedSchema(reg, fn.OutputTypeName); ok {
			entry.OutputSchemaJSON = &raw
		}

		for _, p := range fn.Params {
			pe := paramEntry{Name: p.Name, FullType: p.FullType, Extractor: p.Extractor}
			if p.Schema != nil {
				if raw, err := schema.Marshal(p.Schema); err == nil {
					pe.InnerTypeSchema = raw
				}
			}
			entry.Params = append(entry.Params, pe)
		}

		doc.Functions = append(doc.Functions, entry)
	}

	for _, ep := range endpoints {
		raw, err := json.Marshal(ep)
		if err != nil {
			return nil, err
		}
		doc.EndpointsDiscovery = append(doc.EndpointsDiscovery, raw)
	}

	return json.Marshal(doc)
}

func marshalNamedSchema(reg *schema.Registry, name string) (string, bool) {
	ts, ok := reg.FindType(name)
	if !ok {
		return "", false
	}
	raw, err := schema.Marshal(ts)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// MetadataHandler returns an http.Handler serving the metadata document.
// Mount it at MetadataPath after all routes are registered, so the endpoint
// list reflects the full route table.
func MetadataHandler(reg *schema.Registry, endpoints []EndpointInfo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := BuildMetadata(reg, endpoints)
		if err != nil {
			http.Error(w, "cannot build metadata document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})
}
