package laz

import (
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/lazrpc/lazgo/schema"
)

var validate = validator.New()

// MetadataPath is the well-known path serving the RPC metadata document.
const MetadataPath = "/_laz/metadata"

// EndpointInfo is one HTTP route discovered from the server's route table.
type EndpointInfo struct {
	URI     string   `json:"uri" validate:"required"`
	Methods []string `json:"methods" validate:"required"`
}

// ParamInfo records where a handler argument was extracted from and its shape.
type ParamInfo struct {
	Name      string            `json:"name"`
	FullType  string            `json:"full_type"`
	Extractor string            `json:"extractor"`
	Schema    schema.TypeSchema `json:"-"`
}

// FunctionMetadata describes one server-exposed RPC function.
type FunctionMetadata struct {
	FunctionName   string
	Params         []ParamInfo
	IsMutation     bool
	IsAsync        bool
	InputTypeName  string // empty when the function takes no payload
	OutputTypeName string

	// Parsed schema trees, nil when the server did not publish one or the
	// published tree was unreadable. The raw JSON is kept for the generator.
	InputSchema      schema.TypeSchema
	OutputSchema     schema.TypeSchema
	InputSchemaJSON  string
	OutputSchemaJSON string
}

// ReturnType is the schema of the function's result. It is nil when the
// server did not publish an output schema.
func (m FunctionMetadata) ReturnType() schema.TypeSchema {
	return m.OutputSchema
}

// Snapshot is the immutable bundle of all functions and endpoints fetched
// from one server. It is built once per fetch and never mutated; a re-fetch
// replaces it wholesale.
type Snapshot struct {
	Functions map[string]FunctionMetadata
	Endpoints []EndpointInfo
}

// FunctionNames returns the known function names, sorted.
func (s *Snapshot) FunctionNames() []string {
	names := make([]string, 0, len(s.Functions))
	for name := range s.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emptySnapshot backs a degraded client so lookups stay nil-safe.
func emptySnapshot() *Snapshot {
	return &Snapshot{Functions: map[string]FunctionMetadata{}}
}

// Wire shapes of the metadata document. Required fields carry validator tags;
// a missing one fails the whole parse with CodeInvalidMetadata.

type metadataDocument struct {
	TotalFunctions     int               `json:"total_functions"`
	Functions          []functionEntry   `json:"functions"`
	EndpointsDiscovery []json.RawMessage `json:"endpoints_discovery"`
	TotalEndpoints     int               `json:"total_endpoints"`
}

type functionEntry struct {
	FunctionName     string       `json:"function_name" validate:"required"`
	IsMutation       bool         `json:"is_mutation"`
	IsAsync          bool         `json:"is_async"`
	InputTypeName    *string      `json:"input_type_name"`
	OutputTypeName   string       `json:"output_type_name" validate:"required"`
	Params           []paramEntry `json:"params"`
	InputSchemaJSON  *string      `json:"input_schema_json"`
	OutputSchemaJSON *string      `json:"output_schema_json"`
}

type paramEntry struct {
	Name            string          `json:"name"`
	FullType        string          `json:"full_type"`
	Extractor       string          `json:"extractor"`
	InnerTypeSchema json.RawMessage `json:"inner_type_schema"`
}

// ParseSnapshot decodes and validates a metadata document.
// Duplicate function names are last-write-wins; endpoint order is preserved.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var doc metadataDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, WrapError(CodeInvalidMetadata, err, "metadata document is not valid JSON")
	}

	snap := &Snapshot{
		Functions: make(map[string]FunctionMetadata, len(doc.Functions)),
		Endpoints: make([]EndpointInfo, 0, len(doc.EndpointsDiscovery)),
	}

	for i, fn := range doc.Functions {
		if err := validate.Struct(fn); err != nil {
			return nil, WrapError(CodeInvalidMetadata, err,
				"function entry is missing a required field").
				WithDetail("index", i)
		}
		snap.Functions[fn.FunctionName] = buildFunction(fn)
	}

	for i, raw := range doc.EndpointsDiscovery {
		var ep EndpointInfo
		if err := json.Unmarshal(raw, &ep); err != nil {
			return nil, WrapError(CodeInvalidMetadata, err, "endpoint entry is not valid JSON").
				WithDetail("index", i)
		}
		if err := validate.Struct(ep); err != nil {
			return nil, WrapError(CodeInvalidMetadata, err,
				"endpoint entry is missing a required field").
				WithDetail("index", i)
		}
		snap.Endpoints = append(snap.Endpoints, ep)
	}

	return snap, nil
}

func buildFunction(fn functionEntry) FunctionMetadata {
	meta := FunctionMetadata{
		FunctionName:   fn.FunctionName,
		IsMutation:     fn.IsMutation,
		IsAsync:        fn.IsAsync,
		OutputTypeName: fn.OutputTypeName,
	}
	if fn.InputTypeName != nil {
		meta.InputTypeName = *fn.InputTypeName
	}

	for _, p := range fn.Params {
		param := ParamInfo{Name: p.Name, FullType: p.FullType, Extractor: p.Extractor}
		if len(p.InnerTypeSchema) > 0 {
			// Unreadable param schemas are dropped, not fatal.
			if ts, err := schema.Unmarshal(p.InnerTypeSchema); err == nil {
				param.Schema = ts
			}
		}
		meta.Params = append(meta.Params, param)
	}

	if fn.InputSchemaJSON != nil {
		meta.InputSchemaJSON = *fn.InputSchemaJSON
		if ts, err := schema.Unmarshal([]byte(*fn.InputSchemaJSON)); err == nil {
			meta.InputSchema = ts
		}
	}
	if fn.OutputSchemaJSON != nil {
		meta.OutputSchemaJSON = *fn.OutputSchemaJSON
		if ts, err := schema.Unmarshal([]byte(*fn.OutputSchemaJSON)); err == nil {
			meta.OutputSchema = ts
		}
	}

	return meta
}
