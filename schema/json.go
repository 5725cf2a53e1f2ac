package schema

import (
	"encoding/json"
	"fmt"
)

// JSON serialization for TypeSchema trees. The wire format is self-describing:
// every node is {"kind": ..., "value": ...} where value carries the
// kind-specific payload with snake_case keys. This matches the documents
// published under a server's _laz/metadata endpoint, so schemas survive a
// network round trip losslessly.

type envelope struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value"`
}

type structPayload struct {
	TypeName string         `json:"type_name"`
	Fields   []fieldPayload `json:"fields"`
}

type fieldPayload struct {
	FieldName string          `json:"field_name"`
	FieldType json.RawMessage `json:"field_type"`
	Optional  bool            `json:"optional"`
}

type enumPayload struct {
	TypeName string           `json:"type_name"`
	Variants []variantPayload `json:"variants"`
}

type variantPayload struct {
	VariantName string          `json:"variant_name"`
	InnerSchema json.RawMessage `json:"inner_schema,omitempty"`
}

type containerPayload struct {
	ContainerType string          `json:"container_type"`
	InnerType     json.RawMessage `json:"inner_type"`
}

// Marshal encodes a schema to its wire form.
func Marshal(ts TypeSchema) ([]byte, error) {
	value, err := marshalValue(ts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: ts.Kind(), Value: value})
}

func marshalValue(ts TypeSchema) (json.RawMessage, error) {
	switch t := ts.(type) {
	case *Primitive:
		return json.Marshal(t.Name)
	case *Opaque:
		return json.Marshal(t.Name)
	case *Struct:
		fields := make([]fieldPayload, len(t.Fields))
		for i, f := range t.Fields {
			raw, err := Marshal(f.FieldType)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.FieldName, err)
			}
			fields[i] = fieldPayload{FieldName: f.FieldName, FieldType: raw, Optional: f.Optional}
		}
		return json.Marshal(structPayload{TypeName: t.TypeName, Fields: fields})
	case *Enum:
		variants := make([]variantPayload, len(t.Variants))
		for i, v := range t.Variants {
			vp := variantPayload{VariantName: v.VariantName}
			if v.Inner != nil {
				raw, err := Marshal(v.Inner)
				if err != nil {
					return nil, fmt.Errorf("variant %s: %w", v.VariantName, err)
				}
				vp.InnerSchema = raw
			}
			variants[i] = vp
		}
		return json.Marshal(enumPayload{TypeName: t.TypeName, Variants: variants})
	case *Container:
		inner, err := Marshal(t.Inner)
		if err != nil {
			return nil, err
		}
		return json.Marshal(containerPayload{ContainerType: string(t.ContainerKind), InnerType: inner})
	case *Tuple:
		elems := make([]json.RawMessage, len(t.Elements))
		for i, e := range t.Elements {
			raw, err := Marshal(e)
			if err != nil {
				return nil, err
			}
			elems[i] = raw
		}
		return json.Marshal(elems)
	default:
		return nil, fmt.Errorf("unsupported schema kind: %T", ts)
	}
}

// Unmarshal decodes a schema from its wire form.
func Unmarshal(data []byte) (TypeSchema, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("schema envelope: %w", err)
	}

	switch env.Kind {
	case KindPrimitive:
		var name string
		if err := json.Unmarshal(env.Value, &name); err != nil {
			return nil, fmt.Errorf("primitive value: %w", err)
		}
		return &Primitive{Name: name}, nil

	case KindOpaque:
		var name string
		if err := json.Unmarshal(env.Value, &name); err != nil {
			return nil, fmt.Errorf("opaque value: %w", err)
		}
		return &Opaque{Name: name}, nil

	case KindStruct:
		var payload structPayload
		if err := json.Unmarshal(env.Value, &payload); err != nil {
			return nil, fmt.Errorf("struct value: %w", err)
		}
		s := &Struct{TypeName: payload.TypeName, Fields: make([]Field, len(payload.Fields))}
		for i, fp := range payload.Fields {
			ft, err := Unmarshal(fp.FieldType)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fp.FieldName, err)
			}
			s.Fields[i] = Field{FieldName: fp.FieldName, FieldType: ft, Optional: fp.Optional}
		}
		return s, nil

	case KindEnum:
		var payload enumPayload
		if err := json.Unmarshal(env.Value, &payload); err != nil {
			return nil, fmt.Errorf("enum value: %w", err)
		}
		e := &Enum{TypeName: payload.TypeName, Variants: make([]Variant, len(payload.Variants))}
		for i, vp := range payload.Variants {
			v := Variant{VariantName: vp.VariantName}
			if len(vp.InnerSchema) > 0 && string(vp.InnerSchema) != "null" {
				inner, err := Unmarshal(vp.InnerSchema)
				if err != nil {
					return nil, fmt.Errorf("variant %s: %w", vp.VariantName, err)
				}
				v.Inner = inner
			}
			e.Variants[i] = v
		}
		return e, nil

	case KindContainer:
		var payload containerPayload
		if err := json.Unmarshal(env.Value, &payload); err != nil {
			return nil, fmt.Errorf("container value: %w", err)
		}
		inner, err := Unmarshal(payload.InnerType)
		if err != nil {
			return nil, err
		}
		return &Container{ContainerKind: normalizeContainerKind(payload.ContainerType), Inner: inner}, nil

	case KindTuple:
		var elems []json.RawMessage
		if err := json.Unmarshal(env.Value, &elems); err != nil {
			return nil, fmt.Errorf("tuple value: %w", err)
		}
		t := &Tuple{Elements: make([]TypeSchema, len(elems))}
		for i, raw := range elems {
			e, err := Unmarshal(raw)
			if err != nil {
				return nil, err
			}
			t.Elements[i] = e
		}
		return t, nil

	default:
		return nil, fmt.Errorf("unknown schema kind: %q", env.Kind)
	}
}

// normalizeContainerKind maps spelling variants seen in the wild onto the
// canonical wire values. Unknown kinds pass through untouched.
func normalizeContainerKind(kind string) ContainerKind {
	switch kind {
	case "Vec", "List":
		return ContainerList
	case "Option", "Optional":
		return ContainerOptional
	case "Result":
		return ContainerResult
	default:
		return ContainerKind(kind)
	}
}
