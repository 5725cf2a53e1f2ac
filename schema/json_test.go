package schema

import (
	"strings"
	"testing"
)

func TestMarshal_WireShape(t *testing.T) {
	data, err := Marshal(Prim("String"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `{"kind":"Primitive","value":"String"}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ts   TypeSchema
	}{
		{"primitive", Prim("i64")},
		{"opaque", &Opaque{Name: "Mystery"}},
		{"struct", authResponse()},
		{"nested container", List(Optional(Prim("bool")))},
		{"result", &Container{ContainerKind: ContainerResult, Inner: Prim("String")}},
		{"tuple", &Tuple{Elements: []TypeSchema{Prim("i32"), authResponse()}}},
		{"enum with payload", &Enum{TypeName: "Event", Variants: []Variant{
			{VariantName: "Ping"},
			{VariantName: "Login", Inner: authResponse()},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.ts)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			back, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !tt.ts.Equal(back) {
				t.Errorf("round trip not structurally equal:\n in: %#v\nout: %#v", tt.ts, back)
			}
		})
	}
}

func TestUnmarshal_StructWire(t *testing.T) {
	// Document shape as published by a server, not produced by our Marshal.
	raw := `{
		"kind": "Struct",
		"value": {
			"type_name": "LoginParams",
			"fields": [
				{"field_name": "email", "field_type": {"kind": "Primitive", "value": "String"}, "optional": false},
				{"field_name": "otp", "field_type": {"kind": "Container", "value": {"container_type": "Option", "inner_type": {"kind": "Primitive", "value": "String"}}}, "optional": true}
			]
		}
	}`

	ts, err := Unmarshal([]byte(raw))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	s, ok := ts.(*Struct)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want *Struct", ts)
	}
	if s.TypeName != "LoginParams" || len(s.Fields) != 2 {
		t.Fatalf("unexpected struct: %#v", s)
	}
	c, ok := s.Fields[1].FieldType.(*Container)
	if !ok || c.ContainerKind != ContainerOptional {
		t.Errorf("second field = %#v, want Option container", s.Fields[1].FieldType)
	}
}

func TestUnmarshal_ContainerKindAliases(t *testing.T) {
	for alias, want := range map[string]ContainerKind{
		"Vec":      ContainerList,
		"List":     ContainerList,
		"Option":   ContainerOptional,
		"Optional": ContainerOptional,
		"Result":   ContainerResult,
	} {
		raw := `{"kind":"Container","value":{"container_type":"` + alias + `","inner_type":{"kind":"Primitive","value":"i32"}}}`
		ts, err := Unmarshal([]byte(raw))
		if err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", alias, err)
		}
		if got := ts.(*Container).ContainerKind; got != want {
			t.Errorf("container kind for %q = %q, want %q", alias, got, want)
		}
	}
}

func TestUnmarshal_NullVariantPayload(t *testing.T) {
	raw := `{"kind":"Enum","value":{"type_name":"Status","variants":[{"variant_name":"Active","inner_schema":null}]}}`
	ts, err := Unmarshal([]byte(raw))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if inner := ts.(*Enum).Variants[0].Inner; inner != nil {
		t.Errorf("variant inner = %#v, want nil", inner)
	}
}

func TestUnmarshal_UnknownKind(t *testing.T) {
	_, err := Unmarshal([]byte(`{"kind":"Blob","value":1}`))
	if err == nil || !strings.Contains(err.Error(), "unknown schema kind") {
		t.Errorf("Unmarshal() error = %v, want unknown kind error", err)
	}
}
