package golang

import (
	"strings"
	"testing"

	"github.com/lazrpc/lazgo/schema"
)

func emptyLookup(string) (schema.TypeSchema, bool) { return nil, false }

func lookupFrom(types ...schema.TypeSchema) schema.Lookup {
	byName := make(map[string]schema.TypeSchema)
	for _, ts := range types {
		byName[schema.TypeName(ts)] = ts
	}
	return func(name string) (schema.TypeSchema, bool) {
		ts, ok := byName[name]
		return ts, ok
	}
}

func joined(m *Mapper) string {
	return strings.Join(m.Definitions(), "\n")
}

func TestMapper_Struct(t *testing.T) {
	m := NewMapper(lookupFrom(&schema.Struct{
		TypeName: "LoginParams",
		Fields: []schema.Field{
			{FieldName: "email", FieldType: schema.Prim("String")},
			{FieldName: "remember_me", FieldType: schema.Prim("bool"), Optional: true},
			{FieldName: "tags", FieldType: schema.List(schema.Prim("String"))},
		},
	}))
	m.Define("LoginParams")

	src := joined(m)
	for _, want := range []string{
		"type LoginParams struct {",
		"Email string `json:\"email\"`",
		"RememberMe *bool `json:\"remember_me,omitempty\"`",
		"Tags []string `json:\"tags\"`",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("definitions missing %q:\n%s", want, src)
		}
	}
}

func TestMapper_NestedStructDefinedOnce(t *testing.T) {
	user := &schema.Struct{TypeName: "User", Fields: []schema.Field{
		{FieldName: "name", FieldType: schema.Prim("String")},
	}}
	m := NewMapper(lookupFrom(
		&schema.Struct{TypeName: "AuthResponse", Fields: []schema.Field{
			{FieldName: "token", FieldType: schema.Prim("String")},
			{FieldName: "user", FieldType: user},
		}},
		&schema.Struct{TypeName: "Profile", Fields: []schema.Field{
			{FieldName: "user", FieldType: user},
		}},
	))
	m.Define("AuthResponse")
	m.Define("Profile")

	src := joined(m)
	if got := strings.Count(src, "type User struct"); got != 1 {
		t.Errorf("User defined %d times, want 1:\n%s", got, src)
	}
	if !strings.Contains(src, "User User `json:\"user\"`") {
		t.Errorf("nested struct not referenced by name:\n%s", src)
	}
}

func TestMapper_RecursiveStructTerminates(t *testing.T) {
	node := &schema.Struct{TypeName: "Node"}
	node.Fields = []schema.Field{
		{FieldName: "value", FieldType: schema.Prim("String")},
		{FieldName: "children", FieldType: schema.List(node)},
	}

	m := NewMapper(lookupFrom(node))
	m.Define("Node")

	src := joined(m)
	if got := strings.Count(src, "type Node struct"); got != 1 {
		t.Errorf("Node defined %d times, want 1:\n%s", got, src)
	}
	if !strings.Contains(src, "Children []Node `json:\"children\"`") {
		t.Errorf("recursive field not referenced by name:\n%s", src)
	}
}

func TestMapper_BareEnum(t *testing.T) {
	m := NewMapper(lookupFrom(&schema.Enum{
		TypeName: "Status",
		Variants: []schema.Variant{
			{VariantName: "active"},
			{VariantName: "suspended"},
		},
	}))
	m.Define("Status")

	src := joined(m)
	for _, want := range []string{
		"type Status string",
		"StatusActive Status = \"active\"",
		"StatusSuspended Status = \"suspended\"",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("definitions missing %q:\n%s", want, src)
		}
	}
}

func TestMapper_EnumWithPayloadDegrades(t *testing.T) {
	m := NewMapper(lookupFrom(&schema.Enum{
		TypeName: "Event",
		Variants: []schema.Variant{
			{VariantName: "created", Inner: schema.Prim("String")},
		},
	}))
	m.Define("Event")

	if src := joined(m); !strings.Contains(src, "type Event = json.RawMessage") {
		t.Errorf("payload enum should degrade to raw JSON:\n%s", src)
	}
	if len(m.Warnings()) == 0 {
		t.Error("expected a degradation warning")
	}
}

func TestMapper_PrimitiveNewtype(t *testing.T) {
	byName := map[string]schema.TypeSchema{"UserId": schema.Prim("i64")}
	m := NewMapper(func(name string) (schema.TypeSchema, bool) {
		ts, ok := byName[name]
		return ts, ok
	})
	m.Define("UserId")

	if src := joined(m); !strings.Contains(src, "type UserId int64") {
		t.Errorf("want newtype over int64:\n%s", src)
	}
}

func TestMapper_CanonicalPrimitiveNeverDefined(t *testing.T) {
	m := NewMapper(emptyLookup)
	m.Define("String")
	m.Define("i32")
	m.Define("bool")

	if defs := m.Definitions(); len(defs) != 0 {
		t.Errorf("canonical primitives produced definitions: %v", defs)
	}
}

func TestMapper_DefineAll(t *testing.T) {
	auth := &schema.Struct{TypeName: "AuthResponse", Fields: []schema.Field{
		{FieldName: "token", FieldType: schema.Prim("String")},
	}}
	m := NewMapper(lookupFrom(auth))
	m.DefineAll([]schema.Function{
		{FunctionName: "login", InputTypeName: "String", OutputTypeName: "AuthResponse"},
		{FunctionName: "register", OutputTypeName: "AuthResponse"},
	})

	defs := m.Definitions()
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1 shared AuthResponse:\n%v", len(defs), defs)
	}
	if !strings.Contains(defs[0], "type AuthResponse struct") {
		t.Errorf("unexpected definition:\n%s", defs[0])
	}
}

func TestMapper_MissingSchemaDegrades(t *testing.T) {
	m := NewMapper(emptyLookup)
	m.Define("Mystery")

	if src := joined(m); !strings.Contains(src, "type Mystery = json.RawMessage") {
		t.Errorf("want raw JSON alias:\n%s", src)
	}
	if len(m.Warnings()) != 1 {
		t.Errorf("got %d warnings, want 1", len(m.Warnings()))
	}
}

func TestMapper_TypeExpr(t *testing.T) {
	m := NewMapper(emptyLookup)

	tests := []struct {
		ts   schema.TypeSchema
		want string
	}{
		{schema.Prim("String"), "string"},
		{schema.Prim("f64"), "float64"},
		{schema.Prim("DateTime"), "json.RawMessage"},
		{schema.List(schema.Prim("i32")), "[]int32"},
		{schema.Optional(schema.Prim("String")), "*string"},
		{schema.Optional(schema.List(schema.Prim("String"))), "[]string"},
		{&schema.Container{ContainerKind: schema.ContainerResult, Inner: schema.Prim("String")}, "json.RawMessage"},
		{&schema.Tuple{Elements: []schema.TypeSchema{schema.Prim("i32")}}, "json.RawMessage"},
		{&schema.Opaque{Name: "serde_json::Value"}, "json.RawMessage"},
	}
	for _, tt := range tests {
		if got := m.TypeExpr(tt.ts); got != tt.want {
			t.Errorf("TypeExpr(%v) = %q, want %q", tt.ts, got, tt.want)
		}
	}
}

func TestExportName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"register_user", "RegisterUser"},
		{"login", "Login"},
		{"AuthResponse", "AuthResponse"},
		{"get-current-user", "GetCurrentUser"},
		{"weird!name", "Weirdname"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := exportName(tt.in); got != tt.want {
			t.Errorf("exportName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
