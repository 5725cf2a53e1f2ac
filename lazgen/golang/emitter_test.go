package golang

import (
	"strings"
	"testing"

	laz "github.com/lazrpc/lazgo"
	"github.com/lazrpc/lazgo/schema"
)

var loginParams = &schema.Struct{TypeName: "LoginParams", Fields: []schema.Field{
	{FieldName: "email", FieldType: schema.Prim("String")},
	{FieldName: "password", FieldType: schema.Prim("String")},
}}

var authResponse = &schema.Struct{TypeName: "AuthResponse", Fields: []schema.Field{
	{FieldName: "token", FieldType: schema.Prim("String")},
}}

func snapshotOf(fns ...laz.FunctionMetadata) *laz.Snapshot {
	snap := &laz.Snapshot{Functions: make(map[string]laz.FunctionMetadata)}
	for _, fn := range fns {
		snap.Functions[fn.FunctionName] = fn
	}
	return snap
}

func TestEmit_TypedMethod(t *testing.T) {
	snap := snapshotOf(laz.FunctionMetadata{
		FunctionName:   "login",
		IsMutation:     true,
		InputTypeName:  "LoginParams",
		OutputTypeName: "AuthResponse",
		InputSchema:    loginParams,
		OutputSchema:   authResponse,
	})
	snap.Endpoints = []laz.EndpointInfo{{URI: "/api/auth/login", Methods: []string{"POST"}}}

	res, err := Emit(snap, EmitOptions{Package: "genapi", ServerURL: "http://localhost:5150"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	src := res.Source
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if res.Types != 2 {
		t.Errorf("got %d types, want 2", res.Types)
	}

	for _, want := range []string{
		"// Code generated by laz for http://localhost:5150; DO NOT EDIT.",
		"package genapi",
		"type LoginParams struct {",
		"type AuthResponse struct {",
		"func (c *Client) Login(ctx context.Context, params LoginParams) (AuthResponse, error) {",
		"c.CallEndpoint(ctx, \"/api/auth/login\", true, params)",
		"laz.WrapError(laz.CodeDecode, err",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q:\n%s", want, src)
		}
	}
}

func TestEmit_SharedTypeDefinedOnce(t *testing.T) {
	snap := snapshotOf(
		laz.FunctionMetadata{
			FunctionName:   "login",
			IsMutation:     true,
			OutputTypeName: "AuthResponse",
			OutputSchema:   authResponse,
		},
		laz.FunctionMetadata{
			FunctionName:   "register",
			IsMutation:     true,
			OutputTypeName: "AuthResponse",
			OutputSchema:   authResponse,
		},
	)

	res, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	src := res.Source
	if got := strings.Count(src, "type AuthResponse struct"); got != 1 {
		t.Errorf("AuthResponse defined %d times, want 1:\n%s", got, src)
	}
}

func TestEmit_PrimitiveSignature(t *testing.T) {
	snap := snapshotOf(laz.FunctionMetadata{
		FunctionName:   "echo",
		InputTypeName:  "String",
		OutputTypeName: "String",
	})
	snap.Endpoints = []laz.EndpointInfo{{URI: "/api/echo", Methods: []string{"GET"}}}

	res, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	src := res.Source
	if !strings.Contains(src, "func (c *Client) Echo(ctx context.Context, params string) (string, error) {") {
		t.Errorf("primitive names should map to built-ins:\n%s", src)
	}
	if strings.Contains(src, "type String") {
		t.Errorf("canonical primitive must not be redefined:\n%s", src)
	}
}

func TestEmit_UnitOutput(t *testing.T) {
	snap := snapshotOf(laz.FunctionMetadata{
		FunctionName:   "ping",
		OutputTypeName: "()",
	})
	snap.Endpoints = []laz.EndpointInfo{{URI: "/api/ping", Methods: []string{"GET"}}}

	res, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	src := res.Source
	if !strings.Contains(src, "func (c *Client) Ping(ctx context.Context) error {") {
		t.Errorf("unit output should produce an error-only method:\n%s", src)
	}
}

func TestEmit_UnresolvedFallbackPath(t *testing.T) {
	snap := snapshotOf(laz.FunctionMetadata{
		FunctionName:   "ghost",
		OutputTypeName: "AuthResponse",
		OutputSchema:   authResponse,
	})

	res, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	src := res.Source
	if !strings.Contains(src, "c.CallEndpoint(ctx, \"/ghost\", false, nil)") {
		t.Errorf("unresolved function should fall back to /ghost:\n%s", src)
	}
	if !strings.Contains(src, "best-effort guess") {
		t.Errorf("fallback path should be marked in a comment:\n%s", src)
	}
}

func TestEmit_MissingSchemaWarns(t *testing.T) {
	snap := snapshotOf(laz.FunctionMetadata{
		FunctionName:   "opaque_call",
		OutputTypeName: "Mystery",
	})

	res, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	src := res.Source
	if !strings.Contains(src, "type Mystery = json.RawMessage") {
		t.Errorf("missing schema should degrade to raw JSON:\n%s", src)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].TypeName != "Mystery" {
		t.Errorf("got warnings %v, want one for Mystery", res.Warnings)
	}
}

func TestEmit_Deterministic(t *testing.T) {
	snap := snapshotOf(
		laz.FunctionMetadata{FunctionName: "b_call", OutputTypeName: "AuthResponse", OutputSchema: authResponse},
		laz.FunctionMetadata{FunctionName: "a_call", OutputTypeName: "AuthResponse", OutputSchema: authResponse},
	)

	firstRes, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	secondRes, err := Emit(snap, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	first, second := firstRes.Source, secondRes.Source
	if first != second {
		t.Error("two runs over the same snapshot produced different output")
	}
	if strings.Index(first, "func (c *Client) ACall") > strings.Index(first, "func (c *Client) BCall") {
		t.Error("methods should be emitted in sorted function order")
	}
}
