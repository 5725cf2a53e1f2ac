package golang

import (
	"bytes"
	"fmt"

	laz "github.com/lazrpc/lazgo"
	"github.com/lazrpc/lazgo/schema"
)

// EmitOptions controls the shape of the generated client file.
type EmitOptions struct {
	// Package is the package name of the generated file.
	Package string

	// ServerURL is recorded in the provenance header.
	ServerURL string

	// Resolver maps function names to endpoint paths at generation time.
	// Nil means the default heuristic.
	Resolver laz.Resolver
}

// Emitted is the output of one Emit run.
type Emitted struct {
	// Source is valid Go but not gofmt-formatted; callers run it through
	// a formatter.
	Source string

	// Types is the number of type definitions emitted.
	Types int

	// Warnings lists schemas that degraded to raw JSON.
	Warnings []Warning
}

// Emit renders a complete Go source file with one typed method per function
// in the snapshot, plus the type definitions those methods need.
func Emit(snap *laz.Snapshot, opts EmitOptions) (*Emitted, error) {
	if opts.Package == "" {
		opts.Package = "lazclient"
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = laz.HeuristicResolver{}
	}

	named := collectNamed(snap)
	mapper := NewMapper(func(name string) (schema.TypeSchema, bool) {
		ts, ok := named[name]
		return ts, ok
	})

	names := snap.FunctionNames()
	for _, name := range names {
		fn := snap.Functions[name]
		if fn.InputTypeName != "" {
			mapper.Define(fn.InputTypeName)
		}
		if fn.OutputTypeName != "()" {
			mapper.Define(fn.OutputTypeName)
		}
	}
	defs := mapper.Definitions()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by laz for %s; DO NOT EDIT.\n", opts.ServerURL)
	fmt.Fprintf(&buf, "// Functions: %d. Types: %d. Endpoints: %d.\n\n",
		len(names), len(defs), len(snap.Endpoints))
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)

	buf.WriteString("import (\n")
	buf.WriteString("\t\"context\"\n")
	buf.WriteString("\t\"encoding/json\"\n\n")
	buf.WriteString("\tlaz \"github.com/lazrpc/lazgo\"\n")
	buf.WriteString(")\n\n")

	for _, def := range defs {
		buf.WriteString(def)
		buf.WriteString("\n\n")
	}

	buf.WriteString("// Client exposes the server's functions as typed methods. It embeds the\n")
	buf.WriteString("// runtime dispatcher, so untyped calls and refresh remain available.\n")
	buf.WriteString("type Client struct {\n\t*laz.Client\n}\n\n")

	buf.WriteString("// Init connects to the server and loads its metadata. The typed client is\n")
	buf.WriteString("// always usable; check the result for degraded initialization.\n")
	buf.WriteString("func Init(ctx context.Context, addr laz.ServerAddr) (*Client, *laz.InitResult) {\n")
	buf.WriteString("\tres := laz.Init(ctx, addr)\n")
	buf.WriteString("\treturn &Client{Client: res.Client}, res\n}\n")

	for _, name := range names {
		fn := snap.Functions[name]
		path, resolved := resolver.Resolve(name, snap.Endpoints)
		if !resolved {
			path = "/" + name
		}
		emitMethod(&buf, fn, path, resolved)
	}

	return &Emitted{
		Source:   buf.String(),
		Types:    len(defs),
		Warnings: mapper.Warnings(),
	}, nil
}

func emitMethod(buf *bytes.Buffer, fn laz.FunctionMetadata, path string, resolved bool) {
	methodName := exportName(fn.FunctionName)
	inputType := namedTypeExpr(fn.InputTypeName)
	outputType := namedTypeExpr(fn.OutputTypeName)
	if fn.OutputTypeName == "()" {
		outputType = ""
	}

	buf.WriteString("\n")
	fmt.Fprintf(buf, "// %s calls %s on the server.\n", methodName, fn.FunctionName)
	if !resolved {
		buf.WriteString("// No endpoint matched this function; the path below is a best-effort guess.\n")
	}

	params := "ctx context.Context"
	if inputType != "" {
		params += ", params " + inputType
	}
	arg := "nil"
	if inputType != "" {
		arg = "params"
	}

	if outputType == "" {
		fmt.Fprintf(buf, "func (c *Client) %s(%s) error {\n", methodName, params)
		fmt.Fprintf(buf, "\t_, err := c.CallEndpoint(ctx, %q, %t, %s)\n", path, fn.IsMutation, arg)
		buf.WriteString("\treturn err\n}\n")
		return
	}

	fmt.Fprintf(buf, "func (c *Client) %s(%s) (%s, error) {\n", methodName, params, outputType)
	fmt.Fprintf(buf, "\tvar out %s\n", outputType)
	fmt.Fprintf(buf, "\traw, err := c.CallEndpoint(ctx, %q, %t, %s)\n", path, fn.IsMutation, arg)
	buf.WriteString("\tif err != nil {\n\t\treturn out, err\n\t}\n")
	buf.WriteString("\tif err := json.Unmarshal(raw, &out); err != nil {\n")
	fmt.Fprintf(buf, "\t\treturn out, laz.WrapError(laz.CodeDecode, err, \"response does not match %s\")\n", outputType)
	buf.WriteString("\t}\n\treturn out, nil\n}\n")
}

// namedTypeExpr maps a metadata type name to the Go type used in a method
// signature: canonical primitives become built-ins, everything else is the
// exported form of the name.
func namedTypeExpr(name string) string {
	if name == "" {
		return ""
	}
	if goType, ok := builtins[name]; ok {
		return goType
	}
	return exportName(name)
}

// collectNamed indexes every named schema reachable from the snapshot's
// function input and output trees.
func collectNamed(snap *laz.Snapshot) map[string]schema.TypeSchema {
	named := make(map[string]schema.TypeSchema)
	var visit func(ts schema.TypeSchema)
	visit = func(ts schema.TypeSchema) {
		switch t := ts.(type) {
		case *schema.Struct:
			if _, seen := named[t.TypeName]; seen {
				return
			}
			named[t.TypeName] = t
			for _, f := range t.Fields {
				visit(f.FieldType)
			}
		case *schema.Enum:
			if _, seen := named[t.TypeName]; seen {
				return
			}
			named[t.TypeName] = t
			for _, v := range t.Variants {
				if v.Inner != nil {
					visit(v.Inner)
				}
			}
		case *schema.Container:
			if t.Inner != nil {
				visit(t.Inner)
			}
		case *schema.Tuple:
			for _, el := range t.Elements {
				visit(el)
			}
		}
	}
	for _, fn := range snap.Functions {
		if fn.InputSchema != nil {
			visit(fn.InputSchema)
		}
		if fn.OutputSchema != nil {
			visit(fn.OutputSchema)
		}
	}
	return named
}
