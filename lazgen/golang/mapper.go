// Package golang emits Go type definitions and a typed client from the
// schemas published in a server's metadata document.
package golang

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/lazrpc/lazgo/schema"
)

// builtins maps canonical primitive names to Go types. These names are never
// redefined; referencing code uses the Go type directly.
var builtins = map[string]string{
	"String": "string",
	"i32":    "int32",
	"i64":    "int64",
	"bool":   "bool",
	"f32":    "float32",
	"f64":    "float64",
}

// Warning describes a non-fatal degradation during mapping.
type Warning struct {
	TypeName string
	Message  string
}

// Mapper turns type schemas into Go type definition text. Each type name is
// defined exactly once across the whole run regardless of how many functions
// reference it.
type Mapper struct {
	lookup schema.Lookup

	defs  map[string]string
	order []string

	// emitting guards against recursive references: a name currently being
	// emitted is referenced by name instead of recursed into, so cycles in
	// the schema graph cannot cause non-termination.
	emitting map[string]bool

	warnings []Warning
}

// NewMapper creates a mapper resolving type names through lookup.
func NewMapper(lookup schema.Lookup) *Mapper {
	return &Mapper{
		lookup:   lookup,
		defs:     make(map[string]string),
		emitting: make(map[string]bool),
	}
}

// Define emits a definition for the named type if one has not been emitted
// yet. Canonical primitive names are skipped entirely.
func (m *Mapper) Define(name string) {
	if name == "" || builtins[name] != "" {
		return
	}
	if _, done := m.defs[name]; done || m.emitting[name] {
		return
	}

	ts, ok := m.lookup(name)
	if !ok {
		m.warn(name, "no schema available, degrading to raw JSON")
		m.add(name, rawAlias(name, "structure unknown"))
		return
	}
	m.defineSchema(name, ts)
}

// DefineAll walks every function's input and output type names and emits
// each definition once.
func (m *Mapper) DefineAll(functions []schema.Function) {
	for _, fn := range functions {
		if fn.InputTypeName != "" {
			m.Define(fn.InputTypeName)
		}
		m.Define(fn.OutputTypeName)
	}
}

// Definitions returns the emitted definitions in a stable order: emission
// order, which follows the function list.
func (m *Mapper) Definitions() []string {
	out := make([]string, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.defs[name])
	}
	return out
}

// Warnings returns any degradations recorded during mapping.
func (m *Mapper) Warnings() []Warning {
	return m.warnings
}

func (m *Mapper) defineSchema(name string, ts schema.TypeSchema) {
	m.emitting[name] = true
	defer delete(m.emitting, name)

	switch t := ts.(type) {
	case *schema.Struct:
		m.add(name, m.emitStruct(name, t))
	case *schema.Enum:
		m.defineEnum(name, t)
	case *schema.Primitive:
		m.definePrimitive(name, t)
	default:
		m.warn(name, fmt.Sprintf("%s schema cannot be named, degrading to raw JSON", ts.Kind()))
		m.add(name, rawAlias(name, "structure unknown"))
	}
}

func (m *Mapper) emitStruct(name string, s *schema.Struct) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "type %s struct {\n", exportName(name))

	for _, f := range s.Fields {
		goType := m.TypeExpr(f.FieldType)
		tag := f.FieldName
		if f.Optional {
			if !strings.HasPrefix(goType, "*") && !strings.HasPrefix(goType, "[]") && goType != "json.RawMessage" {
				goType = "*" + goType
			}
			tag += ",omitempty"
		}
		fmt.Fprintf(&buf, "\t%s %s `json:%q`\n", exportName(f.FieldName), goType, tag)
	}

	buf.WriteString("}")
	return buf.String()
}

func (m *Mapper) defineEnum(name string, e *schema.Enum) {
	for _, v := range e.Variants {
		if v.Inner != nil {
			// Variants carrying payloads have no direct Go enum shape.
			m.warn(name, "enum has variants with payloads, degrading to raw JSON")
			m.add(name, rawAlias(name, "enum variants carry payloads"))
			return
		}
	}

	goName := exportName(name)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "type %s string\n\nconst (\n", goName)
	for _, v := range e.Variants {
		fmt.Fprintf(&buf, "\t%s%s %s = %q\n", goName, exportName(v.VariantName), goName, v.VariantName)
	}
	buf.WriteString(")")
	m.add(name, buf.String())
}

func (m *Mapper) definePrimitive(name string, p *schema.Primitive) {
	if p.Name == name {
		// The canonical name itself; nothing to define.
		return
	}
	if goType, ok := builtins[p.Name]; ok {
		// A custom name wrapping a built-in becomes a newtype.
		m.add(name, fmt.Sprintf("type %s %s", exportName(name), goType))
		return
	}
	m.warn(name, fmt.Sprintf("unknown primitive %q, degrading to raw JSON", p.Name))
	m.add(name, rawAlias(name, "unknown primitive "+p.Name))
}

// TypeExpr returns the Go type expression for a schema appearing in field or
// parameter position. Named struct and enum references trigger their own
// definitions as a side effect.
func (m *Mapper) TypeExpr(ts schema.TypeSchema) string {
	switch t := ts.(type) {
	case *schema.Primitive:
		if goType, ok := builtins[t.Name]; ok {
			return goType
		}
		return "json.RawMessage"
	case *schema.Struct:
		m.defineNamed(t.TypeName, t)
		return exportName(t.TypeName)
	case *schema.Enum:
		m.defineNamed(t.TypeName, t)
		return exportName(t.TypeName)
	case *schema.Container:
		switch t.ContainerKind {
		case schema.ContainerList:
			return "[]" + m.TypeExpr(t.Inner)
		case schema.ContainerOptional:
			inner := m.TypeExpr(t.Inner)
			if strings.HasPrefix(inner, "*") || strings.HasPrefix(inner, "[]") || inner == "json.RawMessage" {
				return inner
			}
			return "*" + inner
		default:
			// Result and unknown containers have no Go shape.
			return "json.RawMessage"
		}
	default:
		// Tuple, Opaque.
		return "json.RawMessage"
	}
}

// defineNamed emits a definition for an inline named schema unless it is
// already defined or currently being emitted (a recursive reference, which
// resolves to a plain forward reference by name).
func (m *Mapper) defineNamed(name string, ts schema.TypeSchema) {
	if name == "" || m.emitting[name] {
		return
	}
	if _, done := m.defs[name]; done {
		return
	}
	m.defineSchema(name, ts)
}

func (m *Mapper) add(name, def string) {
	if _, exists := m.defs[name]; exists {
		return
	}
	m.defs[name] = def
	m.order = append(m.order, name)
}

func (m *Mapper) warn(name, message string) {
	m.warnings = append(m.warnings, Warning{TypeName: name, Message: message})
}

func rawAlias(name, reason string) string {
	n := exportName(name)
	return fmt.Sprintf("// %s: %s.\ntype %s = json.RawMessage", n, reason, n)
}

// exportName converts a wire identifier to an exported Go identifier:
// register_user becomes RegisterUser, already-exported names pass through.
func exportName(name string) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			// Drop anything that cannot appear in an identifier.
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
