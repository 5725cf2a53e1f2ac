// Package schema defines the recursive type descriptions exchanged between a
// laz server and its clients. A TypeSchema describes the structure of a type
// well enough to generate code or validate wire data without access to the
// original declaration.
package schema

// Kind discriminates the TypeSchema variants on the wire.
type Kind string

const (
	KindPrimitive Kind = "Primitive"
	KindStruct    Kind = "Struct"
	KindEnum      Kind = "Enum"
	KindContainer Kind = "Container"
	KindTuple     Kind = "Tuple"
	KindOpaque    Kind = "Opaque"
)

// TypeSchema is the tagged union of all type descriptions.
// Implementations are Primitive, Struct, Enum, Container, Tuple, and Opaque.
type TypeSchema interface {
	// Kind returns the wire discriminator for this schema.
	Kind() Kind

	// Equal reports structural equality with another schema.
	Equal(other TypeSchema) bool
}

// Primitive is a scalar identified by its canonical name ("String", "i32", ...).
type Primitive struct {
	Name string
}

func (p *Primitive) Kind() Kind { return KindPrimitive }

// Struct describes a named record with ordered fields.
type Struct struct {
	TypeName string
	Fields   []Field
}

func (s *Struct) Kind() Kind { return KindStruct }

// Field is a single member of a Struct. Optional fields may be absent or null
// in the wire JSON; mapped types must allow absence.
type Field struct {
	FieldName string
	FieldType TypeSchema
	Optional  bool
}

// Enum describes a named type with ordered variants. Only zero- or one-field
// variants are representable; richer shapes degrade to Opaque upstream.
type Enum struct {
	TypeName string
	Variants []Variant
}

func (e *Enum) Kind() Kind { return KindEnum }

// Variant is a single enum case. Inner is nil for bare tags.
type Variant struct {
	VariantName string
	Inner       TypeSchema
}

// ContainerKind names the generic container wrapping an inner schema.
// The wire values match the originating declarations (Vec, Option, Result).
type ContainerKind string

const (
	ContainerList     ContainerKind = "Vec"
	ContainerOptional ContainerKind = "Option"
	ContainerResult   ContainerKind = "Result"
)

// Container is a single-parameter generic such as a list or optional.
type Container struct {
	ContainerKind ContainerKind
	Inner         TypeSchema
}

func (c *Container) Kind() Kind { return KindContainer }

// Tuple is an ordered, heterogeneous sequence of schemas.
type Tuple struct {
	Elements []TypeSchema
}

func (t *Tuple) Kind() Kind { return KindTuple }

// Opaque names a type whose structure could not be determined.
// Downstream consumers treat it as an untyped JSON value.
type Opaque struct {
	Name string
}

func (o *Opaque) Kind() Kind { return KindOpaque }

// List returns a Vec container around inner.
func List(inner TypeSchema) *Container {
	return &Container{ContainerKind: ContainerList, Inner: inner}
}

// Optional returns an Option container around inner.
func Optional(inner TypeSchema) *Container {
	return &Container{ContainerKind: ContainerOptional, Inner: inner}
}

// Prim returns a primitive schema for the given canonical name.
func Prim(name string) *Primitive {
	return &Primitive{Name: name}
}

// Equal implementations. Two schemas are equal when their kinds and all
// reachable structure match; named references compare by name only.

func (p *Primitive) Equal(other TypeSchema) bool {
	o, ok := other.(*Primitive)
	return ok && o.Name == p.Name
}

func (s *Struct) Equal(other TypeSchema) bool {
	o, ok := other.(*Struct)
	if !ok || o.TypeName != s.TypeName || len(o.Fields) != len(s.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].FieldName != o.Fields[i].FieldName ||
			s.Fields[i].Optional != o.Fields[i].Optional ||
			!equalOrNil(s.Fields[i].FieldType, o.Fields[i].FieldType) {
			return false
		}
	}
	return true
}

func (e *Enum) Equal(other TypeSchema) bool {
	o, ok := other.(*Enum)
	if !ok || o.TypeName != e.TypeName || len(o.Variants) != len(e.Variants) {
		return false
	}
	for i := range e.Variants {
		if e.Variants[i].VariantName != o.Variants[i].VariantName ||
			!equalOrNil(e.Variants[i].Inner, o.Variants[i].Inner) {
			return false
		}
	}
	return true
}

func (c *Container) Equal(other TypeSchema) bool {
	o, ok := other.(*Container)
	return ok && o.ContainerKind == c.ContainerKind && equalOrNil(c.Inner, o.Inner)
}

func (t *Tuple) Equal(other TypeSchema) bool {
	o, ok := other.(*Tuple)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !equalOrNil(t.Elements[i], o.Elements[i]) {
			return false
		}
	}
	return true
}

func (o *Opaque) Equal(other TypeSchema) bool {
	other2, ok := other.(*Opaque)
	return ok && other2.Name == o.Name
}

func equalOrNil(a, b TypeSchema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// TypeName returns the declared name of a schema, or "" for anonymous shapes
// (primitives report their canonical name, opaque types their placeholder).
func TypeName(ts TypeSchema) string {
	switch t := ts.(type) {
	case *Primitive:
		return t.Name
	case *Struct:
		return t.TypeName
	case *Enum:
		return t.TypeName
	case *Opaque:
		return t.Name
	default:
		return ""
	}
}
