package schema

// Lookup resolves a type name to its schema. It returns false when the name
// is unknown to the caller.
type Lookup func(name string) (TypeSchema, bool)

// WalkNamed visits every named type reachable from roots exactly once.
// Struct and enum definitions encountered through lookup are recursed into,
// so shared and mutually referencing definitions are each visited a single
// time even when the reference graph contains cycles. visit returning false
// stops the traversal.
func WalkNamed(roots []TypeSchema, lookup Lookup, visit func(name string, ts TypeSchema) bool) {
	seen := make(map[string]bool)
	stopped := false

	var walk func(ts TypeSchema)
	walk = func(ts TypeSchema) {
		if ts == nil || stopped {
			return
		}
		switch t := ts.(type) {
		case *Struct:
			if !mark(seen, t.TypeName) {
				return
			}
			if !visit(t.TypeName, t) {
				stopped = true
				return
			}
			for _, f := range t.Fields {
				walk(f.FieldType)
			}
		case *Enum:
			if !mark(seen, t.TypeName) {
				return
			}
			if !visit(t.TypeName, t) {
				stopped = true
				return
			}
			for _, v := range t.Variants {
				walk(v.Inner)
			}
		case *Container:
			walk(t.Inner)
		case *Tuple:
			for _, e := range t.Elements {
				walk(e)
			}
		case *Opaque:
			// An opaque node may name a definition the caller can resolve.
			if lookup == nil {
				return
			}
			if def, ok := lookup(t.Name); ok && !seen[t.Name] {
				walk(def)
			}
		case *Primitive:
			// Scalars carry no references.
		}
	}

	for _, root := range roots {
		walk(root)
	}
}

func mark(seen map[string]bool, name string) bool {
	if name == "" || seen[name] {
		return false
	}
	seen[name] = true
	return true
}
