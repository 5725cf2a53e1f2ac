package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Function describes a server-exposed RPC operation: its declared input and
// output types plus the dispatch hints a client needs to call it.
type Function struct {
	FunctionName   string
	Params         []Param
	ReturnType     TypeSchema
	InputTypeName  string // empty when the function takes no payload
	OutputTypeName string
	IsAsync        bool
	IsMutation     bool
}

// Param records where a handler argument came from and what shape it has.
type Param struct {
	Name      string
	FullType  string
	Extractor string // informational: body, path, query, ...
	Schema    TypeSchema
}

// Registry is an explicit inventory of declared types and functions.
// Declarations are added during an initialization phase and read afterwards;
// there is no ambient package-level collection. A Registry is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	types     map[string]TypeSchema
	functions map[string]Function
	order     []string // function registration order, for stable output
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:     make(map[string]TypeSchema),
		functions: make(map[string]Function),
	}
}

// RegisterType records a named type schema. Re-registering a name replaces
// the previous schema.
func (r *Registry) RegisterType(name string, ts TypeSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = ts
}

// RegisterFunction records an RPC function. The function name is the unique
// key; re-registering replaces the previous entry but keeps its position.
func (r *Registry) RegisterFunction(fn Function) error {
	if fn.FunctionName == "" {
		return fmt.Errorf("function name is required")
	}
	if fn.OutputTypeName == "" {
		return fmt.Errorf("function %s: output type name is required", fn.FunctionName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[fn.FunctionName]; !exists {
		r.order = append(r.order, fn.FunctionName)
	}
	r.functions[fn.FunctionName] = fn
	return nil
}

// FindType resolves a type name. It also matches schemas whose declared name
// equals the requested name even when registered under a different key.
func (r *Registry) FindType(name string) (TypeSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ts, ok := r.types[name]; ok {
		return ts, true
	}
	for _, ts := range r.types {
		if TypeName(ts) == name {
			return ts, true
		}
	}
	return nil, false
}

// Function returns the registered function with the given name.
func (r *Registry) Function(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Functions returns all registered functions in registration order.
func (r *Registry) Functions() []Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Function, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.functions[name])
	}
	return out
}

// TypeNames returns the names of all registered types, sorted.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
