package laz

import (
	"encoding/json"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
)

var queryEncoder = schema.NewEncoder()

func init() {
	// Generated types carry json tags; query keys must match the wire names.
	queryEncoder.SetAliasTag("json")
}

// buildQuery converts read-call parameters into URL query values.
// Structs with only scalar fields are encoded field by field; anything else
// is marshalled to JSON and, if it is an object, flattened by its top-level
// keys so nested values keep their JSON text form. Non-object parameters are
// ignored for reads.
func buildQuery(params any) (url.Values, error) {
	if params == nil {
		return nil, nil
	}

	if isStruct(params) && isFlatStruct(params) {
		values := url.Values{}
		if err := queryEncoder.Encode(params, values); err != nil {
			return nil, WrapError(CodeDecode, err, "cannot encode query parameters")
		}
		return values, nil
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, WrapError(CodeDecode, err, "cannot encode query parameters")
	}
	return flattenObject(raw), nil
}

// flattenObject turns a JSON object's top-level pairs into query values.
// Numbers and booleans are stringified; nested structures keep their JSON
// text representation. A non-object yields nil.
func flattenObject(raw json.RawMessage) url.Values {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}

	values := url.Values{}
	for key, val := range obj {
		values.Set(key, stringifyValue(val))
	}
	return values
}

func stringifyValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Numbers, booleans, nulls, arrays and objects all keep their JSON text.
	return string(raw)
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}

// isFlatStruct reports whether every field of the struct encodes to a single
// scalar query value. A struct, map, slice or array field means the value has
// nested structure; those take the JSON path, where the top-level keys become
// parameters and nested values keep their JSON text representation.
func isFlatStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		ft := t.Field(i).Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
			return false
		}
	}
	return true
}
