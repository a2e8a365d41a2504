// Package decode reads loosely typed documents (JSON, YAML or TOML decoded
// into maps) into typed values while tracking the field path of every value,
// so validation errors can point at the exact offending field.
package decode

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/bedforge/pkg/errors"
)

// Object is a decoded mapping together with its path in the document.
type Object struct {
	M    map[string]any
	Path string
}

// Root wraps a top-level mapping.
func Root(m map[string]any) Object { return Object{M: m} }

// Field returns the path of key within o.
func (o Object) Field(key string) string { return errors.Path(o.Path, key) }

// Has reports whether key is present and not null.
func (o Object) Has(key string) bool {
	v, ok := o.M[key]
	return ok && v != nil
}

// Float reads a required number.
func (o Object) Float(key string) (float64, error) {
	v, ok := o.M[key]
	if !ok || v == nil {
		return 0, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "required field missing")
	}
	f, ok := ToFloat(v)
	if !ok {
		return 0, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "expected number, got %s", typeName(v))
	}
	return f, nil
}

// OptFloat reads an optional number, returning def when absent.
func (o Object) OptFloat(key string, def float64) (float64, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.Float(key)
}

// Int reads a required integer. Numbers with a fractional part are rejected.
func (o Object) Int(key string) (int, error) {
	f, err := o.Float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "expected integer, got %v", f)
	}
	return int(f), nil
}

// OptInt reads an optional integer.
func (o Object) OptInt(key string, def int) (int, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.Int(key)
}

// String reads a required string.
func (o Object) String(key string) (string, error) {
	v, ok := o.M[key]
	if !ok || v == nil {
		return "", errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "required field missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "expected string, got %s", typeName(v))
	}
	return s, nil
}

// OptString reads an optional string.
func (o Object) OptString(key, def string) (string, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.String(key)
}

// OptBool reads an optional boolean.
func (o Object) OptBool(key string, def bool) (bool, error) {
	if !o.Has(key) {
		return def, nil
	}
	b, ok := o.M[key].(bool)
	if !ok {
		return false, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "expected boolean, got %s", typeName(o.M[key]))
	}
	return b, nil
}

// Object reads a required nested mapping.
func (o Object) Object(key string) (Object, error) {
	v, ok := o.M[key]
	if !ok || v == nil {
		return Object{}, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "required field missing")
	}
	m, ok := AsMap(v)
	if !ok {
		return Object{}, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "expected object, got %s", typeName(v))
	}
	return Object{M: m, Path: o.Field(key)}, nil
}

// OptObject reads an optional nested mapping. ok is false when absent.
func (o Object) OptObject(key string) (obj Object, ok bool, err error) {
	if !o.Has(key) {
		return Object{}, false, nil
	}
	obj, err = o.Object(key)
	return obj, err == nil, err
}

// List reads a required list.
func (o Object) List(key string) ([]any, error) {
	v, ok := o.M[key]
	if !ok || v == nil {
		return nil, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "required field missing")
	}
	l, ok := AsList(v)
	if !ok {
		return nil, errors.Invalid(errors.ErrCodeInvalidSchema, o.Field(key), "expected list, got %s", typeName(v))
	}
	return l, nil
}

// AsList converts the list shapes produced by the supported decoders. TOML
// arrays of tables decode as []map[string]any.
func AsList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// OptStrings reads an optional list of strings.
func (o Object) OptStrings(key string) ([]string, error) {
	if !o.Has(key) {
		return nil, nil
	}
	l, err := o.List(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(l))
	for i, v := range l {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Invalid(errors.ErrCodeInvalidSchema, errors.Path(o.Field(key), i), "expected string, got %s", typeName(v))
		}
		out[i] = s
	}
	return out, nil
}

// Item returns list element i as an Object.
func (o Object) Item(key string, i int, v any) (Object, error) {
	path := errors.Path(o.Field(key), i)
	m, ok := AsMap(v)
	if !ok {
		return Object{}, errors.Invalid(errors.ErrCodeInvalidSchema, path, "expected object, got %s", typeName(v))
	}
	return Object{M: m, Path: path}, nil
}

// AsMap converts the mapping shapes produced by the supported decoders.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

// ToFloat converts the numeric shapes produced by the supported decoders.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any, []map[string]any:
		return "list"
	case map[string]any, map[any]any:
		return "object"
	}
	if _, ok := ToFloat(v); ok {
		return "number"
	}
	return "unknown"
}
