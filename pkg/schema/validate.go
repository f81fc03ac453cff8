package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

const (
	reasonRequired = "required field missing"
	reasonUnknown  = "unknown field"
)

// Validate checks candidate against s and returns the normalized value.
//
// Candidates are JSON-shaped Go values: map[string]any, []any, string,
// bool, nil, float64, json.Number, or Go integer types. Any other value is
// round-tripped through encoding/json first. Numbers normalize to float64
// and integers to int64. Validate never mutates candidate.
func Validate(s *Schema, candidate any) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrValidation)
	}

	value, err := generic(candidate)
	if err != nil {
		return nil, &ValidationError{
			Schema:     s.Name,
			Violations: []Violation{{Reason: err.Error()}},
		}
	}

	v := &validator{}
	out := v.check(s, value, "")
	if len(v.violations) > 0 {
		return nil, &ValidationError{Schema: s.Name, Violations: v.violations}
	}
	return out, nil
}

// Decode parses raw as JSON, preserving number precision, and validates it.
// Malformed JSON is reported as a violation at the root.
func Decode(s *Schema, raw []byte) (any, error) {
	value, err := decodeJSON(raw)
	if err != nil {
		name := ""
		if s != nil {
			name = s.Name
		}
		return nil, &ValidationError{
			Schema:     name,
			Violations: []Violation{{Reason: fmt.Sprintf("malformed JSON: %v", err)}},
		}
	}
	return Validate(s, value)
}

// Bind validates candidate and decodes the normalized value into T.
func Bind[T any](s *Schema, candidate any) (T, error) {
	var result T

	value, err := Validate(s, candidate)
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return result, fmt.Errorf("bind %s: %w", s.Name, err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("bind %s: %w", s.Name, err)
	}
	return result, nil
}

type validator struct {
	violations []Violation
}

func (v *validator) fail(path, reason string) {
	v.violations = append(v.violations, Violation{Path: path, Reason: reason})
}

func (v *validator) check(s *Schema, value any, path string) any {
	switch s.Kind {
	case KindString:
		if str, ok := value.(string); ok {
			return str
		}
	case KindBoolean:
		if b, ok := value.(bool); ok {
			return b
		}
	case KindNumber:
		if n, ok := toFloat(value); ok {
			return n
		}
	case KindInteger:
		if _, ok := toFloat(value); ok {
			n, err := toInt(value)
			if err != nil {
				v.fail(path, err.Error())
				return nil
			}
			return n
		}
	case KindArray:
		if items, ok := value.([]any); ok {
			return v.checkArray(s, items, path)
		}
	case KindObject:
		if obj, ok := value.(map[string]any); ok {
			return v.checkObject(s, obj, path)
		}
	default:
		v.fail(path, fmt.Sprintf("unsupported schema kind %q", s.Kind))
		return nil
	}

	v.fail(path, fmt.Sprintf("expected %s, got %s", s.Kind, typeName(value)))
	return nil
}

func (v *validator) checkArray(s *Schema, items []any, path string) []any {
	out := make([]any, len(items))
	if s.Items == nil {
		copy(out, items)
		return out
	}
	for i, item := range items {
		out[i] = v.check(s.Items, item, fmt.Sprintf("%s[%d]", path, i))
	}
	return out
}

func (v *validator) checkObject(s *Schema, obj map[string]any, path string) map[string]any {
	out := make(map[string]any, len(s.Fields))

	for _, f := range s.Fields {
		fieldPath := join(path, f.Name)
		raw, present := obj[f.Name]

		switch {
		case !present && f.Optional:
			continue
		case !present:
			v.fail(fieldPath, reasonRequired)
		case raw == nil && f.Optional:
			out[f.Name] = nil
		default:
			out[f.Name] = v.check(f.Schema, raw, fieldPath)
		}
	}

	if s.Permissive {
		return out
	}

	var unknown []string
	for key := range obj {
		if _, ok := s.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	for _, key := range unknown {
		v.fail(join(path, key), reasonUnknown)
	}

	return out
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// maxExactFloat is the largest magnitude below which every integer has an
// exact float64 representation.
const maxExactFloat = 1 << 53

// toInt converts a numeric value to int64 without rounding or wrapping.
// json.Number literals are parsed exactly; other floats must be integral
// and within int64 range.
func toInt(value any) (int64, error) {
	switch n := value.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return fromUint(uint64(n))
	case uint32:
		return int64(n), nil
	case uint64:
		return fromUint(n)
	case json.Number:
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("expected integer, got %s", n)
		}
		// exponent or decimal forms are accepted only where float64 is exact
		if math.Abs(f) >= maxExactFloat {
			return 0, fmt.Errorf("integer %s out of range", n)
		}
		return int64(f), nil
	}

	f, _ := toFloat(value)
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected integer, got %s", strconv.FormatFloat(f, 'g', -1, 64))
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("integer %s out of range", strconv.FormatFloat(f, 'g', -1, 64))
	}
	return int64(f), nil
}

func fromUint(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("integer %d out of range", n)
	}
	return int64(n), nil
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toFloat(value); ok {
		return "number"
	}
	return fmt.Sprintf("%T", value)
}

// generic converts arbitrary Go values into the JSON-shaped forms the
// validator walks.
func generic(value any) (any, error) {
	switch value.(type) {
	case nil, string, bool, []any, map[string]any:
		return value, nil
	}
	if _, ok := toFloat(value); ok {
		return value, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("unencodable value: %v", err)
	}
	return decodeJSON(data)
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return value, nil
}
