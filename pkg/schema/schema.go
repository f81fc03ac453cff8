// Package schema declares the shape of structured model output and validates
// candidate values against it. A single declaration serves both as the
// constraint sent to a generation provider and as the local validator applied
// to whatever the provider returns.
package schema

// Kind identifies the runtime type a schema node accepts.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Schema is a declarative description of a JSON value.
//
// Objects are strict by default: fields not named in Fields are rejected.
// A permissive object accepts unknown fields and drops them from the
// normalized value.
type Schema struct {
	Name        string
	Kind        Kind
	Description string
	Fields      []Field
	Items       *Schema
	Permissive  bool
}

// Field is a named member of an object schema.
type Field struct {
	Name     string
	Schema   *Schema
	Optional bool
}

func String() *Schema  { return &Schema{Kind: KindString} }
func Number() *Schema  { return &Schema{Kind: KindNumber} }
func Integer() *Schema { return &Schema{Kind: KindInteger} }
func Boolean() *Schema { return &Schema{Kind: KindBoolean} }

// Array declares a homogeneous list whose elements match items.
func Array(items *Schema) *Schema {
	return &Schema{Kind: KindArray, Items: items}
}

// Object declares a record with the given fields in declaration order.
func Object(fields ...Field) *Schema {
	return &Schema{Kind: KindObject, Fields: fields}
}

// Required declares a field that must be present and non-null.
func Required(name string, s *Schema) Field {
	return Field{Name: name, Schema: s}
}

// Optional declares a field that may be absent or null.
func Optional(name string, s *Schema) Field {
	return Field{Name: name, Schema: s, Optional: true}
}

// Named sets the schema name used to key constrained decoding requests.
func (s *Schema) Named(name string) *Schema {
	s.Name = name
	return s
}

// Describe attaches a description forwarded to providers.
func (s *Schema) Describe(description string) *Schema {
	s.Description = description
	return s
}

// AllowUnknown marks an object schema as permissive.
func (s *Schema) AllowUnknown() *Schema {
	s.Permissive = true
	return s
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
