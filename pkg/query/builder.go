package query

import (
	"reflect"
	"strconv"
	"strings"
)

// Sort orders results by a projected field.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// ParseSort reads a comma-separated list such as "name,-stage". A leading
// "-" sorts descending.
func ParseSort(s string) []Sort {
	var sorts []Sort
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, desc := strings.CutPrefix(part, "-")
		sorts = append(sorts, Sort{Field: field, Desc: desc})
	}
	return sorts
}

// Builder accumulates conditions and ordering against a Projection.
// Filter methods panic on fields the projection does not map; sort fields
// that are not mapped are dropped, since they usually come from clients.
type Builder struct {
	projection *Projection
	where      []string
	args       []any
	order      []Sort
	fallback   []Sort
}

// New creates a Builder ordered by fallback unless OrderBy is called.
func New(p *Projection, fallback ...Sort) *Builder {
	return &Builder{projection: p, fallback: fallback}
}

func (b *Builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// Equals matches field = v. Nil values are ignored.
func (b *Builder) Equals(field string, v any) *Builder {
	if isNil(v) {
		return b
	}
	col := b.projection.mustColumn(field)
	b.where = append(b.where, col+" = "+b.bind(v))
	return b
}

// Contains matches field case-insensitively against a substring. Nil and
// empty values are ignored.
func (b *Builder) Contains(field string, v *string) *Builder {
	if v == nil || *v == "" {
		return b
	}
	col := b.projection.mustColumn(field)
	b.where = append(b.where, col+" ILIKE "+b.bind(likePattern(*v)))
	return b
}

// Search matches term as a substring of any of fields.
func (b *Builder) Search(term *string, fields ...string) *Builder {
	if term == nil || *term == "" || len(fields) == 0 {
		return b
	}
	param := b.bind(likePattern(*term))
	clauses := make([]string, len(fields))
	for i, f := range fields {
		clauses[i] = b.projection.mustColumn(f) + " ILIKE " + param
	}
	b.where = append(b.where, "("+strings.Join(clauses, " OR ")+")")
	return b
}

// OrderBy replaces the fallback ordering.
func (b *Builder) OrderBy(sorts ...Sort) *Builder {
	b.order = sorts
	return b
}

// Select returns the ordered query and its arguments.
func (b *Builder) Select() (string, []any) {
	return b.selectSQL() + b.orderSQL(), b.args
}

// Count returns a COUNT(*) query over the same conditions.
func (b *Builder) Count() (string, []any) {
	return "SELECT COUNT(*) FROM " + b.projection.From() + b.whereSQL(), b.args
}

// Page returns the ordered query restricted to a 1-based page.
func (b *Builder) Page(page, size int) (string, []any) {
	offset := max(page-1, 0) * size
	q := b.selectSQL() + b.orderSQL() +
		" LIMIT " + strconv.Itoa(size) +
		" OFFSET " + strconv.Itoa(offset)
	return q, b.args
}

// First returns the query restricted to one row.
func (b *Builder) First() (string, []any) {
	return b.selectSQL() + b.orderSQL() + " LIMIT 1", b.args
}

func (b *Builder) selectSQL() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From() + b.whereSQL()
}

func (b *Builder) whereSQL() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func (b *Builder) orderSQL() string {
	sorts := b.order
	if len(sorts) == 0 {
		sorts = b.fallback
	}

	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		col, ok := b.projection.Column(s.Field)
		if !ok {
			continue
		}
		if s.Desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}

	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
