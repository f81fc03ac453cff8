// Package query builds parameterized PostgreSQL SELECT statements over a
// single projected table.
package query

import "strings"

// Projection maps logical field names to alias-qualified columns.
type Projection struct {
	table   string
	alias   string
	fields  map[string]string
	columns []string
}

// NewProjection creates a Projection over table, referenced as alias.
func NewProjection(table, alias string) *Projection {
	return &Projection{
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Field maps name to column. Columns are selected in declaration order.
func (p *Projection) Field(name, column string) *Projection {
	qualified := p.alias + "." + column
	p.fields[name] = qualified
	p.columns = append(p.columns, qualified)
	return p
}

// Column returns the qualified column for name.
func (p *Projection) Column(name string) (string, bool) {
	col, ok := p.fields[name]
	return col, ok
}

// Columns returns the select list.
func (p *Projection) Columns() string {
	return strings.Join(p.columns, ", ")
}

// From returns the table reference with its alias.
func (p *Projection) From() string {
	return p.table + " " + p.alias
}

func (p *Projection) mustColumn(name string) string {
	col, ok := p.fields[name]
	if !ok {
		panic("query: unknown field " + name + " on " + p.table)
	}
	return col
}
