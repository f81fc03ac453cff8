package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/recon/pkg/query"
)

func projection() *query.Projection {
	return query.NewProjection("prompts", "p").
		Field("ID", "id").
		Field("Name", "name").
		Field("Stage", "stage").
		Field("Description", "description")
}

func ptr[T any](v T) *T { return &v }

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want []query.Sort
	}{
		{"", nil},
		{"Name", []query.Sort{{Field: "Name"}}},
		{"Name, -Stage", []query.Sort{{Field: "Name"}, {Field: "Stage", Desc: true}}},
		{",,-ID,", []query.Sort{{Field: "ID", Desc: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := query.ParseSort(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	const cols = "SELECT p.id, p.name, p.stage, p.description FROM prompts p"

	tests := []struct {
		name     string
		build    func() (string, []any)
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no conditions uses fallback order",
			build:   query.New(projection(), query.Sort{Field: "Name"}).Select,
			wantSQL: cols + " ORDER BY p.name",
		},
		{
			name: "nil filters are ignored",
			build: func() (string, []any) {
				var stage *string
				return query.New(projection()).
					Equals("Stage", stage).
					Contains("Name", nil).
					Search(ptr(""), "Name").
					Select()
			},
			wantSQL: cols,
		},
		{
			name: "parameters number in order",
			build: func() (string, []any) {
				return query.New(projection()).
					Equals("Stage", ptr("dossier_report")).
					Contains("Name", ptr("brief")).
					Select()
			},
			wantSQL:  cols + " WHERE p.stage = $1 AND p.name ILIKE $2",
			wantArgs: []any{ptr("dossier_report"), "%brief%"},
		},
		{
			name: "search shares one parameter",
			build: func() (string, []any) {
				return query.New(projection()).
					Search(ptr("50%_off"), "Name", "Description").
					Select()
			},
			wantSQL:  cols + " WHERE (p.name ILIKE $1 OR p.description ILIKE $1)",
			wantArgs: []any{`%50\%\_off%`},
		},
		{
			name: "unknown sort fields are dropped",
			build: func() (string, []any) {
				return query.New(projection(), query.Sort{Field: "Name"}).
					OrderBy(query.Sort{Field: "name; DROP TABLE prompts"}, query.Sort{Field: "Stage", Desc: true}).
					Select()
			},
			wantSQL: cols + " ORDER BY p.stage DESC",
		},
		{
			name: "count",
			build: func() (string, []any) {
				return query.New(projection()).Equals("ID", 7).Count()
			},
			wantSQL:  "SELECT COUNT(*) FROM prompts p WHERE p.id = $1",
			wantArgs: []any{7},
		},
		{
			name: "page",
			build: func() (string, []any) {
				return query.New(projection(), query.Sort{Field: "Name"}).Page(3, 20)
			},
			wantSQL: cols + " ORDER BY p.name LIMIT 20 OFFSET 40",
		},
		{
			name: "first",
			build: func() (string, []any) {
				return query.New(projection()).Equals("ID", 7).First()
			},
			wantSQL:  cols + " WHERE p.id = $1 LIMIT 1",
			wantArgs: []any{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.build()
			if sql != tt.wantSQL {
				t.Errorf("sql:\n got %q\nwant %q", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args: got %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if !reflect.DeepEqual(args[i], tt.wantArgs[i]) {
					t.Errorf("arg %d: got %#v, want %#v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestUnknownFilterFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unmapped field")
		}
	}()
	query.New(projection()).Equals("Missing", 1)
}
