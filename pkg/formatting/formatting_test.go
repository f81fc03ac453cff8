package formatting_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/recon/pkg/formatting"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"direct object", `{"a":1}`, `{"a":1}`, false},
		{"padded", "  {\"a\":1}\n", `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"fenced without tag", "```\n[1,2]\n```", `[1,2]`, false},
		{"prose around fence", "Result:\n```json\n{\"a\":2}\n```\nDone.", `{"a":2}`, false},
		{"second fence holds JSON", "```\nnot json\n```\n```json\n{\"b\":3}\n```", `{"b":3}`, false},
		{"plain prose", "no structured data here", "", true},
		{"broken fence", "```json\n{broken\n```", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.JSON(tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("JSON error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("JSON = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("struct from fence", func(t *testing.T) {
		got, err := formatting.Parse[sample]("```json\n{\"name\":\"fenced\",\"value\":7}\n```")
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Name != "fenced" || got.Value != 7 {
			t.Errorf("Parse = %+v, want {Name:fenced Value:7}", got)
		}
	})

	t.Run("type mismatch returns ErrParseFailed", func(t *testing.T) {
		_, err := formatting.Parse[sample](`{"name":1}`)
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("long content truncated in error", func(t *testing.T) {
		_, err := formatting.Parse[sample](strings.Repeat("x", 1000))
		if err == nil || len(err.Error()) > 300 {
			t.Errorf("error = %v, want truncated message", err)
		}
	})
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"kilobytes", "1KB", 1024, false},
		{"megabytes", "10MB", 10 * 1024 * 1024, false},
		{"lowercase with space", "2 mb", 2 * 1024 * 1024, false},
		{"fractional", "1.5KB", 1536, false},
		{"binary suffix", "1GiB", 1 << 30, false},
		{"no number", "MB", 0, true},
		{"empty", "", 0, true},
		{"unknown unit", "5XB", 0, true},
		{"negative", "-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 2, "0 B"},
		{500, 0, "500 B"},
		{1536 * 1024, 1, "1.5 MB"},
		{1024, -1, "1 KB"},
		{5 << 30, 0, "5 GB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}
