package memory_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/pkg/faults"
)

type fakeStore struct {
	passages []memory.Passage
	err      error
	query    string
	names    []string
	topK     int
}

func (s *fakeStore) Retrieve(ctx context.Context, query string, names []string, topK int) ([]memory.Passage, error) {
	s.query, s.names, s.topK = query, names, topK
	return s.passages, s.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetrieve(t *testing.T) {
	t.Run("preserves store ranking", func(t *testing.T) {
		store := &fakeStore{passages: []memory.Passage{
			{Text: "second best", Score: 0.4},
			{Text: "best", Score: 0.9},
		}}
		r := memory.NewRetriever(store, 3, discard())

		got, err := r.Retrieve(context.Background(), "acme ai", "ai-intelligence-reports")
		if err != nil {
			t.Fatalf("Retrieve error: %v", err)
		}
		if !reflect.DeepEqual(got, store.passages) {
			t.Errorf("Retrieve = %v, want store order %v", got, store.passages)
		}
		if store.topK != 3 || store.names[0] != "ai-intelligence-reports" {
			t.Errorf("store called with topK=%d names=%v", store.topK, store.names)
		}
	})

	t.Run("no match is empty not error", func(t *testing.T) {
		r := memory.NewRetriever(&fakeStore{}, 3, discard())

		got, err := r.Retrieve(context.Background(), "unknown", "reports")
		if err != nil {
			t.Fatalf("Retrieve error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Retrieve = %#v, want empty slice", got)
		}
	})

	t.Run("store failure is a provider error", func(t *testing.T) {
		cause := errors.New("connection refused")
		r := memory.NewRetriever(&fakeStore{err: cause}, 3, discard())

		_, err := r.Retrieve(context.Background(), "q", "reports")
		if !errors.Is(err, faults.ErrProvider) || !errors.Is(err, cause) {
			t.Errorf("error = %v, want provider error wrapping cause", err)
		}
	})

	t.Run("invalid requests fail before the store", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
			names []string
		}{
			{"empty query", " ", []string{"reports"}},
			{"no memories", "q", nil},
			{"bad memory name", "q", []string{"Bad Name"}},
		}
		for _, tt := range tests {
			store := &fakeStore{}
			r := memory.NewRetriever(store, 3, discard())

			_, err := r.Retrieve(context.Background(), tt.query, tt.names...)
			if !errors.Is(err, faults.ErrConfiguration) {
				t.Errorf("%s: error = %v, want ErrConfiguration", tt.name, err)
			}
			if store.query != "" {
				t.Errorf("%s: store should not be called", tt.name)
			}
		}
	})
}

func TestJoin(t *testing.T) {
	passages := []memory.Passage{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	if got := memory.Join(passages, "\n"); got != "a\nb\nc" {
		t.Errorf("Join = %q", got)
	}
	if got := memory.Join(passages, "\n\n"); got != "a\n\nb\n\nc" {
		t.Errorf("Join = %q", got)
	}
	if got := memory.Join(nil, "\n"); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"ai-intelligence-reports-1755091594925", true},
		{"pdf.chat_memory", true},
		{"", false},
		{"-leading", false},
		{"Upper", false},
		{"has space", false},
		{strings.Repeat("a", 129), false},
	}

	for _, tt := range tests {
		err := memory.ValidateName(tt.name)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateName(%q) = %v, want valid=%v", tt.name, err, tt.valid)
		}
	}
}

func TestChunk(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		got := memory.Chunk("  hello   world  ", 100, 10)
		if !reflect.DeepEqual(got, []string{"hello world"}) {
			t.Errorf("Chunk = %q", got)
		}
	})

	t.Run("paragraphs split", func(t *testing.T) {
		got := memory.Chunk("first para\n\nsecond para\r\n\r\nthird", 100, 10)
		want := []string{"first para", "second para", "third"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Chunk = %q, want %q", got, want)
		}
	})

	t.Run("respects size and overlaps", func(t *testing.T) {
		text := "one two three four five six seven eight nine ten"
		got := memory.Chunk(text, 14, 6)

		for _, c := range got {
			if utf8.RuneCountInString(c) > 14 {
				t.Errorf("chunk %q exceeds size", c)
			}
		}
		if got[0] != "one two three" {
			t.Errorf("chunk[0] = %q, want %q", got[0], "one two three")
		}
		if !strings.HasPrefix(got[1], "three") {
			t.Errorf("chunk[1] = %q, want overlap starting with three", got[1])
		}
		if !strings.HasSuffix(got[len(got)-1], "ten") {
			t.Errorf("last chunk = %q, want to end with ten", got[len(got)-1])
		}
	})

	t.Run("oversized word stands alone", func(t *testing.T) {
		got := memory.Chunk("a supercalifragilistic b", 5, 2)
		want := []string{"a", "supercalifragilistic", "b"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Chunk = %q, want %q", got, want)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		if got := memory.Chunk("\n\n  \n\n", 100, 10); len(got) != 0 {
			t.Errorf("Chunk = %q, want none", got)
		}
	})
}

func TestFormatVector(t *testing.T) {
	got := memory.FormatVector([]float32{0.5, -1, 0.25})
	if got != "[0.5,-1,0.25]" {
		t.Errorf("FormatVector = %q", got)
	}
	if memory.FormatVector(nil) != "[]" {
		t.Error("FormatVector(nil) should be []")
	}
}

func TestContentText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "show text and line moves",
			stream: "BT /F1 12 Tf 72 712 Td (Hello) Tj 0 -14 Td [(W) 80 (orld) -300 (again)] TJ ET",
			want:   "Hello\nWorld again",
		},
		{
			name:   "escapes and nested parentheses",
			stream: `BT (a\(b\) \101 \(c\)) Tj ET`,
			want:   "a(b) A (c)",
		},
		{
			name:   "hex strings",
			stream: "BT <48656C6C6F> Tj T* <576F726C64> Tj ET",
			want:   "Hello\nWorld",
		},
		{
			name:   "dictionaries are skipped",
			stream: "/Span <</MCID 0>> BDC BT (Tagged) Tj ET EMC",
			want:   "Tagged",
		},
		{
			name:   "no text",
			stream: "q 1 0 0 1 0 0 cm Q",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := memory.ContentText([]byte(tt.stream)); got != tt.want {
				t.Errorf("ContentText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_MEMORY_TOP_K", "8")

	cfg := memory.Config{}
	if err := cfg.Finalize(&memory.Env{TopK: "TEST_MEMORY_TOP_K"}); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if cfg.TopK != 8 {
		t.Errorf("TopK = %d, want 8", cfg.TopK)
	}
	if cfg.EmbeddingModel != "gemini-embedding-001" || cfg.Dimensions != 768 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	bad := memory.Config{ChunkSize: 200, ChunkOverlap: 300}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error for overlap >= chunk size")
	}
}
