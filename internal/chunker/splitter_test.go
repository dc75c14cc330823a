package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Size() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.Size())
		}
		if s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s, err := New(WithChunkSize(500), WithOverlap(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Size() != 500 || s.Overlap() != 0 {
			t.Errorf("expected 500/0, got %d/%d", s.Size(), s.Overlap())
		}
	})

	invalid := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			if !errors.Is(err, domain.ErrChunkingFailure) {
				t.Errorf("expected ErrChunkingFailure, got %v", err)
			}
		})
	}
}

func TestSplitter_Split_EmptyContent(t *testing.T) {
	s, _ := New()

	if chunks := s.Split(&domain.Document{ID: "doc", Content: ""}); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
	if chunks := s.Split(nil); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for nil document, got %d", len(chunks))
	}
}

func TestSplitter_Split_ShortDocument(t *testing.T) {
	s, _ := New()
	text := strings.Repeat("abcde", 10)

	chunks := s.Split(&domain.Document{ID: "doc", Source: "short.txt", Content: text})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != text {
		t.Errorf("expected chunk to equal full text")
	}
	if chunks[0].Offset != 0 || chunks[0].Position != 0 {
		t.Errorf("expected offset 0 position 0, got %d/%d", chunks[0].Offset, chunks[0].Position)
	}
	if chunks[0].Source != "short.txt" || chunks[0].DocumentID != "doc" {
		t.Errorf("expected source and document id to be copied, got %q/%q", chunks[0].Source, chunks[0].DocumentID)
	}
}

func TestSplitter_Split_ExactSize(t *testing.T) {
	s, _ := New(WithChunkSize(10), WithOverlap(2))

	chunks := s.Split(&domain.Document{Content: "0123456789"})

	if len(chunks) != 1 {
		t.Fatalf("expected a text of exactly one chunk size to give 1 chunk, got %d", len(chunks))
	}
}

func TestSplitter_Split_Offsets2500(t *testing.T) {
	s, _ := New()
	text := strings.Repeat("x", 2500)

	chunks := s.Split(&domain.Document{Content: text})

	wantOffsets := []int{0, 800, 1600}
	if len(chunks) != len(wantOffsets) {
		t.Fatalf("expected %d chunks, got %d", len(wantOffsets), len(chunks))
	}
	for i, want := range wantOffsets {
		if chunks[i].Offset != want {
			t.Errorf("chunk %d: expected offset %d, got %d", i, want, chunks[i].Offset)
		}
		if chunks[i].Position != i {
			t.Errorf("chunk %d: expected position %d, got %d", i, i, chunks[i].Position)
		}
	}
	if last := chunks[len(chunks)-1]; last.End() != len(text) {
		t.Errorf("expected last chunk to end at %d, got %d", len(text), last.End())
	}
}

func TestSplitter_Split_SizeBound(t *testing.T) {
	cases := []struct {
		size, overlap, length int
	}{
		{1000, 200, 2500},
		{100, 20, 1234},
		{7, 3, 50},
		{10, 0, 95},
		{5, 4, 23},
	}

	for _, tc := range cases {
		s, err := New(WithChunkSize(tc.size), WithOverlap(tc.overlap))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		chunks := s.Split(&domain.Document{Content: strings.Repeat("y", tc.length)})

		for i, c := range chunks {
			n := c.Len()
			if i < len(chunks)-1 && n != tc.size {
				t.Errorf("%d/%d: chunk %d has length %d, want %d", tc.size, tc.overlap, i, n, tc.size)
			}
			if n < 1 || n > tc.size {
				t.Errorf("%d/%d: chunk %d length %d out of bounds", tc.size, tc.overlap, i, n)
			}
		}
	}
}

func TestSplitter_Split_RoundTrip(t *testing.T) {
	texts := []string{
		"a",
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 80),
		strings.Repeat("日本語のテキストと絵文字 🙂 ", 120),
	}
	configs := [][2]int{{1000, 200}, {64, 16}, {13, 0}, {9, 8}}

	for _, text := range texts {
		for _, cfg := range configs {
			s, _ := New(WithChunkSize(cfg[0]), WithOverlap(cfg[1]))
			chunks := s.Split(&domain.Document{Content: text})

			var b strings.Builder
			covered := 0
			for _, c := range chunks {
				if c.Offset > covered {
					t.Fatalf("gap before offset %d", c.Offset)
				}
				r := []rune(c.Content)
				b.WriteString(string(r[covered-c.Offset:]))
				covered = c.End()
			}

			if b.String() != text {
				t.Errorf("size %d overlap %d: reconstruction does not match source", cfg[0], cfg[1])
			}
		}
	}
}

func TestSplitter_Split_MultiByteOffsets(t *testing.T) {
	s, _ := New(WithChunkSize(4), WithOverlap(1))
	text := "héllo wörld"

	chunks := s.Split(&domain.Document{Content: text})

	runes := []rune(text)
	for _, c := range chunks {
		want := string(runes[c.Offset:min(c.Offset+4, len(runes))])
		if c.Content != want {
			t.Errorf("offset %d: expected %q, got %q", c.Offset, want, c.Content)
		}
	}
}

func TestSplitter_Split_UniqueIDs(t *testing.T) {
	s, _ := New(WithChunkSize(10), WithOverlap(2))

	chunks := s.Split(&domain.Document{Content: strings.Repeat("z", 100)})

	seen := make(map[string]bool)
	for _, c := range chunks {
		if c.ID == "" || seen[c.ID] {
			t.Errorf("expected unique non-empty chunk id, got %q", c.ID)
		}
		seen[c.ID] = true
	}
}
