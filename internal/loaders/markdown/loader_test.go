package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Title\nBody", "Title\nBody"},
		{"link keeps text", "See [the docs](https://example.com).", "See the docs."},
		{"image keeps alt", "![a cat](cat.png)", "a cat"},
		{"bold", "This is **important**.", "This is important."},
		{"inline code", "Run `make test` now", "Run make test now"},
		{"fenced code kept", "```go\nfmt.Println(1)\n```", "fmt.Println(1)"},
		{"blockquote", "> quoted", "quoted"},
		{"horizontal rule", "a\n\n---\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# DocChatter\n\nAsk **questions** about files.\n"), 0o600))

	doc, err := New().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "README.md", doc.Source)
	assert.Equal(t, "DocChatter\n\nAsk questions about files.", doc.Content)
}
