package textutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		ctype    string
		want     string
		wantName string
	}{
		{"ascii", []byte("hello"), "text/plain", "hello", UTF8},
		{"utf8 multibyte", []byte("héllo wörld"), "text/plain", "héllo wörld", UTF8},
		{"utf8 bom stripped", []byte("\xef\xbb\xbfhi"), "text/plain", "hi", "utf-8"},
		{"latin1 fallback", []byte("caf\xe9"), "text/plain", "café", "windows-1252"},
		{"utf16le bom", []byte{0xff, 0xfe, 'h', 0, 'i', 0}, "text/plain", "hi", "utf-16le"},
		{"explicit charset", []byte("caf\xe9"), "text/plain; charset=iso-8859-1", "café", "windows-1252"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, name, err := Decode(tt.data, tt.ctype)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReadFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadFile(ctx, "whatever")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	doc := NewDocument(path, "x", UTF8)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "notes.txt", doc.Source)
	assert.Equal(t, path, doc.Path)
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestLooksLikeText(t *testing.T) {
	tests := []struct {
		name   string
		sample []byte
		want   bool
	}{
		{"empty", nil, true},
		{"ascii", []byte("hello\tworld\r\n"), true},
		{"utf-8", []byte("na\u00efve caf\u00e9"), true},
		{"windows-1252", []byte("caf\xe9"), true},
		{"ansi colours", []byte("\x1b[31mred\x1b[0m"), true},
		{"utf-16 with bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, true},
		{"nul byte", []byte("abc\x00def"), false},
		{"control heavy", []byte("\x01\x02\x03 some text"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeText(tt.sample))
		})
	}
}

func TestReadHead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	head, err := ReadHead(context.Background(), path, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(head))

	_, err = ReadHead(context.Background(), path+".missing", 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
