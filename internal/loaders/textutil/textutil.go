// Package textutil holds helpers shared by the document loaders.
package textutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/net/html/charset"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// UTF8 is the encoding name reported for text that needed no conversion.
const UTF8 = "utf-8"

const bom = "\ufeff"

// ReadFile reads path, mapping a missing file to domain.ErrNotFound.
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, path, err)
	}
	return data, nil
}

// SniffLen is how much of a file LooksLikeText inspects.
const SniffLen = 8192

// ReadHead reads at most n bytes from the start of path.
func ReadHead(ctx context.Context, path string, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, path, err)
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, int64(n)))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, path, err)
	}
	return head, nil
}

var utf16BOMs = [][]byte{{0xFE, 0xFF}, {0xFF, 0xFE}}

// LooksLikeText reports whether sample is plausibly text in some encoding
// Decode can handle. A UTF-16 byte order mark is text; otherwise any NUL
// byte, or control characters in more than 1% of the bytes, marks binary data.
func LooksLikeText(sample []byte) bool {
	for _, b := range utf16BOMs {
		if bytes.HasPrefix(sample, b) {
			return true
		}
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}

	control := 0
	for _, b := range sample {
		switch {
		case b >= 0x20, b == '\t', b == '\n', b == '\r', b == '\f', b == 0x1b:
		default:
			control++
		}
	}
	return control*100 <= len(sample)
}

// Decode converts data to UTF-8.
//
// A byte order mark or an explicit charset (HTTP parameter or HTML meta tag)
// wins. Otherwise valid UTF-8 is kept as is and anything else is read as
// windows-1252. Returns the text and the name of the source encoding.
func Decode(data []byte, contentType string) (string, string, error) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && utf8.Valid(data) {
		return strings.TrimPrefix(string(data), bom), UTF8, nil
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidInput, name, err)
	}
	return strings.TrimPrefix(string(out), bom), name, nil
}

// NewDocument builds a Document whose Source is the base name of path.
func NewDocument(path, content, encoding string) *domain.Document {
	return &domain.Document{
		ID:       uuid.New().String(),
		Source:   filepath.Base(path),
		Path:     path,
		Content:  content,
		Encoding: encoding,
		LoadedAt: time.Now(),
	}
}
