package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractPromptName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid prompt URI", uri: "docchatter://prompts/answer", expected: "answer"},
		{name: "invalid prefix", uri: "file://prompts/answer", expected: ""},
		{name: "nested path", uri: "docchatter://prompts/a/b", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractPromptName(tt.uri))
		})
	}
}

func TestServer_handleCollectionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns collection stats", func(t *testing.T) {
		pipeline := &mockPipeline{stats: domain.CollectionStats{
			Collection: "docs", Entries: 12, Dimensions: 768, Sources: []string{"a.txt", "b.pdf"},
		}}
		server, err := NewServer(&Ports{Pipeline: pipeline})
		require.NoError(t, err)

		result, err := server.handleCollectionResource(ctx, makeReadResourceRequest(collectionURI))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.JSONEq(t, `{"collection":"docs","entries":12,"dimensions":768,"sources":["a.txt","b.pdf"]}`,
			result.Contents[0].Text)
	})

	t.Run("empty collection lists no sources", func(t *testing.T) {
		server, err := NewServer(&Ports{Pipeline: &mockPipeline{stats: domain.CollectionStats{Collection: "docs"}}})
		require.NoError(t, err)

		result, err := server.handleCollectionResource(ctx, makeReadResourceRequest(collectionURI))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"sources": []`)
	})

	t.Run("returns error on stats failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Pipeline: &mockPipeline{err: errors.New("database locked")}})
		require.NoError(t, err)

		_, err = server.handleCollectionResource(ctx, makeReadResourceRequest(collectionURI))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database locked")
	})
}

func TestServer_handlePromptResource(t *testing.T) {
	ctx := context.Background()
	prompts := &mockPrompts{prompts: map[string]string{"answer": "Q: {question}"}}
	server, err := NewServer(&Ports{Pipeline: &mockPipeline{}, Prompts: prompts})
	require.NoError(t, err)

	t.Run("returns prompt text", func(t *testing.T) {
		result, err := server.handlePromptResource(ctx, makeReadResourceRequest("docchatter://prompts/answer"))
		require.NoError(t, err)
		assert.Equal(t, "Q: {question}", result.Contents[0].Text)
	})

	t.Run("unknown prompt is not found", func(t *testing.T) {
		_, err := server.handlePromptResource(ctx, makeReadResourceRequest("docchatter://prompts/missing"))
		assert.Error(t, err)
	})

	t.Run("bad URI is not found", func(t *testing.T) {
		_, err := server.handlePromptResource(ctx, makeReadResourceRequest("docchatter://other"))
		assert.Error(t, err)
	})
}
