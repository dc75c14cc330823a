package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for DocChatter resources.
	uriScheme = "docchatter://"

	collectionURI = uriScheme + "collection"
	promptsPrefix = uriScheme + "prompts/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         collectionURI,
		Name:        "collection",
		Description: "Entries, dimensions and document sources of the indexed collection",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)

	if s.ports.Prompts != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: promptsPrefix + "{name}",
			Name:        "prompt",
			Description: "Prompt template used to generate answers",
			MIMEType:    "text/plain",
		}, s.handlePromptResource)
	}
}

// collectionInfo is the JSON shape of the collection resource.
type collectionInfo struct {
	Collection string   `json:"collection"`
	Entries    int      `json:"entries"`
	Dimensions int      `json:"dimensions"`
	Sources    []string `json:"sources"`
}

func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Pipeline.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading collection stats: %w", err)
	}

	info := collectionInfo{
		Collection: stats.Collection,
		Entries:    stats.Entries,
		Dimensions: stats.Dimensions,
		Sources:    stats.Sources,
	}
	if info.Sources == nil {
		info.Sources = []string{}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling collection: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handlePromptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractPromptName(req.Params.URI)
	if name == "" || s.ports.Prompts == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	prompt, err := s.ports.Prompts.Load(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     prompt,
		}},
	}, nil
}

// extractPromptName extracts the name from a URI like docchatter://prompts/{name}.
func extractPromptName(uri string) string {
	if !strings.HasPrefix(uri, promptsPrefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, promptsPrefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
