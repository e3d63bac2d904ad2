package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Lingua resources.
	uriScheme = "lingua://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing master files.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "files",
		Name:        "files",
		Description: "Indexed master resource files",
		MIMEType:    "application/json",
	}, s.handleFilesResource)

	// Static resource for listing translation languages.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "languages",
		Name:        "languages",
		Description: "Languages with at least one translation",
		MIMEType:    "application/json",
	}, s.handleLanguagesResource)

	// Template for one message with its translations.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "messages/{idHash}",
		Name:        "message",
		Description: "One message by content hash, with every translation",
		MIMEType:    "application/json",
	}, s.handleMessageResource)
}

// handleFilesResource returns the indexed master file list.
func (s *Server) handleFilesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	files, err := s.ports.Query.ListMasterFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing master files: %w", err)
	}

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling files: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleLanguagesResource returns the translation language list.
func (s *Server) handleLanguagesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	langs, err := s.ports.Query.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}

	data, err := json.MarshalIndent(langs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling languages: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleMessageResource returns one message with its translations.
func (s *Server) handleMessageResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	idHash := extractMessageHash(req.Params.URI)
	if idHash == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Query.ResolveByHash(ctx, idHash)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	out := messageOutput(result.Message)
	out.Translations = make(map[string]string, len(result.Translations))
	for lang, tr := range result.Translations {
		out.Translations[lang] = tr.Text
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling message: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractMessageHash extracts the hash from a URI like lingua://messages/{idHash}.
func extractMessageHash(uri string) string {
	const prefix = uriScheme + "messages/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
