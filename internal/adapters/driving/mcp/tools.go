package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

// MessageOutput is the shared message shape returned by tools.
type MessageOutput struct {
	IDHash       string            `json:"id_hash"`
	Name         string            `json:"name"`
	Text         string            `json:"text"`
	Description  string            `json:"description,omitempty"`
	Meaning      string            `json:"meaning,omitempty"`
	FilePath     string            `json:"file_path"`
	StartLine    int               `json:"start_line,omitempty"`
	EndLine      int               `json:"end_line,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
}

// ResolveInput is the input schema for the resolve_message tool.
type ResolveInput struct {
	Name     string `json:"name,omitempty" jsonschema:"symbolic message name, e.g. IDS_OK"`
	IDHash   string `json:"id_hash,omitempty" jsonschema:"content hash identifier, used when no name is given"`
	FilePath string `json:"file_path,omitempty" jsonschema:"defining file, to disambiguate names reused across files"`
}

// ResolveOutput is the output schema for the resolve_message tool.
type ResolveOutput struct {
	Message *MessageOutput `json:"message,omitempty"`
	Found   bool           `json:"found"`
}

// SearchInput is the input schema for the search_messages tool.
type SearchInput struct {
	Keyword string `json:"keyword" jsonschema:"keyword matched against names, source text and translations"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
	Offset  int    `json:"offset,omitempty" jsonschema:"number of results to skip, for pagination"`
}

// SearchOutput is the output schema for the search_messages tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Total   int                  `json:"total"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	MessageOutput
	Rank        int    `json:"rank"`
	MatchedLang string `json:"matched_lang,omitempty"`
}

// StatusInput is the input schema for the translation_status tool.
type StatusInput struct {
	Lang string `json:"lang,omitempty" jsonschema:"restrict the missing-message list to one language"`
}

// StatusOutput is the output schema for the translation_status tool.
type StatusOutput struct {
	Coverage []CoverageOutput `json:"coverage"`
	Missing  []MessageOutput  `json:"missing,omitempty"`
}

// CoverageOutput summarises one language's coverage.
type CoverageOutput struct {
	Lang       string `json:"lang"`
	Translated int    `json:"translated"`
	Missing    int    `json:"missing"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_message",
		Description: "Resolve a localization message by name or content hash, with its translations",
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_messages",
		Description: "Search localization messages by keyword across names, source text and translations",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translation_status",
		Description: "Report per-language translation coverage, optionally listing untranslated messages",
	}, s.handleStatus)
}

// handleResolve handles the resolve_message tool invocation.
func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	var result *domain.MessageWithTranslations
	var err error

	switch {
	case input.Name != "" && input.FilePath != "":
		result, err = s.ports.Query.ResolveByNameAndFile(ctx, input.Name, input.FilePath)
	case input.Name != "":
		result, err = s.ports.Query.ResolveByName(ctx, input.Name)
	case input.IDHash != "":
		result, err = s.ports.Query.ResolveByHash(ctx, input.IDHash)
	default:
		return nil, ResolveOutput{}, domain.ErrInvalidInput
	}

	if errors.Is(err, domain.ErrNotFound) {
		return nil, ResolveOutput{Found: false}, nil
	}
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	out := messageOutput(result.Message)
	out.Translations = make(map[string]string, len(result.Translations))
	for lang, tr := range result.Translations {
		out.Translations[lang] = tr.Text
	}
	return nil, ResolveOutput{Message: &out, Found: true}, nil
}

// handleSearch handles the search_messages tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	page, err := s.ports.Query.Search(ctx, input.Keyword, input.Limit, input.Offset)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(page.Results)),
		Total:   page.Total,
	}
	for i, r := range page.Results {
		output.Results[i] = SearchResultOutput{
			MessageOutput: messageOutput(r.Message),
			Rank:          r.Rank,
			MatchedLang:   r.MatchedLang,
		}
	}
	return nil, output, nil
}

// handleStatus handles the translation_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	coverage, err := s.ports.Query.Coverage(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	output := StatusOutput{Coverage: make([]CoverageOutput, len(coverage))}
	for i, c := range coverage {
		output.Coverage[i] = CoverageOutput{Lang: c.Lang, Translated: c.Translated, Missing: c.Missing}
	}

	if input.Lang != "" {
		missing, err := s.ports.Query.MissingTranslations(ctx, input.Lang)
		if err != nil {
			return nil, StatusOutput{}, err
		}
		output.Missing = make([]MessageOutput, len(missing))
		for i, m := range missing {
			output.Missing[i] = messageOutput(m)
		}
	}

	return nil, output, nil
}

// messageOutput converts a domain message to the wire shape.
func messageOutput(m domain.Message) MessageOutput {
	return MessageOutput{
		IDHash:      m.IDHash,
		Name:        m.Name,
		Text:        m.Presentable,
		Description: m.Description,
		Meaning:     m.Meaning,
		FilePath:    m.FilePath,
		StartLine:   m.StartLine,
		EndLine:     m.EndLine,
	}
}
