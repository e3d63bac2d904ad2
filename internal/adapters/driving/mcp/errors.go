// Package mcp provides an MCP (Model Context Protocol) server adapter for Lingua.
// It enables AI assistants to resolve and search localization messages in the
// project index, for example while drafting or reviewing translations.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
