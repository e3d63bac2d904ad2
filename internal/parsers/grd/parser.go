package grd

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lingua-cli/internal/parsers"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles master (.grd) and fragment (.grdp) resource files.
// Both share one grammar; a fragment is simply a subtree with a
// different root element.
type Parser struct{}

// New creates a new document parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts messages, fragment includes and bundle declarations
// from a master or fragment file.
func (p *Parser) Parse(path string, content []byte) (*driven.ParseResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	// Legacy files carry undeclared entities; tolerate them rather than
	// failing the whole file.
	dec.Strict = false

	result := &driven.ParseResult{}
	// ordinals maps each kept message to its position among all message
	// elements, so skipped (nameless) elements do not shift line spans.
	var ordinals []int
	elementCount := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Path: path, Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "message":
			msg, keep, err := parseMessage(dec, se)
			if err != nil {
				return nil, &domain.ParseError{Path: path, Err: err}
			}
			// A message without a recognisable name is skipped, not
			// a parse failure for the whole file.
			if keep {
				result.Messages = append(result.Messages, msg)
				ordinals = append(ordinals, elementCount)
			}
			elementCount++

		case "part":
			if file := parsers.Attr(se, "file"); file != "" {
				result.Fragments = append(result.Fragments, domain.FragmentRef{Path: file})
			}
			if err := dec.Skip(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &domain.ParseError{Path: path, Err: err}
			}

		case "file":
			// Only per-language bundle declarations carry both
			// attributes; output/include <file> elements do not.
			bundlePath := parsers.Attr(se, "path")
			lang := parsers.Attr(se, "lang")
			if bundlePath != "" && lang != "" {
				result.Bundles = append(result.Bundles, domain.BundleRef{Lang: lang, Path: bundlePath})
			}
			if err := dec.Skip(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &domain.ParseError{Path: path, Err: err}
			}
		}
	}

	// The structural parse does not preserve source positions, so line
	// spans come from an independent pass over the raw text, matched to
	// messages in document order.
	applySpans(result.Messages, ordinals, messageSpans(content))

	return result, nil
}

// parseMessage consumes one <message> element. keep is false when the
// element has no usable name attribute.
func parseMessage(dec *xml.Decoder, se xml.StartElement) (driven.ParsedMessage, bool, error) {
	msg := driven.ParsedMessage{
		Name:        strings.TrimSpace(parsers.Attr(se, "name")),
		Description: parsers.Attr(se, "desc"),
		Meaning:     parsers.Attr(se, "meaning"),
	}

	nodes, err := parsers.DecodeNodes(dec)
	if err != nil && !errors.Is(err, io.EOF) {
		return driven.ParsedMessage{}, false, err
	}
	msg.Nodes = nodes

	return msg, msg.Name != "", nil
}

// span is a 1-based inclusive line range.
type span struct {
	start, end int
}

// messageSpans locates the line span of every message element by raw
// text scanning. Comment ranges are skipped so a commented-out message
// never shifts the spans of the real ones that follow it. Attribute
// values containing '>' can still fool the tag-end search; that matches
// how the position pass has always behaved and is accepted for
// navigation purposes.
func messageSpans(content []byte) []span {
	text := string(content)
	nl := newlineOffsets(text)

	var spans []span
	pos := 0
	for {
		open := indexFrom(text, pos, "<message")
		if open < 0 {
			break
		}
		if c := indexFrom(text, pos, "<!--"); c >= 0 && c < open {
			end := indexFrom(text, c+len("<!--"), "-->")
			if end < 0 {
				break
			}
			pos = end + len("-->")
			continue
		}
		after := open + len("<message")
		if after < len(text) && text[after] != '>' && text[after] != '/' && !isSpace(text[after]) {
			// e.g. "<messages>"; not a message element
			pos = after
			continue
		}

		rel := strings.Index(text[after:], ">")
		if rel < 0 {
			break
		}
		tagEnd := after + rel

		if text[tagEnd-1] == '/' {
			spans = append(spans, span{lineAt(nl, open), lineAt(nl, tagEnd)})
			pos = tagEnd + 1
			continue
		}

		rel = strings.Index(text[tagEnd:], "</message>")
		if rel < 0 {
			spans = append(spans, span{lineAt(nl, open), lineAt(nl, tagEnd)})
			break
		}
		closeAt := tagEnd + rel
		spans = append(spans, span{lineAt(nl, open), lineAt(nl, closeAt)})
		pos = closeAt + len("</message>")
	}
	return spans
}

func applySpans(messages []driven.ParsedMessage, ordinals []int, spans []span) {
	for i := range messages {
		if i >= len(ordinals) || ordinals[i] >= len(spans) {
			break
		}
		messages[i].StartLine = spans[ordinals[i]].start
		messages[i].EndLine = spans[ordinals[i]].end
	}
}

// newlineOffsets returns the byte offset of every newline, for offset to
// line-number conversion.
func newlineOffsets(s string) []int {
	var offs []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			offs = append(offs, i)
		}
	}
	return offs
}

// lineAt converts a byte offset to a 1-based line number.
func lineAt(newlines []int, off int) int {
	return sort.SearchInts(newlines, off) + 1
}

func indexFrom(s string, from int, sub string) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
