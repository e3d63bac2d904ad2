package xtb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lingua-cli/internal/parsers"
)

// Ensure Parser implements the interface.
var _ driven.BundleParser = (*Parser)(nil)

// Parser handles per-language translation bundles (.xtb).
type Parser struct{}

// New creates a new bundle parser.
func New() *Parser {
	return &Parser{}
}

// ParseBundle extracts (hash, text) records from a bundle. Each record's
// text is rendered once with the placeholder-preserving projection; it is
// never stripped or escaped a second time.
func (p *Parser) ParseBundle(path string, content []byte) (*driven.BundleResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Strict = false

	result := &driven.BundleResult{}
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
		case "translationbundle":
			result.Lang = strings.TrimSpace(parsers.Attr(se, "lang"))

		case "translation":
			id := strings.TrimSpace(parsers.Attr(se, "id"))
			nodes, err := parsers.DecodeNodes(dec)
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, &domain.ParseError{Path: path, Err: err}
			}
			if id == "" {
				continue
			}
			result.Translations = append(result.Translations, driven.BundleTranslation{
				ID:   id,
				Text: domain.TranslatableText(nodes),
			})
		}
	}

	return result, nil
}
