package parsers

import (
	"encoding/xml"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

// Attr returns the value of a named attribute on a start element, or ""
// when absent.
func Attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// DecodeNodes consumes tokens up to and including the end element that
// closes the current element, building the ordered mixed-content node
// tree. Character data becomes text runs, <ph> elements become
// placeholders, anything else becomes a generic element; ordering is
// preserved exactly.
func DecodeNodes(dec *xml.Decoder) ([]domain.Node, error) {
	var nodes []domain.Node
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			// The decoder reuses the token buffer; copy.
			nodes = append(nodes, domain.TextNode{Text: string(t)})
		case xml.StartElement:
			children, err := DecodeNodes(dec)
			if err != nil {
				return nil, err
			}
			if t.Name.Local == "ph" {
				nodes = append(nodes, domain.PlaceholderNode{
					Name:     Attr(t, "name"),
					Children: children,
				})
				continue
			}
			nodes = append(nodes, domain.ElementNode{
				Tag:      t.Name.Local,
				Children: children,
			})
		case xml.EndElement:
			return nodes, nil
		}
	}
}
