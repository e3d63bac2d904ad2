package domain

import "strings"

// whitespaceMarker wraps text whose surrounding whitespace must survive
// normalisation in the source format. The marker itself is never part of
// the hashable content.
const whitespaceMarker = "'''"

// PresentableText derives the canonical hashable text of a message body.
// Text runs are concatenated verbatim and each placeholder is replaced by
// its name, upper-cased, in place. Internal whitespace is preserved exactly;
// only leading and trailing whitespace is stripped, together with a leading
// and/or trailing whitespace marker. The two markers are stripped
// independently per side, so a marker on one side only is still removed.
func PresentableText(nodes []Node) string {
	var b strings.Builder
	writePresentable(&b, nodes)

	s := strings.TrimSpace(b.String())
	s = strings.TrimPrefix(s, whitespaceMarker)
	s = strings.TrimSuffix(s, whitespaceMarker)
	return strings.TrimSpace(s)
}

func writePresentable(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case TextNode:
			b.WriteString(n.Text)
		case PlaceholderNode:
			b.WriteString(strings.ToUpper(n.Name))
		case ElementNode:
			writePresentable(b, n.Children)
		}
	}
}

// TranslatableText derives the projection handed to translation tooling.
// Placeholders are kept as self-describing markup so a translator (human or
// machine) can move them without losing their identity. Text runs are
// emitted verbatim; the projection is never escaped a second time.
// This text is never used for hashing.
func TranslatableText(nodes []Node) string {
	var b strings.Builder
	writeTranslatable(&b, nodes)
	return strings.TrimSpace(b.String())
}

func writeTranslatable(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case TextNode:
			b.WriteString(n.Text)
		case PlaceholderNode:
			if len(n.Children) == 0 {
				b.WriteString(`<ph name="`)
				b.WriteString(n.Name)
				b.WriteString(`"/>`)
				continue
			}
			b.WriteString(`<ph name="`)
			b.WriteString(n.Name)
			b.WriteString(`">`)
			writeTranslatable(b, n.Children)
			b.WriteString(`</ph>`)
		case ElementNode:
			writeTranslatable(b, n.Children)
		}
	}
}
