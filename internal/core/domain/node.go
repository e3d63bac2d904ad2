package domain

// Node is one element of a parsed message body. Message bodies are ordered
// mixed content: literal text runs, named placeholders and nested markup.
// The variant set is closed; consumers switch exhaustively over the three
// concrete types instead of probing field presence.
type Node interface {
	// node is a marker method sealing the variant set.
	node()
}

// TextNode is a literal text run.
type TextNode struct {
	// Text is the run verbatim, including internal whitespace.
	Text string
}

// PlaceholderNode is a named placeholder. The children hold the
// placeholder's original content (typically the replaced expression
// and an optional example).
type PlaceholderNode struct {
	// Name is the placeholder name as written in the source file.
	Name string

	// Children is the placeholder's inner content, possibly empty.
	Children []Node
}

// ElementNode is any other nested markup element within a message body.
type ElementNode struct {
	// Tag is the element's local name.
	Tag string

	// Children is the element's ordered content.
	Children []Node
}

func (TextNode) node()        {}
func (PlaceholderNode) node() {}
func (ElementNode) node()     {}
