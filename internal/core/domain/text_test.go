package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPresentableText_PlaceholderUppercased tests placeholder substitution
func TestPresentableText_PlaceholderUppercased(t *testing.T) {
	nodes := []Node{
		TextNode{Text: "Hello, "},
		PlaceholderNode{Name: "username", Children: []Node{TextNode{Text: "{{name}}"}}},
		TextNode{Text: "!"},
	}

	assert.Equal(t, "Hello, USERNAME!", PresentableText(nodes))
}

// TestPresentableText_InternalWhitespacePreserved tests that internal
// newlines and indentation survive extraction
func TestPresentableText_InternalWhitespacePreserved(t *testing.T) {
	nodes := []Node{
		TextNode{Text: "  First line\n    indented second line  "},
	}

	assert.Equal(t, "First line\n    indented second line", PresentableText(nodes))
}

// TestPresentableText_WhitespaceMarkers tests the per-side marker strip
func TestPresentableText_WhitespaceMarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"both markers", "'''  spaced  '''", "spaced"},
		{"leading only", "'''  spaced", "spaced"},
		{"trailing only", "spaced  '''", "spaced"},
		{"marker after whitespace", "  '''x'''  ", "x"},
		{"no markers", "  plain  ", "plain"},
		{"marker mid-text untouched", "a ''' b", "a ''' b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PresentableText([]Node{TextNode{Text: tt.in}})
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPresentableText_Idempotent tests re-extraction of already extracted
// text (no markers) is a no-op
func TestPresentableText_Idempotent(t *testing.T) {
	inputs := []string{
		"OK",
		"Hello, USERNAME!",
		"line one\nline two",
	}

	for _, in := range inputs {
		once := PresentableText([]Node{TextNode{Text: in}})
		twice := PresentableText([]Node{TextNode{Text: once}})
		assert.Equal(t, once, twice)
	}
}

// TestPresentableText_NestedElements tests recursion through markup
func TestPresentableText_NestedElements(t *testing.T) {
	nodes := []Node{
		TextNode{Text: "Open "},
		ElementNode{Tag: "b", Children: []Node{
			TextNode{Text: "settings"},
		}},
		TextNode{Text: " to continue"},
	}

	assert.Equal(t, "Open settings to continue", PresentableText(nodes))
}

// TestTranslatableText_PlaceholderMarkup tests the preserving projection
func TestTranslatableText_PlaceholderMarkup(t *testing.T) {
	nodes := []Node{
		TextNode{Text: "Hello, "},
		PlaceholderNode{Name: "USERNAME", Children: []Node{TextNode{Text: "{{name}}"}}},
		TextNode{Text: "!"},
	}

	assert.Equal(t, `Hello, <ph name="USERNAME">{{name}}</ph>!`, TranslatableText(nodes))
}

// TestTranslatableText_SelfClosing tests empty placeholders
func TestTranslatableText_SelfClosing(t *testing.T) {
	nodes := []Node{
		TextNode{Text: "Count: "},
		PlaceholderNode{Name: "COUNT"},
	}

	assert.Equal(t, `Count: <ph name="COUNT"/>`, TranslatableText(nodes))
}
