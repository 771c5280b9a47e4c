package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Tag selects every element with the given tag, "*" selects all elements.
func Tag(tag string) Selector {
	return Selector{Tag: tag, kind: anyNode}
}

// AttrEquals selects elements with the given tag whose attribute has exactly the given value.
func AttrEquals(tag string, attr string, value string) Selector {
	return Selector{Tag: tag, Attr: attr, Value: value, kind: attrEquals}
}

// AttrPrefix selects elements with the given tag whose attribute starts with the given prefix.
func AttrPrefix(tag string, attr string, prefix string) Selector {
	return Selector{Tag: tag, Attr: attr, Value: prefix, kind: attrPrefix}
}

func (s Selector) Matches(e *etree.Element) bool {
	if s.Tag != "*" && e.Tag != s.Tag {
		return false
	}
	switch s.kind {
	case attrEquals:
		attr := e.SelectAttr(s.Attr)
		return attr != nil && attr.Value == s.Value
	case attrPrefix:
		attr := e.SelectAttr(s.Attr)
		return attr != nil && strings.HasPrefix(attr.Value, s.Value)
	}
	return true
}

// String renders the selector in XPath notation for diagnostics.
func (s Selector) String() string {
	switch s.kind {
	case attrEquals:
		return fmt.Sprintf(".//%s[@%s='%s']", s.Tag, s.Attr, s.Value)
	case attrPrefix:
		return fmt.Sprintf(".//%s[starts-with(@%s, '%s')]", s.Tag, s.Attr, s.Value)
	}
	return ".//" + s.Tag
}

// Load parses the XML file at the given path.
func Load(path string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("reading %s failed: %w", path, err)
	}
	return wrap(tree)
}

// Read parses an XML document from r.
func Read(r io.Reader) (*Document, error) {
	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing document failed: %w", err)
	}
	return wrap(tree)
}

// Parse parses an XML document held in a string.
func Parse(text string) (*Document, error) {
	return Read(strings.NewReader(text))
}

func wrap(tree *etree.Document) (*Document, error) {
	if tree.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return &Document{tree: tree, indent: DefaultIndent}, nil
}

func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

func (d *Document) SetIndent(spaces int) {
	d.indent = spaces
}
