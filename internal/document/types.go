package document

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// Document is a loaded XML configuration tree. It exclusively owns its elements.
type Document struct {
	tree   *etree.Document
	indent int //spaces per level on output
}

// DefaultIndent is used for serialization unless SetIndent is called.
const DefaultIndent = 4

// IdAttr is the identifier attribute rewritten by the partition primitives.
const IdAttr = "id"

// Attrs maps attribute names to values (or templates, see ReplaceForEachPartition).
type Attrs map[string]string

type matchKind int

const (
	anyNode matchKind = iota
	attrEquals
	attrPrefix
)

// Selector is a structural query over all descendants of a node: a tag name and at most one attribute predicate.
type Selector struct {
	Tag   string
	Attr  string
	Value string
	kind  matchKind
}

var (
	ErrNotFound  = errors.New("no matching element")
	ErrAmbiguous = errors.New("more than one matching element")
)

// QueryError reports a query that did not match exactly one element.
type QueryError struct {
	Query Selector
	Count int
}

func (e *QueryError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("can't find element: %s", e.Query)
	}
	return fmt.Sprintf("found %d elements where one was expected: %s", e.Count, e.Query)
}

func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Count == 0
	case ErrAmbiguous:
		return e.Count > 1
	}
	return false
}
