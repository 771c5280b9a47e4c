package document

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// FindAll collects all descendants of root (root excluded) matching the query, in document order.
func FindAll(root *etree.Element, query Selector) (matches []*etree.Element) {
	var visit func(e *etree.Element)
	visit = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if query.Matches(child) {
				matches = append(matches, child)
			}
			visit(child)
		}
	}
	visit(root)
	return
}

// FindOne returns the only descendant matching the query, zero or multiple matches yield a *QueryError.
func FindOne(root *etree.Element, query Selector) (*etree.Element, error) {
	matches := FindAll(root, query)
	if len(matches) != 1 {
		return nil, &QueryError{Query: query, Count: len(matches)}
	}
	return matches[0], nil
}

// NewElement creates a detached element carrying the given attributes.
func NewElement(tag string, attrs Attrs) *etree.Element {
	e := etree.NewElement(tag)
	for _, key := range orderedKeys(attrs) {
		e.CreateAttr(key, attrs[key])
	}
	return e
}

// Patch overwrites attributes either on the element itself (inPlace) or on a deep copy which shares nothing with the source.
func Patch(e *etree.Element, attrs Attrs, inPlace bool) *etree.Element {
	target := e
	if !inPlace {
		target = e.Copy()
	}
	for _, key := range orderedKeys(attrs) {
		target.CreateAttr(key, attrs[key]) //replaces existing value in its original position
	}
	return target
}

// BaseId strips the partition suffix, i.e. everything from the first colon onwards.
func BaseId(id string) string {
	base, _, _ := strings.Cut(id, ":")
	return base
}

// RewriteDescendantIds returns a deep copy in which the element and all its descendants carrying an id
// are re-suffixed as <base>:<suffix>, the source remains untouched.
func RewriteDescendantIds(e *etree.Element, suffix string) *etree.Element {
	clone := e.Copy()
	var rewrite func(node *etree.Element)
	rewrite = func(node *etree.Element) {
		if attr := node.SelectAttr(IdAttr); attr != nil {
			attr.Value = BaseId(attr.Value) + ":" + suffix
		}
		for _, child := range node.ChildElements() {
			rewrite(child)
		}
	}
	rewrite(clone)
	return clone
}

// ReplaceForEachPartition replaces the single element matched by the query with one clone per key.
// Each template value has its %s placeholder substituted by the key. The clones are placed where
// the original was, in ascending key order. If the query does not match exactly once the document is not modified.
func ReplaceForEachPartition(root *etree.Element, query Selector, keys []string, templates Attrs) error {
	original, err := FindOne(root, query)
	if err != nil {
		return err
	}
	sortedKeys := slices.Clone(keys)
	sort.Strings(sortedKeys)

	parent := original.Parent()
	position := original.Index() + 1
	for _, key := range sortedKeys {
		attrs := make(Attrs, len(templates))
		for name, template := range templates {
			attrs[name] = fmt.Sprintf(template, key)
		}
		parent.InsertChildAt(position, Patch(original, attrs, false))
		position++
	}
	parent.RemoveChild(original)
	return nil
}

// InsertAfter places node as the next sibling of anchor.
func InsertAfter(anchor *etree.Element, node *etree.Element) {
	anchor.Parent().InsertChildAt(anchor.Index()+1, node)
}

// Detach removes the element from its parent, a no-op for detached elements.
func Detach(e *etree.Element) {
	if parent := e.Parent(); parent != nil {
		parent.RemoveChild(e)
	}
}

//id first, spec second, then alphabetical - the order BEAUti writes
func orderedKeys(attrs Attrs) []string {
	rank := func(key string) int {
		switch key {
		case IdAttr:
			return 0
		case "spec":
			return 1
		}
		return 2
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if rank(keys[i]) != rank(keys[j]) {
			return rank(keys[i]) < rank(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
