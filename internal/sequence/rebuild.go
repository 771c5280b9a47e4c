// Package sequence regroups the per-taxon character data by partition and prefixes every
// partition block with a freshly derived ascertainment character.
package sequence

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/n2code/beastwords/internal/document"
	"github.com/n2code/beastwords/internal/partition"
)

const (
	sequenceTag = "sequence"
	missing     = '?'
	gap         = '-'
)

var trailingOrdinal = regexp.MustCompile(`\.\d+$`)

// Layout is the partitioning after a rebuild: 1-based positions in the concatenated blocks.
type Layout struct {
	partitions    *partition.Map
	ascertainment []int
}

func (l Layout) Partitions() *partition.Map {
	return l.partitions
}

func (l Layout) Ascertainment() []int {
	return slices.Clone(l.ascertainment)
}

// AscertainmentSymbol is "?" if all characters are missing, "-" if all are gaps, and "0" otherwise.
func AscertainmentSymbol(chars []byte) byte {
	if len(chars) == 0 {
		return '0'
	}
	allMissing, allGaps := true, true
	for _, c := range chars {
		allMissing = allMissing && c == missing
		allGaps = allGaps && c == gap
	}
	switch {
	case allMissing:
		return missing
	case allGaps:
		return gap
	}
	return '0'
}

type taxonSequence struct {
	node  *etree.Element
	taxon string
	value string
}

// Rebuild rewrites all sequence nodes and the character label table so that every partition
// (in ascending key order) occupies one contiguous block led by its ascertainment character.
// The returned layout replaces the given partitioning, which refers to the old site indices.
func Rebuild(root *etree.Element, parts *partition.Map) (Layout, error) {
	labelNodes := document.FindAll(root, document.Tag(partition.LabelTag))
	if len(labelNodes) == 0 {
		return Layout{}, fmt.Errorf("character labels missing: %w", &document.QueryError{Query: document.Tag(partition.LabelTag)})
	}

	var sequences []taxonSequence
	for _, node := range document.FindAll(root, document.Tag(sequenceTag)) {
		sequences = append(sequences, taxonSequence{
			node:  node,
			taxon: node.SelectAttrValue("taxon", ""),
			value: strings.Join(strings.Fields(node.SelectAttrValue("value", "")), ""),
		})
	}

	keys := parts.SortedKeys()
	sites := make(map[string][]int, len(keys))
	for _, key := range keys {
		sorted := parts.Sites(key)
		slices.Sort(sorted)
		sites[key] = sorted
	}

	values := make([]string, len(sequences))
	for i, seq := range sequences {
		blocks := make([]string, 0, len(keys))
		for _, key := range keys {
			chars := make([]byte, 0, len(sites[key]))
			for _, site := range sites[key] {
				if site < 0 || site >= len(seq.value) {
					return Layout{}, fmt.Errorf("sequence of taxon %s has no site %d (length %d)", seq.taxon, site, len(seq.value))
				}
				chars = append(chars, seq.value[site])
			}
			blocks = append(blocks, string(AscertainmentSymbol(chars))+string(chars))
		}
		values[i] = strings.Join(blocks, " ")
	}

	for i, seq := range sequences {
		replacement := document.NewElement(sequenceTag, document.Attrs{
			document.IdAttr: seq.node.SelectAttrValue(document.IdAttr, ""),
			"spec":          "Sequence",
			"taxon":         seq.taxon,
			"totalcount":    "2",
			"value":         values[i],
		})
		parent := seq.node.Parent()
		parent.InsertChildAt(seq.node.Index(), replacement)
		parent.RemoveChild(seq.node)
	}

	return rebuildLabels(labelNodes, keys, sites), nil
}

func rebuildLabels(old []*etree.Element, keys []string, sites map[string][]int) Layout {
	template := old[0].Copy()
	table := old[0].Parent()
	for _, node := range old {
		document.Detach(node)
	}
	base := trailingOrdinal.ReplaceAllString(template.SelectAttrValue(document.IdAttr, ""), "")
	hasCode := template.SelectAttr("code") != nil

	layout := Layout{partitions: partition.NewMap(), ascertainment: []int{}}
	n := 0
	for _, key := range keys {
		layout.partitions.Add(key)
		for position := 0; position <= len(sites[key]); position++ {
			n++
			attrs := document.Attrs{
				document.IdAttr: base + "." + strconv.Itoa(n),
				"characterName": fmt.Sprintf("%s_%d", key, position),
			}
			if hasCode {
				attrs["code"] = strconv.Itoa(n - 1)
			}
			table.AddChild(document.Patch(template, attrs, false))
			layout.partitions.Add(key, n)
			if position == 0 {
				layout.ascertainment = append(layout.ascertainment, n)
			}
		}
	}
	return layout
}
