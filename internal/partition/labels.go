package partition

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/n2code/beastwords/internal/document"
)

// AscertainmentKey is the partition key reserved for the ascertainment pseudo-character.
const AscertainmentKey = "_ascertainment"

// LabelTag is the tag of the character label table entries.
const LabelTag = "charstatelabels"

// Label is one entry of the character label table.
type Label struct {
	Name string //characterName
	Id   string
}

// Labels collects the character label table of the document in document order.
func Labels(root *etree.Element) []Label {
	nodes := document.FindAll(root, document.Tag(LabelTag))
	labels := make([]Label, 0, len(nodes))
	for _, node := range nodes {
		labels = append(labels, Label{
			Name: node.SelectAttrValue("characterName", ""),
			Id:   node.SelectAttrValue(document.IdAttr, ""),
		})
	}
	return labels
}

// ParseWord splits a character name into partition key and ordinal at the last underscore.
// The "_u_" infix is normalized to "_" first, so the split is not reversible for such names.
func ParseWord(name string) (key string, ordinal string) {
	normalized := strings.ReplaceAll(name, "_u_", "_")
	if normalized == AscertainmentKey {
		return AscertainmentKey, ""
	}
	cut := strings.LastIndex(normalized, "_")
	if cut < 0 {
		return normalized, ""
	}
	return normalized[:cut], normalized[cut+1:]
}

// Compute groups the 0-based label positions by partition key. The ascertainment
// positions are split off into the second result.
func Compute(labels []Label) (partitions *Map, ascertainment []int) {
	partitions = NewMap()
	ascertainment = []int{}
	for position, label := range labels {
		key, _ := ParseWord(label.Name)
		if key == AscertainmentKey {
			ascertainment = append(ascertainment, position)
			continue
		}
		partitions.Add(key, position)
	}
	return
}
