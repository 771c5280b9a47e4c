package output

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"
)

// VisualPartitionTree lists partitions below a common root, each with its site ranges.
type VisualPartitionTree struct {
	tree gotree.Tree
}

func NewVisualPartitionTree(rootLabel string) VisualPartitionTree {
	return VisualPartitionTree{tree: gotree.New(rootLabel)}
}

// InsertPartition adds a partition node, ascertainment sites are listed as a child when present.
func (t VisualPartitionTree) InsertPartition(key string, ranges string, siteCount int, ascertainment string) {
	node := t.tree.Add(fmt.Sprintf("%s [%s] %d %s", key, ranges, siteCount, Plural(siteCount, "site", "sites")))
	if ascertainment != "" {
		node.Add("ascertainment: " + ascertainment)
	}
}

func (t VisualPartitionTree) Render() string {
	return t.tree.Print()
}
