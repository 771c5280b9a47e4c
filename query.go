package beastwords

import (
	"fmt"
	"slices"

	out "github.com/n2code/beastwords/internal/output"
	"github.com/n2code/beastwords/internal/partition"
)

func (c *converter) PrintPartitionTree() {
	label := fmt.Sprintf("%d %s (%s)", c.partitions.Len(), out.Plural(c.partitions.Len(), "partition", "partitions"), c.kind)
	tree := out.NewVisualPartitionTree(label)
	for _, key := range c.partitions.Keys() {
		sites := c.partitions.Sites(key)
		var ascertained []int
		for _, site := range c.ascertainment {
			if slices.Contains(sites, site) {
				ascertained = append(ascertained, site)
			}
		}
		tree.InsertPartition(key, partition.EncodeRanges(sites), len(sites), partition.EncodeRanges(ascertained))
	}
	c.printer.Out(out.Required, "%s", tree.Render())
	if len(c.ascertainment) > 0 && !c.converted {
		note := fmt.Sprintf("ascertainment %s: %s", out.Plural(c.ascertainment, "site", "sites"), partition.EncodeRanges(c.ascertainment))
		if c.printer.Escapes() {
			note = out.TerminalFormatAsDim(note)
		}
		c.printer.Out(out.Normal, "%s\n", note)
	}
}

func (c *converter) PrintSiteDistribution(glyph string) {
	sizes := c.partitions.Sizes()
	if len(sizes) == 0 {
		c.printer.Out(out.Normal, "<no partitions>\n")
		return
	}
	c.printer.Out(out.Verbose, "size\tcount\n")
	c.printer.Out(out.Required, "%s", out.Histogram(sizes, glyph, c.printer.Escapes()))
}
