package beastwords

import (
	"io"

	"github.com/n2code/beastwords/internal/partition"
)

// Converter rewrites a single-partition BEAUti document whose handle was retrieved using Open or Read
// into a document with one likelihood per partition.
type Converter interface {

	// Kind is the model family declared by the document, it decides how substitution models are split up.
	Kind() ModelKind

	// Partitions returns a copy of the current partitioning. Before Convert the sites are 0-based label
	// positions, afterwards 1-based positions in the rebuilt alignment.
	Partitions() *partition.Map

	// Ascertainment returns the positions of the ascertainment characters (see Partitions for the numbering).
	Ascertainment() []int

	// Repartition regroups the words before conversion. An integer spec asks for that many
	// partitions of similar size, otherwise the spec is a list of size ranges (e.g. "1-3,4-9")
	// each collecting all words whose number of sites lies in the range.
	Repartition(spec string) error

	// Convert runs the full rewrite. It can only be run once, a failed conversion leaves the document unusable.
	Convert() error

	// WriteTo serializes the (converted) document.
	WriteTo(w io.Writer) (int64, error)

	// SaveToFile writes the document atomically. Existing files are only replaced if overwrite is set.
	SaveToFile(path string, overwrite bool) error

	// PrintPartitionTree outputs all partitions along with their site ranges.
	PrintPartitionTree()

	// PrintSiteDistribution outputs a histogram of the partition sizes, the glyph draws the bars.
	PrintSiteDistribution(glyph string)
}
