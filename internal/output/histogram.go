package output

import (
	"fmt"
	"strings"
)

const DefaultGlyph = "█"

// Histogram renders one line "size<TAB>count<TAB>bar" for every size from the smallest to the largest observed,
// sizes in between without partitions included.
func Histogram(counts map[int]int, glyph string, styled bool) string {
	if len(counts) == 0 {
		return ""
	}
	if glyph == "" {
		glyph = DefaultGlyph
	}
	smallest, largest := -1, 0
	for size := range counts {
		if smallest < 0 || size < smallest {
			smallest = size
		}
		largest = max(largest, size)
	}

	var lines strings.Builder
	for size := smallest; size <= largest; size++ {
		n := counts[size]
		bar := strings.Repeat(glyph, n)
		if styled && bar != "" {
			bar = barStyle.Render(bar)
		}
		fmt.Fprintf(&lines, "%d\t%d\t%s\n", size, n, bar)
	}
	return lines.String()
}
