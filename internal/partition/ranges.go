package partition

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SplitRangeSpec parses a comma-separated list of integers and inclusive low-high ranges.
func SplitRangeSpec(spec string) ([][]int, error) {
	var chunks [][]int
	for _, segment := range strings.Split(spec, ",") {
		segment = strings.TrimSpace(segment)
		low, high, isRange := strings.Cut(segment, "-")
		if !isRange {
			high = low
		}
		lo, errLow := strconv.Atoi(strings.TrimSpace(low))
		hi, errHigh := strconv.Atoi(strings.TrimSpace(high))
		if errLow != nil || errHigh != nil {
			return nil, fmt.Errorf("%w: malformed segment %q in %q", ErrInvalidPartitionSpec, segment, spec)
		}
		if hi < lo {
			return nil, fmt.Errorf("%w: descending range %q", ErrInvalidPartitionSpec, segment)
		}
		chunk := make([]int, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			chunk = append(chunk, i)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// EncodeRanges renders site indices as sorted runs, e.g. [6,7,9,10] as "6-7,9-10". The input is not modified.
func EncodeRanges(sites []int) string {
	if len(sites) == 0 {
		return ""
	}
	sorted := slices.Clone(sites)
	slices.Sort(sorted)

	var runs []string
	flush := func(start, end int) {
		if start == end {
			runs = append(runs, strconv.Itoa(start))
		} else {
			runs = append(runs, fmt.Sprintf("%d-%d", start, end))
		}
	}
	start, prev := sorted[0], sorted[0]
	for _, site := range sorted[1:] {
		if site == prev+1 {
			prev = site
			continue
		}
		flush(start, prev)
		start, prev = site, site
	}
	flush(start, prev)
	return strings.Join(runs, ",")
}

// ExpandRanges reverses EncodeRanges.
func ExpandRanges(encoded string) ([]int, error) {
	if encoded == "" {
		return []int{}, nil
	}
	chunks, err := SplitRangeSpec(encoded)
	if err != nil {
		return nil, err
	}
	sites := []int{}
	for _, chunk := range chunks {
		sites = append(sites, chunk...)
	}
	return sites, nil
}
