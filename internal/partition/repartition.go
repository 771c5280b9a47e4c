package partition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidPartitionSpec = errors.New("invalid partition spec")
	ErrOverlap              = errors.New("site assigned to more than one partition")
)

// Repartition routes an integer spec to BySize and anything else to ByGroupSize.
func Repartition(spec string, m *Map, log *zap.Logger) (*Map, error) {
	spec = strings.TrimSpace(spec)
	if target, err := strconv.Atoi(spec); err == nil {
		return BySize(target, m, log)
	}
	return ByGroupSize(spec, m, log)
}

// BySize packs the existing partitions, smallest first, into target buckets p1..pN of roughly equal site count.
// Partitions are never split.
func BySize(target int, m *Map, log *zap.Logger) (*Map, error) {
	if target < 1 || target > m.Len() {
		return nil, fmt.Errorf("%w: cannot form %d partitions out of %d words", ErrInvalidPartitionSpec, target, m.Len())
	}
	ideal := (m.Total() + target - 1) / target

	buckets := make([][]int, target)
	current := 0
	for _, key := range m.bySizeThenKey() {
		group := m.sites[key]
		if len(buckets[current])+len(group) > ideal && current+1 < target {
			current++
		}
		buckets[current] = append(buckets[current], group...)
	}

	result := NewMap()
	for i, sites := range buckets {
		name := fmt.Sprintf("p%d", i+1)
		if len(sites) == 0 {
			log.Warn("partition is empty", zap.String("partition", name))
		}
		result.Add(name, sites...)
	}
	return result, nil
}

// ByGroupSize buckets the existing partitions by their size: every range of the spec collects
// all partitions whose site count lies within it.
func ByGroupSize(spec string, m *Map, log *zap.Logger) (*Map, error) {
	windows, err := SplitRangeSpec(spec)
	if err != nil {
		return nil, err
	}

	result := NewMap()
	placedIn := make(map[int]string)
	for _, window := range windows {
		lo, hi := window[0], window[len(window)-1]
		name := fmt.Sprintf("p%d", lo)
		if hi != lo {
			name = fmt.Sprintf("p%d-%d", lo, hi)
		}
		matched := false
		for _, key := range m.bySizeThenKey() {
			size := len(m.sites[key])
			if size < lo || size > hi {
				continue
			}
			matched = true
			for _, site := range m.sites[key] {
				if other, taken := placedIn[site]; taken {
					return nil, fmt.Errorf("%w: site %d of %q lands in %s and %s", ErrOverlap, site, key, other, name)
				}
				placedIn[site] = name
			}
			result.Add(name, m.sites[key]...)
		}
		if !matched {
			return nil, fmt.Errorf("%w: no partition has a size within %s", ErrInvalidPartitionSpec, strings.TrimPrefix(name, "p"))
		}
	}

	maxSite := 0
	for _, key := range m.Keys() {
		for _, site := range m.sites[key] {
			maxSite = max(maxSite, site)
		}
	}
	var uncovered []int
	for site := 1; site <= maxSite; site++ {
		if _, placed := placedIn[site]; !placed {
			uncovered = append(uncovered, site)
		}
	}
	if len(uncovered) > 0 {
		log.Warn("sites not covered by any partition", zap.String("sites", EncodeRanges(uncovered)), zap.Int("count", len(uncovered)))
	}
	return result, nil
}
