package partition

import (
	"slices"
	"sort"
)

// Map assigns site indices to partition keys and remembers the order in which keys were first added.
type Map struct {
	order []string
	sites map[string][]int
}

func NewMap() *Map {
	return &Map{sites: make(map[string][]int)}
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	clone := NewMap()
	for _, key := range m.order {
		clone.Add(key, m.sites[key]...)
	}
	return clone
}

// Add appends sites to the partition, creating it if needed.
func (m *Map) Add(key string, sites ...int) {
	if _, exists := m.sites[key]; !exists {
		m.order = append(m.order, key)
		m.sites[key] = []int{}
	}
	m.sites[key] = append(m.sites[key], sites...)
}

// Keys lists the partition keys in insertion order.
func (m *Map) Keys() []string {
	return slices.Clone(m.order)
}

func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}

// Sites returns a copy of the partition's site indices, nil for unknown keys.
func (m *Map) Sites(key string) []int {
	sites, exists := m.sites[key]
	if !exists {
		return nil
	}
	return slices.Clone(sites)
}

func (m *Map) Has(key string) bool {
	_, exists := m.sites[key]
	return exists
}

// Len is the number of partitions.
func (m *Map) Len() int {
	return len(m.order)
}

// Total is the number of sites across all partitions.
func (m *Map) Total() (total int) {
	for _, sites := range m.sites {
		total += len(sites)
	}
	return
}

// Sizes counts how many partitions there are of each size.
func (m *Map) Sizes() map[int]int {
	counts := make(map[int]int)
	for _, sites := range m.sites {
		counts[len(sites)]++
	}
	return counts
}

// bySizeThenKey orders the keys by ascending partition size, ties broken by key.
func (m *Map) bySizeThenKey() []string {
	keys := m.Keys()
	sort.Slice(keys, func(i, j int) bool {
		a, b := len(m.sites[keys[i]]), len(m.sites[keys[j]])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
