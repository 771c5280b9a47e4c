package partition

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

//sorted by size to ease debugging, cumulative counts: 1 2 4 7 11 16
func words() *Map {
	m := NewMap()
	m.Add("book", 16)
	m.Add("elbow", 15)
	m.Add("hand", 1, 2)
	m.Add("eye", 7, 8, 9)
	m.Add("foot", 3, 4, 5, 6)
	m.Add("arm", 10, 11, 12, 13, 14)
	return m
}

func plain(m *Map) map[string][]int {
	out := make(map[string][]int, m.Len())
	for _, key := range m.Keys() {
		out[key] = m.Sites(key)
	}
	return out
}

func concat(m *Map, keys ...string) (sites []int) {
	for _, key := range keys {
		sites = append(sites, m.Sites(key)...)
	}
	return
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func TestParseWord(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		ordinal string
	}{
		{"hand_1", "hand", "1"},
		{"left_hand_12", "left_hand", "12"},
		{"hand_u_3", "hand", "3"},
		{"_ascertainment", AscertainmentKey, ""},
		{"_ascertainment_0", AscertainmentKey, "0"},
		{"nounderscore", "nounderscore", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, ordinal := ParseWord(test.name)
			assert.Equal(t, test.key, key)
			assert.Equal(t, test.ordinal, ordinal)
		})
	}
}

func TestParseWordRejoins(t *testing.T) {
	for _, name := range []string{"hand_1", "left_hand_12", "_ascertainment_0", "a_b_c_9"} {
		key, ordinal := ParseWord(name)
		assert.Equal(t, name, key+"_"+ordinal)
	}
}

func TestLabelsAndCompute(t *testing.T) {
	root := etree.NewElement("userDataType")
	for i, name := range []string{"_ascertainment_0", "hand_1", "hand_2", "foot_1", "eye_1", "foot_2"} {
		label := root.CreateElement("charstatelabels")
		label.CreateAttr("id", "UserDataType."+strconv.Itoa(i))
		label.CreateAttr("characterName", name)
	}

	labels := Labels(root)
	require.Len(t, labels, 6)
	assert.Equal(t, Label{Name: "_ascertainment_0", Id: "UserDataType.0"}, labels[0])

	partitions, ascertainment := Compute(labels)
	assert.Equal(t, []int{0}, ascertainment)
	assert.Equal(t, []string{"hand", "foot", "eye"}, partitions.Keys())
	assert.Equal(t, []string{"eye", "foot", "hand"}, partitions.SortedKeys())
	if diff := cmp.Diff(map[string][]int{"hand": {1, 2}, "foot": {3, 5}, "eye": {4}}, plain(partitions)); diff != "" {
		t.Errorf("partitions mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeBareAscertainment(t *testing.T) {
	partitions, ascertainment := Compute([]Label{{"_ascertainment", "UserDataType.0"}, {"I_1", "UserDataType.1"}})
	assert.Equal(t, []int{0}, ascertainment)
	assert.Equal(t, map[string][]int{"I": {1}}, plain(partitions))
}

func TestMapAccessors(t *testing.T) {
	m := words()
	assert.Equal(t, 6, m.Len())
	assert.Equal(t, 16, m.Total())
	assert.True(t, m.Has("eye"))
	assert.Nil(t, m.Sites("nose"))
	assert.Equal(t, map[int]int{1: 2, 2: 1, 3: 1, 4: 1, 5: 1}, m.Sizes())

	sites := m.Sites("hand")
	sites[0] = 99
	assert.Equal(t, []int{1, 2}, m.Sites("hand"), "sites are handed out as copies")

	clone := m.Clone()
	clone.Add("eye", 42)
	assert.Equal(t, []int{7, 8, 9}, m.Sites("eye"), "clones are independent")
	assert.Equal(t, []string{"book", "elbow", "hand", "eye", "foot", "arm"}, clone.Keys())
}

func TestBySize(t *testing.T) {
	data := words()
	log, logs := observedLogger()

	tests := []struct {
		target int
		want   map[string][]int
	}{
		{1, map[string][]int{
			"p1": concat(data, "book", "elbow", "hand", "eye", "foot", "arm"),
		}},
		{2, map[string][]int{
			"p1": concat(data, "book", "elbow", "hand", "eye"),
			"p2": concat(data, "foot", "arm"),
		}},
		{3, map[string][]int{
			"p1": concat(data, "book", "elbow", "hand"),
			"p2": concat(data, "eye"),
			"p3": concat(data, "foot", "arm"),
		}},
		{4, map[string][]int{
			"p1": concat(data, "book", "elbow", "hand"),
			"p2": concat(data, "eye"),
			"p3": concat(data, "foot"),
			"p4": concat(data, "arm"),
		}},
	}
	for _, test := range tests {
		result, err := BySize(test.target, data, log)
		require.NoError(t, err)
		if diff := cmp.Diff(test.want, plain(result)); diff != "" {
			t.Errorf("BySize(%d) mismatch (-want +got):\n%s", test.target, diff)
		}
		assert.Equal(t, data.Total(), result.Total())
	}
	assert.Zero(t, logs.Len())

	_, err := BySize(10, data, log)
	assert.True(t, errors.Is(err, ErrInvalidPartitionSpec))
	_, err = BySize(0, data, log)
	assert.True(t, errors.Is(err, ErrInvalidPartitionSpec))
}

func TestBySizeWarnsOnEmptyBucket(t *testing.T) {
	m := NewMap()
	m.Add("a", 1)
	m.Add("b", 2)
	m.Add("c", 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	log, logs := observedLogger()

	//ideal 4: "a" and "b" share p1, "c" overflows into p2, nothing is left for p3
	result, err := BySize(3, m, log)
	require.NoError(t, err)
	assert.Equal(t, map[string][]int{"p1": {1, 2}, "p2": {3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, "p3": {}}, plain(result))
	require.Equal(t, 1, logs.FilterMessage("partition is empty").Len())
	assert.Equal(t, "p3", logs.All()[0].ContextMap()["partition"])
}

func TestByGroupSize(t *testing.T) {
	data := words()
	log, logs := observedLogger()

	result, err := ByGroupSize("1-2,3-5", data, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1-2", "p3-5"}, result.Keys())
	if diff := cmp.Diff(map[string][]int{
		"p1-2": concat(data, "book", "elbow", "hand"),
		"p3-5": concat(data, "eye", "foot", "arm"),
	}, plain(result)); diff != "" {
		t.Errorf("ByGroupSize mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, logs.Len())

	result, err = ByGroupSize("1,2,3,4,5", data, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, result.Keys())
	assert.Equal(t, []int{16, 15}, result.Sites("p1"))
	assert.Zero(t, logs.Len())
}

func TestByGroupSizeFailures(t *testing.T) {
	data := words()
	log, _ := observedLogger()

	_, err := ByGroupSize("1-2,2-9", data, log)
	assert.True(t, errors.Is(err, ErrOverlap))

	_, err = ByGroupSize("1-5,6-9", data, log)
	assert.True(t, errors.Is(err, ErrInvalidPartitionSpec), "no partition of size 6 to 9")

	_, err = ByGroupSize("1-x", data, log)
	assert.True(t, errors.Is(err, ErrInvalidPartitionSpec))
}

func TestByGroupSizeWarnsOnUncoveredSites(t *testing.T) {
	log, logs := observedLogger()

	result, err := ByGroupSize("1,3", words(), log)
	require.NoError(t, err)
	assert.Equal(t, []int{16, 15}, result.Sites("p1"))
	assert.Equal(t, []int{7, 8, 9}, result.Sites("p3"))

	warnings := logs.FilterMessage("sites not covered by any partition").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "1-6,10-14", warnings[0].ContextMap()["sites"])
}

func TestRepartitionRouting(t *testing.T) {
	log := zap.NewNop()

	bySize, err := Repartition("2", words(), log)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, bySize.Keys())

	byGroup, err := Repartition(" 1-2,3-5 ", words(), log)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1-2", "p3-5"}, byGroup.Keys())
}

func TestSplitRangeSpec(t *testing.T) {
	tests := []struct {
		spec string
		want [][]int
	}{
		{"1-2", [][]int{{1, 2}}},
		{"4-9", [][]int{{4, 5, 6, 7, 8, 9}}},
		{"1,3-5,9", [][]int{{1}, {3, 4, 5}, {9}}},
		{"1-5,6-10,11-15,16-20,25", [][]int{
			{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}, {11, 12, 13, 14, 15}, {16, 17, 18, 19, 20}, {25},
		}},
	}
	for _, test := range tests {
		chunks, err := SplitRangeSpec(test.spec)
		require.NoError(t, err, test.spec)
		assert.Equal(t, test.want, chunks, test.spec)
	}

	for _, broken := range []string{"", "a", "1,,2", "5-3", "1-2-3"} {
		_, err := SplitRangeSpec(broken)
		assert.True(t, errors.Is(err, ErrInvalidPartitionSpec), broken)
	}
}

func TestEncodeRanges(t *testing.T) {
	tests := []struct {
		sites []int
		want  string
	}{
		{[]int{30, 29, 27, 28, 26}, "26-30"},
		{[]int{11, 12, 15, 16, 18, 20, 21, 22, 23, 24, 25}, "11-12,15-16,18,20-25"},
		{[]int{6, 7, 9, 10}, "6-7,9-10"},
		{[]int{5}, "5"},
		{nil, ""},
	}
	for _, test := range tests {
		input := append([]int(nil), test.sites...)
		assert.Equal(t, test.want, EncodeRanges(input))
		assert.Equal(t, test.sites, input, "input must not be reordered")
	}
}

func TestRangesRoundTrip(t *testing.T) {
	for _, sites := range [][]int{
		{30, 29, 27, 28, 26},
		{25, 11, 12, 15, 16, 18, 20, 21, 22, 23, 24},
		{1, 3, 5},
		{},
	} {
		expanded, err := ExpandRanges(EncodeRanges(sites))
		require.NoError(t, err)
		want := append([]int{}, sites...)
		slices.Sort(want)
		assert.Equal(t, want, expanded)
	}
}
