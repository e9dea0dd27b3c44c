package mathutil

import (
	"sort"
)

// Median returns the median of values without modifying them. An
// even-length input yields the mean of the two middle values rounded down,
// computed without overflow. An empty input yields 0.
func Median(values []uint64) uint64 {
	return MedianOfSorted(SortedCopy(values))
}

// SortedCopy returns a copy of values sorted in ascending order
func SortedCopy(values []uint64) []uint64 {
	sorted := append([]uint64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// MedianOfSorted is like Median for an input already sorted in ascending
// order
func MedianOfSorted(sorted []uint64) uint64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n == 1:
		return sorted[0]
	case n%2 == 1:
		return sorted[n/2]
	}
	return midpoint(sorted[n/2-1], sorted[n/2])
}

func midpoint(a, b uint64) uint64 {
	return a/2 + b/2 + (a%2+b%2)/2
}

// InsertSorted returns a copy of sorted with value inserted in order
func InsertSorted(sorted []uint64, value uint64) []uint64 {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= value })
	result := make([]uint64, 0, len(sorted)+1)
	result = append(result, sorted[:i]...)
	result = append(result, value)
	return append(result, sorted[i:]...)
}

// RemoveSorted returns a copy of sorted with one occurrence of value
// removed. The second return value is false if value is absent.
func RemoveSorted(sorted []uint64, value uint64) ([]uint64, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= value })
	if i == len(sorted) || sorted[i] != value {
		return nil, false
	}
	result := make([]uint64, 0, len(sorted)-1)
	result = append(result, sorted[:i]...)
	return append(result, sorted[i+1:]...), true
}
