package interval

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Interval is a half-open time range [Start, End) in any consistent unit (e.g. minutes since the start of the week)
type Interval struct {
	Start float64
	End   float64
}

func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Checks whether i and other share at least one instant
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Set holds the intervals of a single section sorted ascending by start. The zero value is an empty set, which never intersects anything
type Set struct {
	intervals []Interval
}

func NewSet(intervals ...Interval) Set {
	sorted := slices.Clone(intervals)
	slices.SortFunc(sorted, func(a, b Interval) int {
		if a.Start < b.Start {
			return -1
		} else if a.Start > b.Start {
			return 1
		}
		// Ties on start are ordered by end to keep construction deterministic
		if a.End < b.End {
			return -1
		} else if a.End > b.End {
			return 1
		}
		return 0
	})
	return Set{intervals: sorted}
}

// Builds a set from raw [start, end] pairs, the shape used by catalogue files
func FromPairs(pairs [][2]float64) Set {
	return NewSet(lo.Map(pairs, func(pair [2]float64, _ int) Interval {
		return Interval{Start: pair[0], End: pair[1]}
	})...)
}

func (s Set) Len() int {
	return len(s.intervals)
}

func (s Set) Intervals() []Interval {
	return slices.Clone(s.intervals)
}

func (s Set) Valid() bool {
	return lo.EveryBy(s.intervals, Interval.Valid)
}

func (s Set) Intersects(other Set) bool {
	return Intersects(s, other)
}

func (s Set) String() string {
	var builder strings.Builder
	for i, current := range s.intervals {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "[%v, %v]", current.Start, current.End)
	}
	return builder.String()
}

// Intersects reports whether any interval of a overlaps any interval of b.
//
// Both sets are sorted by start, so a single merge-scan suffices: at every step the interval with the smaller start is
// the only one that can be discarded, since everything left in the other set starts no earlier. Runs in O(|a| + |b|).
func Intersects(a, b Set) bool {
	if len(a.intervals) == 0 || len(b.intervals) == 0 {
		return false
	}

	i, j := 0, 0
	for i < len(a.intervals) && j < len(b.intervals) {
		current, other := a.intervals[i], b.intervals[j]
		if current.Overlaps(other) {
			return true
		}

		if current.Start > other.Start {
			j++
		} else {
			i++
		}
	}

	return false
}
