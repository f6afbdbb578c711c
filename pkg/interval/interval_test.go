package interval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSetSorts(t *testing.T) {
	//** Arrange
	input := []Interval{{8, 9}, {0, 1}, {3, 4.5}}

	//** Act
	set := NewSet(input...)

	//** Assert
	assert.Equal(t, []Interval{{0, 1}, {3, 4.5}, {8, 9}}, set.Intervals())
	assert.Equal(t, Interval{8, 9}, input[0], "input must not be reordered")
	assert.Equal(t, "[0, 1], [3, 4.5], [8, 9]", set.String())
}

func TestIntersects(t *testing.T) {
	scenarios := []struct {
		name     string
		a, b     Set
		expected bool
	}{
		{"empty left", NewSet(), NewSet(Interval{0, 1}), false},
		{"empty right", NewSet(Interval{0, 1}), NewSet(), false},
		{"both empty", Set{}, Set{}, false},
		{"touching ends do not overlap", NewSet(Interval{0, 1}), NewSet(Interval{1, 2}), false},
		{"partial overlap", NewSet(Interval{9 * 60, 10 * 60}), NewSet(Interval{9*60 + 30, 10*60 + 30}), true},
		{"containment", NewSet(Interval{0, 10}), NewSet(Interval{2, 3}), true},
		{"interleaved disjoint", NewSet(Interval{0, 1}, Interval{2, 3}, Interval{4, 5}), NewSet(Interval{1, 2}, Interval{3, 4}, Interval{5, 6}), false},
		{"late hit", NewSet(Interval{0, 1}, Interval{2, 3}, Interval{10, 12}), NewSet(Interval{1, 2}, Interval{11, 11.5}), true},
		{"long interval spans later ones", NewSet(Interval{0, 100}, Interval{200, 201}), NewSet(Interval{50, 51}), true},
		{"same start", NewSet(Interval{5, 6}), NewSet(Interval{5, 5.5}), true},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			assert.Equal(t, scenario.expected, Intersects(scenario.a, scenario.b))
			assert.Equal(t, scenario.expected, scenario.b.Intersects(scenario.a))
		})
	}
}

func TestIntersectsMatchesPairwiseCheck(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	randomSet := func() Set {
		intervals := make([]Interval, random.Intn(5))
		for i := range intervals {
			start := float64(random.Intn(40))
			intervals[i] = Interval{start, start + float64(random.Intn(6)+1)}
		}
		return NewSet(intervals...)
	}

	for range 500 {
		//** Arrange
		a, b := randomSet(), randomSet()
		expected := false
		for _, x := range a.Intervals() {
			for _, y := range b.Intervals() {
				expected = expected || x.Overlaps(y)
			}
		}

		//** Act
		forward, backward := Intersects(a, b), Intersects(b, a)

		//** Assert
		assert.Equal(t, expected, forward)
		assert.Equal(t, forward, backward, "intersection must be symmetric")
		if a.Len() > 0 {
			assert.True(t, Intersects(a, a), "a non-empty set must intersect itself")
		}
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Interval{0, 1}.Valid())
	assert.False(t, Interval{1, 1}.Valid())
	assert.False(t, Interval{2, 1}.Valid())
	assert.True(t, FromPairs([][2]float64{{0, 1}, {2, 3}}).Valid())
	assert.False(t, FromPairs([][2]float64{{0, 1}, {3, 2}}).Valid())
	assert.True(t, Set{}.Valid())
}
